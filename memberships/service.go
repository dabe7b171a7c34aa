package memberships

import (
	"context"
	"time"

	apperrors "github.com/jrsteele09/tenant-auth-server/internal/errors"
	"github.com/jrsteele09/tenant-auth-server/users"
	"github.com/pkg/errors"
)

var (
	ErrEmailAndRoleRequired = apperrors.Validation("email and role are required")
	ErrInvalidRole          = apperrors.Validation("Invalid role")
	ErrUserNotInTenant      = apperrors.NotFound("User does not exist in this tenant")
	ErrAlreadyMember        = apperrors.Conflict("User already a member of this tenant")
	ErrMemberNotFound       = apperrors.NotFound("Member not found")
	ErrCannotChangeOwnRole  = apperrors.Validation("Cannot change your own role")
	ErrCannotRemoveSelf     = apperrors.Validation("Cannot remove yourself")
	ErrOwnerImmutable       = apperrors.Authorization("Cannot modify an owner")
	ErrOwnerGrantForbidden  = apperrors.Authorization("Only an owner can grant the owner role")
)

// Caller is the member performing a mutation
type Caller struct {
	UserID string
	Role   users.RoleType
}

// grant checks that caller may hand out role. Owner memberships cannot be changed afterwards,
// so only an owner may create one.
func (c Caller) grant(role users.RoleType) error {
	if role == users.RoleOwner && c.Role != users.RoleOwner {
		return ErrOwnerGrantForbidden
	}
	return nil
}

// Member is a membership joined with the user's public profile
type Member struct {
	ID        string         `json:"id"`
	UserID    string         `json:"userId"`
	Email     string         `json:"email"`
	Name      string         `json:"name"`
	Role      users.RoleType `json:"role"`
	CreatedAt time.Time      `json:"createdAt"`
}

// Service manages the members of a tenant on behalf of an already authorised caller
type Service struct {
	repo  Repo
	users users.Repo
}

func NewService(repo Repo, userRepo users.Repo) *Service {
	return &Service{repo: repo, users: userRepo}
}

func (s *Service) List(ctx context.Context, tenantID string) ([]*Member, error) {
	list, err := s.repo.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, apperrors.Server(errors.Wrap(err, "[memberships.List] failed to list members"))
	}
	members := make([]*Member, 0, len(list))
	for _, m := range list {
		u, err := s.users.GetByID(ctx, m.UserID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				continue
			}
			return nil, apperrors.Server(errors.Wrap(err, "[memberships.List] failed to load user"))
		}
		members = append(members, &Member{
			ID:        m.ID,
			UserID:    u.ID,
			Email:     u.Email,
			Name:      u.Name,
			Role:      m.Role,
			CreatedAt: m.CreatedAt,
		})
	}
	return members, nil
}

// Add grants an existing account of the tenant a membership with the given role
func (s *Service) Add(ctx context.Context, tenantID string, caller Caller, email, role string) (*Membership, error) {
	if email == "" || role == "" {
		return nil, ErrEmailAndRoleRequired
	}
	r, ok := users.ParseRole(role)
	if !ok {
		return nil, ErrInvalidRole
	}
	if err := caller.grant(r); err != nil {
		return nil, err
	}

	target, err := s.users.GetByEmail(ctx, tenantID, users.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, ErrUserNotInTenant
		}
		return nil, apperrors.Server(errors.Wrap(err, "[memberships.Add] failed to load user"))
	}

	m := &Membership{TenantID: tenantID, UserID: target.ID, Role: r}
	if err := s.repo.Create(ctx, m); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, ErrAlreadyMember
		}
		return nil, apperrors.Server(errors.Wrap(err, "[memberships.Add] failed to store membership"))
	}
	return m, nil
}

// UpdateRole changes a member's role. Callers cannot target their own membership or an owner's,
// and only an owner may promote to owner.
func (s *Service) UpdateRole(ctx context.Context, tenantID string, caller Caller, membershipID, role string) (*Membership, error) {
	r, ok := users.ParseRole(role)
	if !ok {
		return nil, ErrInvalidRole
	}
	target, err := s.target(ctx, tenantID, membershipID)
	if err != nil {
		return nil, err
	}
	if target.UserID == caller.UserID {
		return nil, ErrCannotChangeOwnRole
	}
	if target.IsOwner() {
		return nil, ErrOwnerImmutable
	}
	if err := caller.grant(r); err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateRole(ctx, target.ID, r)
	if err != nil {
		return nil, apperrors.Server(errors.Wrap(err, "[memberships.UpdateRole] failed to update role"))
	}
	return updated, nil
}

// Remove deletes a membership under the same restrictions as UpdateRole
func (s *Service) Remove(ctx context.Context, tenantID string, caller Caller, membershipID string) error {
	target, err := s.target(ctx, tenantID, membershipID)
	if err != nil {
		return err
	}
	if target.UserID == caller.UserID {
		return ErrCannotRemoveSelf
	}
	if target.IsOwner() {
		return ErrOwnerImmutable
	}
	if err := s.repo.Delete(ctx, target.ID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return ErrMemberNotFound
		}
		return apperrors.Server(errors.Wrap(err, "[memberships.Remove] failed to delete membership"))
	}
	return nil
}

func (s *Service) target(ctx context.Context, tenantID, membershipID string) (*Membership, error) {
	m, err := s.repo.Get(ctx, membershipID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, apperrors.Server(errors.Wrap(err, "[memberships] failed to load membership"))
	}
	if m.TenantID != tenantID {
		return nil, ErrMemberNotFound
	}
	return m, nil
}
