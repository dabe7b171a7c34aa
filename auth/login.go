package auth

import (
	"context"

	apperrors "github.com/jrsteele09/tenant-auth-server/internal/errors"
	"github.com/jrsteele09/tenant-auth-server/session"
	"github.com/jrsteele09/tenant-auth-server/token"
	"github.com/jrsteele09/tenant-auth-server/users"
	"github.com/pkg/errors"
)

// dummyHash is compared against when the account does not exist so both failure paths cost one bcrypt comparison
var dummyHash, _ = users.HashPassword("not-a-real-password")

// LoginResult is the authenticated account together with its new session
type LoginResult struct {
	User    *users.User
	Session *session.Session
}

// Login authenticates an email and password within a tenant
func (s *Service) Login(ctx context.Context, tenantSlug, email, password string, rememberMe bool) (*LoginResult, error) {
	email = users.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrEmailAndPasswordRequired
	}

	tenant, err := s.tenantBySlug(ctx, tenantSlug)
	if err != nil {
		return nil, err
	}

	user, err := s.userByEmail(ctx, tenant.ID, email)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.HasPassword() {
		users.CheckPasswordHash(password, dummyHash)
		return nil, ErrInvalidCredentials
	}
	if !users.CheckPasswordHash(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	sess, err := s.sessions.Create(ctx, token.IdentityOf(user), rememberMe)
	if err != nil {
		return nil, err
	}
	return &LoginResult{User: user, Session: sess}, nil
}

// Register creates a password account with a USER membership. It does not start a session.
func (s *Service) Register(ctx context.Context, tenantSlug, email, password, name string) (*users.User, error) {
	email = users.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrEmailAndPasswordRequired
	}
	if err := users.ValidateEmail(email); err != nil {
		return nil, ErrInvalidEmail
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	tenant, err := s.tenantBySlug(ctx, tenantSlug)
	if err != nil {
		return nil, err
	}

	existing, err := s.userByEmail(ctx, tenant.ID, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := users.HashPassword(password)
	if err != nil {
		return nil, apperrors.Server(errors.Wrap(err, "[Register] failed to hash password"))
	}
	if name == "" {
		name = users.NameFromEmail(email)
	}

	user := &users.User{
		TenantID:     tenant.ID,
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Role:         users.RoleUser,
		Provider:     users.ProviderCredentials,
		CreatedAt:    s.nowTime(),
	}
	if err := s.repos.Users.Create(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, apperrors.Server(errors.Wrap(err, "[Register] failed to create user"))
	}
	return user, nil
}

// Me returns the account named by verified claims within the tenant
func (s *Service) Me(ctx context.Context, claims *token.Claims, tenantSlug string) (*users.User, error) {
	tenant, err := s.tenantBySlug(ctx, tenantSlug)
	if err != nil {
		return nil, err
	}
	user, err := s.userByEmail(ctx, tenant.ID, claims.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}
