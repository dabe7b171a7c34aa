package auth

import (
	"context"
	"slices"

	apperrors "github.com/jrsteele09/tenant-auth-server/internal/errors"
	"github.com/jrsteele09/tenant-auth-server/memberships"
	"github.com/jrsteele09/tenant-auth-server/tenants"
	"github.com/jrsteele09/tenant-auth-server/token"
	"github.com/jrsteele09/tenant-auth-server/users"
	"github.com/pkg/errors"
)

// ManagerRoles may mutate members and projects
var ManagerRoles = []users.RoleType{users.RoleOwner, users.RoleAdmin}

// Principal is an authenticated caller within one tenant
type Principal struct {
	Claims     *token.Claims
	Tenant     *tenants.Tenant
	Membership *memberships.Membership
}

// UserID is the caller's account id
func (p *Principal) UserID() string {
	return p.Claims.UserID
}

// RequireRole fails unless the caller's membership role is one of allowed
func (p *Principal) RequireRole(allowed ...users.RoleType) error {
	if slices.Contains(allowed, p.Membership.Role) {
		return nil
	}
	return ErrInsufficientRole
}

// Authorizer resolves the caller of a tenant scoped request. The membership table is authoritative;
// the role inside the token is never trusted for tenant access.
type Authorizer struct {
	codec       *token.Codec
	tenants     tenants.Repo
	memberships memberships.Repo
}

func NewAuthorizer(codec *token.Codec, tenantRepo tenants.Repo, membershipRepo memberships.Repo) (*Authorizer, error) {
	if codec == nil {
		return nil, errors.New("[NewAuthorizer] codec is required")
	}
	if tenantRepo == nil || membershipRepo == nil {
		return nil, errors.New("[NewAuthorizer] tenant and membership repos are required")
	}
	return &Authorizer{codec: codec, tenants: tenantRepo, memberships: membershipRepo}, nil
}

// Verify checks an access token without resolving a tenant
func (a *Authorizer) Verify(accessToken string) (*token.Claims, error) {
	if accessToken == "" {
		return nil, ErrMissingAccessToken
	}
	claims, err := a.codec.VerifyAccess(accessToken)
	if err != nil {
		return nil, ErrInvalidAccessToken
	}
	return claims, nil
}

// Authorize verifies the access token and resolves the caller's membership in the tenant
func (a *Authorizer) Authorize(ctx context.Context, accessToken, tenantSlug string) (*Principal, error) {
	claims, err := a.Verify(accessToken)
	if err != nil {
		return nil, err
	}

	tenant, err := a.tenants.GetBySlug(ctx, tenantSlug)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, ErrTenantNotFound
		}
		return nil, apperrors.Server(errors.Wrap(err, "[Authorize] failed to load tenant"))
	}

	membership, err := a.memberships.GetByTenantUser(ctx, tenant.ID, claims.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, ErrUnauthorizedTenant
		}
		return nil, apperrors.Server(errors.Wrap(err, "[Authorize] failed to load membership"))
	}

	return &Principal{Claims: claims, Tenant: tenant, Membership: membership}, nil
}
