package auth

import (
	"context"
	"encoding/base64"
	"encoding/json"

	apperrors "github.com/jrsteele09/tenant-auth-server/internal/errors"
	"github.com/jrsteele09/tenant-auth-server/memberships"
	"github.com/jrsteele09/tenant-auth-server/session"
	"github.com/jrsteele09/tenant-auth-server/tenants"
	"github.com/jrsteele09/tenant-auth-server/token"
	"github.com/jrsteele09/tenant-auth-server/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

var errProviderNotConfigured = errors.New("identity provider not configured")

type oauthState struct {
	Tenant string `json:"tenant"`
}

// EncodeState packs the tenant slug into the opaque OAuth state parameter
func EncodeState(tenantSlug string) string {
	b, _ := json.Marshal(oauthState{Tenant: tenantSlug})
	return base64.URLEncoding.EncodeToString(b)
}

// DecodeState reverses EncodeState. Standard base64 is accepted as well.
func DecodeState(state string) (string, error) {
	raw, err := base64.URLEncoding.DecodeString(state)
	if err != nil {
		if raw, err = base64.StdEncoding.DecodeString(state); err != nil {
			return "", ErrInvalidState
		}
	}
	var s oauthState
	if err := json.Unmarshal(raw, &s); err != nil || s.Tenant == "" {
		return "", ErrInvalidState
	}
	return s.Tenant, nil
}

// OAuthResult is the outcome of a provider callback. TenantSlug is set whenever the state decoded,
// including on failure, so callers can redirect back to the tenant.
type OAuthResult struct {
	TenantSlug string
	User       *users.User
	Session    *session.Session
}

// GoogleAuthURL returns the provider redirect for a tenant
func (s *Service) GoogleAuthURL(tenantSlug string) (string, error) {
	if s.google == nil {
		return "", apperrors.Server(errProviderNotConfigured)
	}
	if tenantSlug == "" {
		return "", ErrTenantNotFound
	}
	return s.google.AuthCodeURL(EncodeState(tenantSlug)), nil
}

// GoogleCallback completes the authorization code flow, provisioning the account on first sign in
func (s *Service) GoogleCallback(ctx context.Context, code, state string) (*OAuthResult, error) {
	if s.google == nil {
		return nil, apperrors.Server(errProviderNotConfigured)
	}
	slug, err := DecodeState(state)
	if err != nil {
		return nil, err
	}
	result := &OAuthResult{TenantSlug: slug}

	if code == "" {
		return result, ErrOAuthFailed
	}
	profile, err := s.google.Exchange(ctx, code)
	if err != nil {
		log.Err(err).Str("tenant", slug).Msg("google code exchange failed")
		return result, ErrOAuthFailed
	}
	email := users.NormalizeEmail(profile.Email)
	if email == "" {
		return result, ErrOAuthFailed
	}

	tenant, err := s.tenantBySlug(ctx, slug)
	if err != nil {
		return result, err
	}

	user, err := s.findOrCreateFederatedUser(ctx, tenant, email, profile.Name)
	if err != nil {
		return result, err
	}
	result.User = user

	result.Session, err = s.sessions.Create(ctx, token.IdentityOf(user), true)
	if err != nil {
		return result, err
	}
	return result, nil
}

func (s *Service) findOrCreateFederatedUser(ctx context.Context, tenant *tenants.Tenant, email, name string) (*users.User, error) {
	user, err := s.userByEmail(ctx, tenant.ID, email)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, s.ensureMembership(ctx, tenant.ID, user)
	}

	if name == "" {
		name = users.NameFromEmail(email)
	}
	user = &users.User{
		TenantID:  tenant.ID,
		Email:     email,
		Name:      name,
		Role:      users.RoleUser,
		Provider:  users.ProviderGoogle,
		CreatedAt: s.nowTime(),
	}
	err = s.repos.Users.Create(ctx, user)
	if err == nil {
		log.Info().Str("tenant", tenant.Slug).Str("user_id", user.ID).Msg("provisioned google account")
		return user, nil
	}
	if !errors.Is(err, apperrors.ErrDuplicate) {
		return nil, apperrors.Server(errors.Wrap(err, "[GoogleCallback] failed to create user"))
	}

	// A concurrent callback created the account first
	user, err = s.userByEmail(ctx, tenant.ID, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.Server(errors.New("[GoogleCallback] user vanished after duplicate insert"))
	}
	return user, nil
}

// ensureMembership repairs accounts created before memberships were recorded
func (s *Service) ensureMembership(ctx context.Context, tenantID string, user *users.User) error {
	_, err := s.repos.Memberships.GetByTenantUser(ctx, tenantID, user.ID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return apperrors.Server(errors.Wrap(err, "[GoogleCallback] failed to load membership"))
	}
	role := user.Role
	if role == "" {
		role = users.RoleUser
	}
	err = s.repos.Memberships.Create(ctx, &memberships.Membership{TenantID: tenantID, UserID: user.ID, Role: role})
	if err != nil && !errors.Is(err, apperrors.ErrDuplicate) {
		return apperrors.Server(errors.Wrap(err, "[GoogleCallback] failed to create membership"))
	}
	return nil
}
