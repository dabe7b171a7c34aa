package auth

import (
	"context"
	"time"

	"github.com/jrsteele09/tenant-auth-server/internal/config"
	apperrors "github.com/jrsteele09/tenant-auth-server/internal/errors"
	"github.com/jrsteele09/tenant-auth-server/magiclink"
	"github.com/jrsteele09/tenant-auth-server/mail"
	"github.com/jrsteele09/tenant-auth-server/memberships"
	"github.com/jrsteele09/tenant-auth-server/resets"
	"github.com/jrsteele09/tenant-auth-server/session"
	"github.com/jrsteele09/tenant-auth-server/tenants"
	"github.com/jrsteele09/tenant-auth-server/users"
	"github.com/pkg/errors"
)

// Config is the configuration the gateway reads
type Config interface {
	config.EnvConfig
	config.SecurityConfig
}

// Repos holds all repository dependencies for the Service
type Repos struct {
	Tenants     tenants.Repo     // Tenants resolved by slug
	Users       users.Repo       // Accounts, unique per tenant and email
	Memberships memberships.Repo // Authoritative tenant roles
	Resets      resets.Repo      // Password reset tokens
}

// Service implements the authentication flows: password, magic link, Google, refresh and logout
type Service struct {
	repos      Repos
	sessions   *session.Manager
	magicLinks magiclink.Store
	mailer     *mail.Dispatcher
	google     IdentityProvider
	config     Config
	nowTime    func() time.Time
}

// ServiceOption defines a function type to modify the Service instance.
type ServiceOption func(*Service)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ServiceOption {
	return func(s *Service) {
		s.nowTime = nowFunc
	}
}

// WithIdentityProvider enables federated sign in
func WithIdentityProvider(provider IdentityProvider) ServiceOption {
	return func(s *Service) {
		s.google = provider
	}
}

// NewService initializes a new Service with required dependencies.
func NewService(
	repos Repos,
	sessions *session.Manager,
	magicLinks magiclink.Store,
	mailer *mail.Dispatcher,
	cfg Config,
	options ...ServiceOption,
) (*Service, error) {
	if repos.Tenants == nil {
		return nil, errors.New("[NewService] Tenants repo is required")
	}
	if repos.Users == nil {
		return nil, errors.New("[NewService] Users repo is required")
	}
	if repos.Memberships == nil {
		return nil, errors.New("[NewService] Memberships repo is required")
	}
	if repos.Resets == nil {
		return nil, errors.New("[NewService] Resets repo is required")
	}
	if sessions == nil {
		return nil, errors.New("[NewService] session manager is required")
	}
	if magicLinks == nil {
		return nil, errors.New("[NewService] magic link store is required")
	}
	if mailer == nil {
		return nil, errors.New("[NewService] mail dispatcher is required")
	}
	if cfg == nil {
		return nil, errors.New("[NewService] config is required")
	}

	s := &Service{
		repos:      repos,
		sessions:   sessions,
		magicLinks: magicLinks,
		mailer:     mailer,
		config:     cfg,
		nowTime:    time.Now,
	}

	// Apply optional configuration
	for _, opt := range options {
		opt(s)
	}

	return s, nil
}

// Sessions exposes the session manager used to mint cookies
func (s *Service) Sessions() *session.Manager {
	return s.sessions
}

// Refresh rotates a refresh token into a new session
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*session.Session, error) {
	return s.sessions.Rotate(ctx, refreshToken)
}

// Logout revokes the refresh token if one was presented. Failures are logged by the caller and never block logout.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	return s.sessions.Revoke(ctx, refreshToken)
}

func (s *Service) tenantBySlug(ctx context.Context, slug string) (*tenants.Tenant, error) {
	t, err := s.repos.Tenants.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, ErrTenantNotFound
		}
		return nil, apperrors.Server(errors.Wrap(err, "[auth] failed to load tenant"))
	}
	return t, nil
}

// userByEmail returns nil without error when the account does not exist
func (s *Service) userByEmail(ctx context.Context, tenantID, email string) (*users.User, error) {
	u, err := s.repos.Users.GetByEmail(ctx, tenantID, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil
		}
		return nil, apperrors.Server(errors.Wrap(err, "[auth] failed to load user"))
	}
	return u, nil
}

// validatePassword maps the account password rules onto caller facing errors
func validatePassword(password string) error {
	switch err := users.ValidatePassword(password); {
	case err == nil:
		return nil
	case errors.Is(err, users.ErrPasswordTooLong):
		return ErrPasswordTooLong
	default:
		return ErrWeakPassword
	}
}
