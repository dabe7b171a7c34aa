package session

import (
	"context"
	"time"

	"github.com/jrsteele09/tenant-auth-server/internal/config"
	apperrors "github.com/jrsteele09/tenant-auth-server/internal/errors"
	"github.com/jrsteele09/tenant-auth-server/token"
	"github.com/jrsteele09/tenant-auth-server/token/refresh"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

var (
	ErrMissingRefreshToken       = apperrors.Authentication("Missing refresh token")
	ErrInvalidRefreshToken       = apperrors.Authentication("Invalid refresh token")
	ErrRefreshTokenNotRecognized = apperrors.Authentication("Refresh token not recognized")
	ErrRefreshTokenExpired       = apperrors.Authentication("Refresh token expired")
)

// Manager owns the refresh token lifecycle: issue, rotate and revoke
type Manager struct {
	codec   *token.Codec
	repo    refresh.Repo
	config  config.SecurityConfig
	nowTime func() time.Time
}

type ManagerOption func(*Manager)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowTime = nowFunc
	}
}

func NewManager(codec *token.Codec, repo refresh.Repo, cfg config.SecurityConfig, options ...ManagerOption) (*Manager, error) {
	if codec == nil {
		return nil, errors.New("[session.NewManager] codec is required")
	}
	if repo == nil {
		return nil, errors.New("[session.NewManager] refresh token repo is required")
	}
	if cfg == nil {
		return nil, errors.New("[session.NewManager] config is required")
	}
	m := &Manager{
		codec:   codec,
		repo:    repo,
		config:  cfg,
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(m)
	}
	return m, nil
}

// SecureCookies reports whether session cookies carry the Secure attribute
func (m *Manager) SecureCookies() bool {
	return m.config.GetSecureCookies()
}

// Create issues a new session for identity. Every other refresh token of the user is revoked first.
func (m *Manager) Create(ctx context.Context, identity token.Identity, rememberMe bool) (*Session, error) {
	s, stored, err := m.issue(identity, rememberMe)
	if err != nil {
		return nil, err
	}
	if err := m.repo.Replace(ctx, stored); err != nil {
		return nil, apperrors.Server(errors.Wrap(err, "[session.Create] failed to replace refresh tokens"))
	}
	return s, nil
}

// Rotate exchanges a live refresh token for a new session. The presented token is consumed.
func (m *Manager) Rotate(ctx context.Context, refreshToken string) (*Session, error) {
	if refreshToken == "" {
		return nil, ErrMissingRefreshToken
	}
	claims, err := m.codec.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	stored, err := m.repo.Get(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			log.Warn().Str("user_id", claims.UserID).Msg("refresh token reuse or revoked token presented")
			return nil, ErrRefreshTokenNotRecognized
		}
		return nil, apperrors.Server(errors.Wrap(err, "[session.Rotate] failed to load refresh token"))
	}
	if m.nowTime().After(stored.ExpiresAt) {
		if err := m.repo.Delete(ctx, refreshToken); err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			log.Err(err).Msg("failed to delete expired refresh token")
		}
		return nil, ErrRefreshTokenExpired
	}

	rememberMe := stored.Lifetime() > m.config.GetRefreshTokenExpiry(false)
	s, next, err := m.issue(claims.Identity, rememberMe)
	if err != nil {
		return nil, err
	}
	if err := m.repo.Rotate(ctx, refreshToken, next); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, ErrRefreshTokenNotRecognized
		}
		return nil, apperrors.Server(errors.Wrap(err, "[session.Rotate] failed to rotate refresh token"))
	}
	return s, nil
}

// Revoke deletes a refresh token. Unknown tokens are ignored.
func (m *Manager) Revoke(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	if err := m.repo.Delete(ctx, refreshToken); err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return errors.Wrap(err, "[session.Revoke] failed to delete refresh token")
	}
	return nil
}

func (m *Manager) issue(identity token.Identity, rememberMe bool) (*Session, *refresh.StoredRefreshToken, error) {
	refreshTTL := m.config.GetRefreshTokenExpiry(rememberMe)

	accessToken, err := m.codec.SignAccess(identity)
	if err != nil {
		return nil, nil, apperrors.Server(errors.Wrap(err, "[session] failed to sign access token"))
	}
	refreshToken, err := m.codec.SignRefreshWithTTL(identity, refreshTTL)
	if err != nil {
		return nil, nil, apperrors.Server(errors.Wrap(err, "[session] failed to sign refresh token"))
	}

	now := m.nowTime()
	s := &Session{
		AccessToken:     accessToken,
		RefreshToken:    refreshToken,
		AccessLifetime:  m.codec.AccessTTL(),
		RefreshLifetime: refreshTTL,
	}
	stored := &refresh.StoredRefreshToken{
		Token:     refreshToken,
		UserID:    identity.UserID,
		ExpiresAt: now.Add(refreshTTL),
		CreatedAt: now,
	}
	return s, stored, nil
}
