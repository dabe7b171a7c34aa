package auth

import (
	"context"
	"net/url"

	apperrors "github.com/jrsteele09/tenant-auth-server/internal/errors"
	"github.com/jrsteele09/tenant-auth-server/internal/utils"
	"github.com/jrsteele09/tenant-auth-server/mail"
	"github.com/jrsteele09/tenant-auth-server/resets"
	"github.com/jrsteele09/tenant-auth-server/tenants"
	"github.com/jrsteele09/tenant-auth-server/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// RequestPasswordReset issues a reset token and emails it in the background.
// The message is the same whether or not the account exists.
func (s *Service) RequestPasswordReset(ctx context.Context, tenantSlug, email string) (string, error) {
	email = users.NormalizeEmail(email)
	if email == "" {
		return "", ErrEmailRequired
	}

	tenant, err := s.tenantBySlug(ctx, tenantSlug)
	if err != nil {
		return "", err
	}
	user, err := s.userByEmail(ctx, tenant.ID, email)
	if err != nil {
		return "", err
	}
	if user == nil {
		return ResetGenericMessage, nil
	}

	// Only the newest token for an address is redeemable
	if err := s.repos.Resets.DeleteByEmail(ctx, tenant.ID, email); err != nil {
		return "", apperrors.Server(errors.Wrap(err, "[RequestPasswordReset] failed to delete previous tokens"))
	}

	resetToken, err := utils.GenerateToken()
	if err != nil {
		return "", apperrors.Server(errors.Wrap(err, "[RequestPasswordReset] failed to generate token"))
	}
	now := s.nowTime()
	ttl := s.config.GetPasswordResetExpiry()
	if err := s.repos.Resets.Create(ctx, &resets.PasswordResetToken{
		Token:     resetToken,
		TenantID:  tenant.ID,
		Email:     email,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}); err != nil {
		return "", apperrors.Server(errors.Wrap(err, "[RequestPasswordReset] failed to store token"))
	}

	msg, err := mail.ResetPasswordMessage(email, mail.LinkEmail{
		AppName:   s.config.GetAppName(),
		URL:       s.config.GetAppURL() + "/auth/" + url.PathEscape(tenant.Slug) + "/reset-password?token=" + resetToken,
		ExpiresIn: humanDuration(ttl),
	})
	if err != nil {
		return "", apperrors.Server(err)
	}
	s.mailer.SendAsync(ctx, msg)

	log.Info().Str("tenant", tenant.Slug).Str("user_id", user.ID).Msg("password reset requested")
	return ResetGenericMessage, nil
}

// ValidateResetToken reports whether token can still be redeemed in the tenant
func (s *Service) ValidateResetToken(ctx context.Context, tenantSlug, resetToken string) (bool, error) {
	if resetToken == "" {
		return false, ErrTokenRequired
	}
	_, _, err := s.liveResetToken(ctx, tenantSlug, resetToken)
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindServer {
			return false, err
		}
		return false, nil
	}
	return true, nil
}

// ResetPassword redeems a reset token. Each token changes the password at most once.
func (s *Service) ResetPassword(ctx context.Context, tenantSlug, resetToken, password string) error {
	if resetToken == "" || password == "" {
		return ErrTokenAndPasswordRequired
	}
	if err := validatePassword(password); err != nil {
		return err
	}

	stored, tenant, err := s.liveResetToken(ctx, tenantSlug, resetToken)
	if err != nil {
		return err
	}

	// Hash before claiming the token so a failure here leaves it redeemable
	hash, err := users.HashPassword(password)
	if err != nil {
		return apperrors.Server(errors.Wrap(err, "[ResetPassword] failed to hash password"))
	}

	// Deleting first claims the token; a concurrent redemption loses here
	if err := s.repos.Resets.Delete(ctx, stored.Token); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return ErrInvalidResetToken
		}
		return apperrors.Server(errors.Wrap(err, "[ResetPassword] failed to delete token"))
	}

	if err := s.repos.Users.UpdatePasswordHash(ctx, tenant.ID, stored.Email, hash); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return ErrInvalidResetToken
		}
		return apperrors.Server(errors.Wrap(err, "[ResetPassword] failed to update password"))
	}

	log.Info().Str("tenant", tenant.Slug).Str("email", stored.Email).Msg("password reset")
	return nil
}

// liveResetToken loads an unexpired token issued for the tenant
func (s *Service) liveResetToken(ctx context.Context, tenantSlug, resetToken string) (*resets.PasswordResetToken, *tenants.Tenant, error) {
	stored, err := s.repos.Resets.Get(ctx, resetToken)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil, ErrInvalidResetToken
		}
		return nil, nil, apperrors.Server(errors.Wrap(err, "[auth] failed to load reset token"))
	}
	if stored.Expired(s.nowTime()) {
		return nil, nil, ErrResetTokenExpired
	}

	tenant, err := s.tenantBySlug(ctx, tenantSlug)
	if err != nil {
		return nil, nil, err
	}
	if stored.TenantID != tenant.ID {
		return nil, nil, ErrInvalidResetToken
	}
	return stored, tenant, nil
}
