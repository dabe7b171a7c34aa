package auth

import (
	"context"
	"fmt"
	"net/url"
	"time"

	apperrors "github.com/jrsteele09/tenant-auth-server/internal/errors"
	"github.com/jrsteele09/tenant-auth-server/internal/utils"
	"github.com/jrsteele09/tenant-auth-server/magiclink"
	"github.com/jrsteele09/tenant-auth-server/mail"
	"github.com/jrsteele09/tenant-auth-server/token"
	"github.com/jrsteele09/tenant-auth-server/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// RequestMagicLink emails a single-use sign in link. The returned message is safe to show the caller.
// With strict enumeration protection the response is the same whether or not the account exists.
func (s *Service) RequestMagicLink(ctx context.Context, tenantSlug, email string) (string, error) {
	email = users.NormalizeEmail(email)
	if email == "" {
		return "", ErrEmailRequired
	}

	tenant, err := s.tenantBySlug(ctx, tenantSlug)
	if err != nil {
		return "", err
	}

	strict := s.config.GetStrictEnumerationProtection()
	user, err := s.userByEmail(ctx, tenant.ID, email)
	if err != nil {
		return "", err
	}
	if user == nil {
		if strict {
			return MagicLinkGenericMessage, nil
		}
		return "", ErrUserNotFound
	}

	linkToken, err := utils.GenerateToken()
	if err != nil {
		return "", apperrors.Server(errors.Wrap(err, "[RequestMagicLink] failed to generate token"))
	}
	ttl := s.config.GetMagicLinkExpiry()
	if err := s.magicLinks.Put(ctx, linkToken, magiclink.Entry{UserID: user.ID}, ttl); err != nil {
		return "", apperrors.Server(errors.Wrap(err, "[RequestMagicLink] failed to store token"))
	}

	msg, err := mail.MagicLinkMessage(email, mail.LinkEmail{
		AppName:   s.config.GetAppName(),
		URL:       s.config.GetAppURL() + "/" + url.PathEscape(tenant.Slug) + "/auth/verify?token=" + linkToken,
		ExpiresIn: humanDuration(ttl),
	})
	if err != nil {
		return "", apperrors.Server(err)
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		return "", apperrors.Server(errors.Wrap(err, "[RequestMagicLink] failed to send email"))
	}

	log.Info().Str("tenant", tenant.Slug).Str("user_id", user.ID).Msg("magic link sent")
	if strict {
		return MagicLinkGenericMessage, nil
	}
	return MagicLinkSentMessage, nil
}

// RedeemMagicLink consumes a link token and signs its account in. The token is spent even if sign in then fails.
func (s *Service) RedeemMagicLink(ctx context.Context, linkToken string) (*LoginResult, error) {
	if linkToken == "" {
		return nil, ErrTokenRequired
	}

	entry, err := s.magicLinks.Take(ctx, linkToken)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, ErrInvalidMagicLink
		}
		return nil, apperrors.Server(errors.Wrap(err, "[RedeemMagicLink] failed to read token"))
	}

	user, err := s.repos.Users.GetByID(ctx, entry.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, apperrors.Server(errors.Wrap(err, "[RedeemMagicLink] failed to load user"))
	}

	sess, err := s.sessions.Create(ctx, token.IdentityOf(user), false)
	if err != nil {
		return nil, err
	}
	return &LoginResult{User: user, Session: sess}, nil
}

// humanDuration renders whole hours or minutes for email copy
func humanDuration(d time.Duration) string {
	plural := func(n int, unit string) string {
		if n == 1 {
			return fmt.Sprintf("1 %s", unit)
		}
		return fmt.Sprintf("%d %ss", n, unit)
	}
	if d >= time.Hour && d%time.Hour == 0 {
		return plural(int(d/time.Hour), "hour")
	}
	return plural(int(d/time.Minute), "minute")
}
