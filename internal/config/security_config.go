package config

import (
	"time"

	"github.com/pkg/errors"
)

const minSecretLength = 32

type SecurityConfig interface {
	GetAccessTokenSecret() string
	GetRefreshTokenSecret() string
	GetAccessTokenExpiry() time.Duration
	GetRefreshTokenExpiry(rememberMe bool) time.Duration
	GetMagicLinkExpiry() time.Duration
	GetPasswordResetExpiry() time.Duration
	GetStrictEnumerationProtection() bool
	GetSecureCookies() bool
}

type Security struct {
	AccessTokenSecret  string `env:"JWT_ACCESS_SECRET,required"`
	RefreshTokenSecret string `env:"JWT_REFRESH_SECRET,required"`
	// StrictEnumerationProtection hides whether an account exists on magic link requests
	StrictEnumerationProtection bool `env:"STRICT_ENUMERATION_PROTECTION" envDefault:"true"`
	SecureCookies               bool `env:"SECURE_COOKIES" envDefault:"true"`
}

var _ SecurityConfig = Security{}

func (s Security) validate() error {
	if len(s.AccessTokenSecret) < minSecretLength || len(s.RefreshTokenSecret) < minSecretLength {
		return errors.Errorf("[config] token secrets must be at least %d bytes", minSecretLength)
	}
	if s.AccessTokenSecret == s.RefreshTokenSecret {
		return errors.New("[config] access and refresh token secrets must differ")
	}
	return nil
}

func (s Security) GetAccessTokenSecret() string {
	return s.AccessTokenSecret
}

func (s Security) GetRefreshTokenSecret() string {
	return s.RefreshTokenSecret
}

func (Security) GetAccessTokenExpiry() time.Duration {
	return 15 * time.Minute
}

func (Security) GetRefreshTokenExpiry(rememberMe bool) time.Duration {
	if rememberMe {
		return 30 * 24 * time.Hour
	}
	return 7 * 24 * time.Hour
}

func (Security) GetMagicLinkExpiry() time.Duration {
	return 15 * time.Minute
}

func (Security) GetPasswordResetExpiry() time.Duration {
	return time.Hour
}

func (s Security) GetStrictEnumerationProtection() bool {
	return s.StrictEnumerationProtection
}

func (s Security) GetSecureCookies() bool {
	return s.SecureCookies
}
