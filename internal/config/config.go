package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
)

type Config interface {
	EnvConfig
	CorsConfig
	OAuthConfig
	SecurityConfig
	MailConfig
	StoreConfig
}

type mainConfig struct {
	EnvVars
	Cors
	OAuth
	Security
	Mail
	Store
}

// Load reads the configuration from the environment and validates it
func Load() (Config, error) {
	var c mainConfig
	if err := env.Parse(&c); err != nil {
		return nil, errors.Wrap(err, "[config.Load] failed to parse environment")
	}
	if err := c.Security.validate(); err != nil {
		return nil, err
	}
	if err := c.Mail.validate(c.EnvVars.IsProduction()); err != nil {
		return nil, err
	}
	return c, nil
}
