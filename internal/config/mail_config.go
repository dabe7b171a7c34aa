package config

import (
	"time"

	"github.com/pkg/errors"
)

type MailConfig interface {
	GetSmtpHost() string
	GetSmtpPort() string
	GetSmtpAccount() string
	GetSmtpPassword() string
	GetMailFrom() string
	GetMailTimeout() time.Duration
	GetMailMaxAttempts() uint
	SmtpEnabled() bool
}

type Mail struct {
	SmtpHost     string        `env:"SMTP_HOST"`
	SmtpPort     string        `env:"SMTP_PORT" envDefault:"587"`
	SmtpAccount  string        `env:"SMTP_ACCOUNT"`
	SmtpPassword string        `env:"SMTP_PASSWORD"`
	From         string        `env:"MAIL_FROM" envDefault:"no-reply@localhost"`
	Timeout      time.Duration `env:"MAIL_TIMEOUT" envDefault:"10s"`
	MaxAttempts  uint          `env:"MAIL_MAX_ATTEMPTS" envDefault:"3"`
}

var _ MailConfig = Mail{}

func (m Mail) validate(production bool) error {
	if production && !m.SmtpEnabled() {
		return errors.New("[config] SMTP_HOST is required in production")
	}
	return nil
}

func (m Mail) GetSmtpHost() string {
	return m.SmtpHost
}

func (m Mail) GetSmtpPort() string {
	return m.SmtpPort
}

func (m Mail) GetSmtpAccount() string {
	return m.SmtpAccount
}

func (m Mail) GetSmtpPassword() string {
	return m.SmtpPassword
}

func (m Mail) GetMailFrom() string {
	return m.From
}

func (m Mail) GetMailTimeout() time.Duration {
	return m.Timeout
}

func (m Mail) GetMailMaxAttempts() uint {
	return m.MaxAttempts
}

func (m Mail) SmtpEnabled() bool {
	return m.SmtpHost != ""
}
