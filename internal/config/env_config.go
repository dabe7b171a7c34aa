package config

import (
	"fmt"
	"strings"
)

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	IsProduction() bool
	GetAppURL() string
}

type EnvVars struct {
	Port        string `env:"PORT" envDefault:"8080"`
	AppName     string `env:"APP_NAME" envDefault:"Tenant Auth"`
	Environment string `env:"ENV" envDefault:"DEV"`
	// AppURL is the public address of the web application, used to build links sent by email
	AppURL string `env:"APP_URL" envDefault:"http://localhost:3000"`
}

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetPort() string {
	if strings.HasPrefix(e.Port, ":") {
		return e.Port
	}
	return fmt.Sprintf(":%s", e.Port)
}

func (e EnvVars) GetAppName() string {
	return e.AppName
}

func (e EnvVars) GetEnv() string {
	return e.Environment
}

func (e EnvVars) IsProduction() bool {
	return strings.EqualFold(e.Environment, "PROD") || strings.EqualFold(e.Environment, "production")
}

func (e EnvVars) GetAppURL() string {
	return strings.TrimSuffix(e.AppURL, "/")
}
