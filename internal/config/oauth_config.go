package config

type OAuthConfig interface {
	GetGoogleClientID() string
	GetGoogleClientSecret() string
	GetGoogleRedirectURL() string
	GetGoogleIssuerURL() string
	GetGoogleScopes() []string
}

// OAuth holds the Google federation settings
type OAuth struct {
	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL  string `env:"GOOGLE_REDIRECT_URL" envDefault:"http://localhost:8080/api/auth/google/callback"`
	GoogleIssuerURL    string `env:"GOOGLE_ISSUER_URL" envDefault:"https://accounts.google.com"`
}

var _ OAuthConfig = OAuth{}

func (o OAuth) GetGoogleClientID() string {
	return o.GoogleClientID
}

func (o OAuth) GetGoogleClientSecret() string {
	return o.GoogleClientSecret
}

func (o OAuth) GetGoogleRedirectURL() string {
	return o.GoogleRedirectURL
}

func (o OAuth) GetGoogleIssuerURL() string {
	return o.GoogleIssuerURL
}

func (OAuth) GetGoogleScopes() []string {
	return []string{"openid", "email", "profile"}
}
