package auth

import (
	"context"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/jrsteele09/tenant-auth-server/internal/config"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// Profile is the subset of the provider's userinfo the gateway uses
type Profile struct {
	Email string
	Name  string
}

// IdentityProvider is a federated sign in provider using the authorization code flow
type IdentityProvider interface {
	AuthCodeURL(state string) string
	// Exchange trades an authorization code for the signed in user's profile
	Exchange(ctx context.Context, code string) (*Profile, error)
}

// GoogleEndpoints locates the provider. Tests point these at a local server.
type GoogleEndpoints struct {
	AuthURL     string
	TokenURL    string
	UserInfoURL string
	JWKSURL     string
}

func DefaultGoogleEndpoints() GoogleEndpoints {
	return GoogleEndpoints{
		AuthURL:     google.Endpoint.AuthURL,
		TokenURL:    google.Endpoint.TokenURL,
		UserInfoURL: "https://openidconnect.googleapis.com/v1/userinfo",
		JWKSURL:     "https://www.googleapis.com/oauth2/v3/certs",
	}
}

// GoogleProvider implements IdentityProvider for Google accounts
type GoogleProvider struct {
	oauth2Config *oauth2.Config
	provider     *oidc.Provider
}

var _ IdentityProvider = (*GoogleProvider)(nil)

// NewGoogleProvider builds the provider from static endpoints so that startup does not depend on discovery
func NewGoogleProvider(ctx context.Context, cfg config.OAuthConfig, endpoints GoogleEndpoints) (*GoogleProvider, error) {
	if cfg.GetGoogleClientID() == "" || cfg.GetGoogleClientSecret() == "" {
		return nil, errors.New("[NewGoogleProvider] client id and secret are required")
	}

	providerConfig := &oidc.ProviderConfig{
		IssuerURL:   cfg.GetGoogleIssuerURL(),
		AuthURL:     endpoints.AuthURL,
		TokenURL:    endpoints.TokenURL,
		UserInfoURL: endpoints.UserInfoURL,
		JWKSURL:     endpoints.JWKSURL,
		Algorithms:  []string{oidc.RS256},
	}
	provider := providerConfig.NewProvider(ctx)

	return &GoogleProvider{
		oauth2Config: &oauth2.Config{
			ClientID:     cfg.GetGoogleClientID(),
			ClientSecret: cfg.GetGoogleClientSecret(),
			RedirectURL:  cfg.GetGoogleRedirectURL(),
			Endpoint:     provider.Endpoint(),
			Scopes:       cfg.GetGoogleScopes(),
		},
		provider: provider,
	}, nil
}

func (g *GoogleProvider) AuthCodeURL(state string) string {
	return g.oauth2Config.AuthCodeURL(state, oauth2.SetAuthURLParam("prompt", "select_account"))
}

func (g *GoogleProvider) Exchange(ctx context.Context, code string) (*Profile, error) {
	tok, err := g.oauth2Config.Exchange(ctx, code)
	if err != nil {
		return nil, errors.Wrap(err, "[GoogleProvider.Exchange] code exchange failed")
	}

	info, err := g.provider.UserInfo(ctx, oauth2.StaticTokenSource(tok))
	if err != nil {
		return nil, errors.Wrap(err, "[GoogleProvider.Exchange] userinfo request failed")
	}
	var claims struct {
		Name string `json:"name"`
	}
	if err := info.Claims(&claims); err != nil {
		return nil, errors.Wrap(err, "[GoogleProvider.Exchange] failed to decode userinfo")
	}
	return &Profile{Email: info.Email, Name: claims.Name}, nil
}
