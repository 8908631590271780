package keycloak

import (
	"strings"

	"golang.org/x/oauth2"

	"github.com/ipede/authcode-exchange-demo/internal/infrastructure/config"
)

// AuthorizationURLBuilder builds login URLs for client A
type AuthorizationURLBuilder struct {
	oauth *oauth2.Config
}

// NewAuthorizationURLBuilder returns a builder bound to cfg
func NewAuthorizationURLBuilder(cfg *config.Config) *AuthorizationURLBuilder {
	return &AuthorizationURLBuilder{
		oauth: &oauth2.Config{
			ClientID: cfg.ClientID,
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.AuthURL(),
				TokenURL: cfg.TokenURL(),
			},
			RedirectURL: cfg.RedirectURI,
			Scopes:      strings.Fields(config.DefaultScope),
		},
	}
}

// Build returns the authorization endpoint URL with response_type=code and state.
// The state is passed through unchecked.
func (b *AuthorizationURLBuilder) Build(state string) string {
	return b.oauth.AuthCodeURL(state)
}
