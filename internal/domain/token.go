package domain

import (
	"fmt"
	"net/url"
)

// Grant types accepted by the provider's token endpoint
const (
	GrantTypeAuthorizationCode = "authorization_code"
	GrantTypePassword          = "password"
	//nolint:gosec // OAuth2 URN identifier, not a credential
	GrantTypeTokenExchange = "urn:ietf:params:oauth:grant-type:token-exchange"

	//nolint:gosec // OAuth2 URN identifier, not a credential
	TokenTypeAccessToken = "urn:ietf:params:oauth:token-type:access_token"
)

const (
	redactedPlaceholder = "[REDACTED]"
	emptyPlaceholder    = "<empty>"
)

// GrantRequest holds the form parameters of a single token endpoint call.
// It is built per call and never stored.
type GrantRequest struct {
	GrantType    string
	ClientID     string
	ClientSecret string

	// authorization_code
	Code        string
	RedirectURI string

	// password
	Username string
	Password string

	// token-exchange
	SubjectToken       string
	RequestedTokenType string
	Audience           string
}

// Form returns the form-encoded body for the token endpoint. Empty fields are omitted.
func (r GrantRequest) Form() url.Values {
	data := url.Values{}
	data.Set("grant_type", r.GrantType)
	data.Set("client_id", r.ClientID)

	optional := []struct {
		key   string
		value string
	}{
		{"client_secret", r.ClientSecret},
		{"code", r.Code},
		{"redirect_uri", r.RedirectURI},
		{"username", r.Username},
		{"password", r.Password},
		{"subject_token", r.SubjectToken},
		{"requested_token_type", r.RequestedTokenType},
		{"audience", r.Audience},
	}
	for _, field := range optional {
		if field.value != "" {
			data.Set(field.key, field.value)
		}
	}

	return data
}

// String implements fmt.Stringer, redacting every credential.
func (r GrantRequest) String() string {
	return fmt.Sprintf("GrantRequest{GrantType: %s, ClientID: %s, ClientSecret: %s, Code: %s, Username: %s, Password: %s, SubjectToken: %s, Audience: %s}",
		r.GrantType, r.ClientID, redact(r.ClientSecret), redact(r.Code), r.Username, redact(r.Password), redact(r.SubjectToken), r.Audience)
}

func redact(value string) string {
	if value == "" {
		return emptyPlaceholder
	}
	return redactedPlaceholder
}

// TokenResponse is the provider's token endpoint response, passed through as-is.
type TokenResponse map[string]interface{}

// AccessToken returns the access_token field or an empty string
func (t TokenResponse) AccessToken() string {
	return t.stringField("access_token")
}

// IDToken returns the id_token field or an empty string
func (t TokenResponse) IDToken() string {
	return t.stringField("id_token")
}

// RefreshToken returns the refresh_token field or an empty string
func (t TokenResponse) RefreshToken() string {
	return t.stringField("refresh_token")
}

// TokenType returns the token_type field or an empty string
func (t TokenResponse) TokenType() string {
	return t.stringField("token_type")
}

func (t TokenResponse) stringField(key string) string {
	if value, ok := t[key].(string); ok {
		return value
	}
	return ""
}
