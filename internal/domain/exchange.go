package domain

import "context"

// CodeDecoded holds the decoded payloads of an authorization_code response
type CodeDecoded struct {
	AccessTokenPayload *DecodedPayload `json:"access_token_payload"`
	IDTokenPayload     *DecodedPayload `json:"id_token_payload"`
}

// CodeExchangeResult is returned after exchanging an authorization code
type CodeExchangeResult struct {
	TokenResponse TokenResponse `json:"token_response"`
	Decoded       CodeDecoded   `json:"decoded"`
}

// TokenExchangeDecoded holds the decoded payload of a token-exchange response
type TokenExchangeDecoded struct {
	ExchangedAccessTokenPayload *DecodedPayload `json:"exchanged_access_token_payload"`
}

// TokenExchangeResult is returned after exchanging a subject token for another audience
type TokenExchangeResult struct {
	Audience      string               `json:"audience"`
	TokenResponse TokenResponse        `json:"token_response"`
	Decoded       TokenExchangeDecoded `json:"decoded"`
}

// PasswordGrantResult is returned after a resource-owner password grant
type PasswordGrantResult struct {
	TokenResponse      TokenResponse   `json:"token_response"`
	AccessTokenPayload *DecodedPayload `json:"access_token_payload"`
}

// TokenClient defines the calls made against the provider's token endpoint
type TokenClient interface {
	// ExchangeAuthorizationCode exchanges a one-time code for tokens
	ExchangeAuthorizationCode(ctx context.Context, code string) (TokenResponse, error)

	// ExchangePassword exchanges user credentials for tokens
	ExchangePassword(ctx context.Context, username, password string) (TokenResponse, error)

	// ExchangeToken exchanges a subject access token for one issued to audience
	ExchangeToken(ctx context.Context, subjectToken, audience string) (TokenResponse, error)
}

// ExchangeService composes token endpoint calls with payload decoding
type ExchangeService interface {
	// AuthorizationURL returns the provider login URL carrying state
	AuthorizationURL(state string) string

	// CompleteLogin exchanges the callback code and decodes the returned tokens
	CompleteLogin(ctx context.Context, code string) (*CodeExchangeResult, error)

	// ExchangeForAudience exchanges subjectToken for a token scoped to the second client
	ExchangeForAudience(ctx context.Context, subjectToken string) (*TokenExchangeResult, error)

	// FetchPasswordToken runs the password grant for the configured demo user
	FetchPasswordToken(ctx context.Context) (*PasswordGrantResult, error)
}
