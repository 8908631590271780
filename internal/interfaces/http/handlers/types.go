package handlers

import "github.com/ipede/authcode-exchange-demo/internal/domain"

// DefaultState is used when the login request carries no state
const DefaultState = "demo-state"

// LoginResponse carries the provider authorization URL
type LoginResponse struct {
	AuthorizationURL string `json:"authorization_url"`
}

// CallbackResponse represents the result of the authorization code callback
type CallbackResponse struct {
	Message       string               `json:"message"`
	State         string               `json:"state"`
	TokenResponse domain.TokenResponse `json:"token_response"`
	Decoded       domain.CodeDecoded   `json:"decoded"`
}

// TokenExchangeResponse represents the result of a token exchange
type TokenExchangeResponse struct {
	Message       string                      `json:"message"`
	Audience      string                      `json:"audience"`
	TokenResponse domain.TokenResponse        `json:"token_response"`
	Decoded       domain.TokenExchangeDecoded `json:"decoded"`
}
