package keycloak

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/ipede/authcode-exchange-demo/internal/domain"
	apperrors "github.com/ipede/authcode-exchange-demo/internal/domain/errors"
	"github.com/ipede/authcode-exchange-demo/internal/infrastructure/config"
	"github.com/ipede/authcode-exchange-demo/internal/infrastructure/metrics"
)

const (
	actionAuthorizationCode = "authorization_code"
	actionPassword          = "password"
	actionTokenExchange     = "token_exchange"

	outcomeSuccess  = "success"
	outcomeRejected = "rejected"
	outcomeNetwork  = "network_failure"
)

// Client calls the token endpoint of a Keycloak realm
type Client struct {
	http         *resty.Client
	tokenURL     string
	clientID     string
	clientSecret string
	redirectURI  string
	logger       *zap.Logger
}

// Option customises a Client
type Option func(*Client)

// WithTimeout overrides the provider timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.http.SetTimeout(timeout)
	}
}

// NewClient creates a token endpoint client for client A of cfg
func NewClient(cfg *config.Config, logger *zap.Logger, opts ...Option) *Client {
	httpClient := resty.New().
		SetTimeout(config.ProviderTimeout).
		SetHeader("Accept", "application/json")

	c := &Client{
		http:         httpClient,
		tokenURL:     cfg.TokenURL(),
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		redirectURI:  cfg.RedirectURI,
		logger:       logger,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// ExchangeAuthorizationCode exchanges a callback code for tokens
func (c *Client) ExchangeAuthorizationCode(ctx context.Context, code string) (domain.TokenResponse, error) {
	req := domain.GrantRequest{
		GrantType:    domain.GrantTypeAuthorizationCode,
		ClientID:     c.clientID,
		ClientSecret: c.clientSecret,
		Code:         code,
		RedirectURI:  c.redirectURI,
	}
	return c.requestToken(ctx, actionAuthorizationCode, req, "Failed to exchange authorization code for token.")
}

// ExchangePassword runs the resource-owner password grant
func (c *Client) ExchangePassword(ctx context.Context, username, password string) (domain.TokenResponse, error) {
	req := domain.GrantRequest{
		GrantType:    domain.GrantTypePassword,
		ClientID:     c.clientID,
		ClientSecret: c.clientSecret,
		Username:     username,
		Password:     password,
	}
	return c.requestToken(ctx, actionPassword, req, "Failed to fetch token with password grant.")
}

// ExchangeToken exchanges subjectToken for an access token issued to audience
func (c *Client) ExchangeToken(ctx context.Context, subjectToken, audience string) (domain.TokenResponse, error) {
	req := domain.GrantRequest{
		GrantType:          domain.GrantTypeTokenExchange,
		ClientID:           c.clientID,
		ClientSecret:       c.clientSecret,
		SubjectToken:       subjectToken,
		RequestedTokenType: domain.TokenTypeAccessToken,
		Audience:           audience,
	}
	return c.requestToken(ctx, actionTokenExchange, req, fmt.Sprintf("Failed token exchange from %s to %s.", c.clientID, audience))
}

func (c *Client) requestToken(ctx context.Context, action string, req domain.GrantRequest, failure string) (domain.TokenResponse, error) {
	c.logger.Debug("Requesting token",
		zap.String("grant_type", req.GrantType),
		zap.Stringer("request", req))

	start := time.Now()
	resp, err := c.http.R().
		SetContext(ctx).
		SetFormDataFromValues(req.Form()).
		Post(c.tokenURL)
	metrics.OauthLatencyMetric.WithLabelValues(action).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.OauthTokensMetric.WithLabelValues(action, outcomeNetwork).Inc()
		c.logger.Error("Token request failed",
			zap.String("grant_type", req.GrantType),
			zap.String("token_url", c.tokenURL),
			zap.Error(err))
		return nil, apperrors.NewNetworkFailureError(failure, err)
	}

	if resp.StatusCode() != http.StatusOK {
		metrics.OauthTokensMetric.WithLabelValues(action, outcomeRejected).Inc()
		c.logger.Warn("Token request rejected",
			zap.String("grant_type", req.GrantType),
			zap.Int("status", resp.StatusCode()))
		return nil, apperrors.NewUpstreamRejectedError(failure, resp.StatusCode(), resp.String())
	}

	var tokenResponse domain.TokenResponse
	if err := json.Unmarshal(resp.Body(), &tokenResponse); err != nil || tokenResponse == nil {
		metrics.OauthTokensMetric.WithLabelValues(action, outcomeRejected).Inc()
		c.logger.Warn("Token response is not a JSON object",
			zap.String("grant_type", req.GrantType),
			zap.Error(err))
		return nil, apperrors.NewUpstreamRejectedError(failure, resp.StatusCode(), resp.String())
	}

	metrics.OauthTokensMetric.WithLabelValues(action, outcomeSuccess).Inc()
	c.logger.Debug("Token request succeeded",
		zap.String("grant_type", req.GrantType),
		zap.Duration("took", time.Since(start)))

	return tokenResponse, nil
}
