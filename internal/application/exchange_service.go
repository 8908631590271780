package application

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ipede/authcode-exchange-demo/internal/domain"
	"github.com/ipede/authcode-exchange-demo/internal/infrastructure/config"
	"github.com/ipede/authcode-exchange-demo/internal/infrastructure/jwt"
)

// AuthorizationURLBuilder builds the provider login URL for a state value
type AuthorizationURLBuilder interface {
	Build(state string) string
}

type ExchangeService struct {
	tokenClient  domain.TokenClient
	urlBuilder   AuthorizationURLBuilder
	audience     string
	demoUsername string
	demoPassword string
	logger       *zap.Logger
}

func NewExchangeService(
	tokenClient domain.TokenClient,
	urlBuilder AuthorizationURLBuilder,
	cfg *config.Config,
	logger *zap.Logger,
) *ExchangeService {
	return &ExchangeService{
		tokenClient:  tokenClient,
		urlBuilder:   urlBuilder,
		audience:     cfg.ClientBID,
		demoUsername: cfg.DemoUsername,
		demoPassword: cfg.DemoPassword,
		logger:       logger,
	}
}

func (s *ExchangeService) AuthorizationURL(state string) string {
	return s.urlBuilder.Build(state)
}

func (s *ExchangeService) CompleteLogin(ctx context.Context, code string) (*domain.CodeExchangeResult, error) {
	if code == "" {
		return nil, domain.ErrMissingCode
	}

	s.logger.Debug("Exchanging authorization code for tokens")

	tokenResponse, err := s.tokenClient.ExchangeAuthorizationCode(ctx, code)
	if err != nil {
		s.logger.Error("Failed to exchange authorization code", zap.Error(err))
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}

	result := &domain.CodeExchangeResult{
		TokenResponse: tokenResponse,
		Decoded: domain.CodeDecoded{
			AccessTokenPayload: jwt.DecodeOptional(tokenResponse.AccessToken()),
			IDTokenPayload:     jwt.DecodeOptional(tokenResponse.IDToken()),
		},
	}
	s.logDecodeFailure("access_token", result.Decoded.AccessTokenPayload)
	s.logDecodeFailure("id_token", result.Decoded.IDTokenPayload)

	return result, nil
}

func (s *ExchangeService) ExchangeForAudience(ctx context.Context, subjectToken string) (*domain.TokenExchangeResult, error) {
	if subjectToken == "" {
		return nil, domain.ErrMissingSubjectToken
	}

	s.logger.Debug("Exchanging subject token",
		zap.String("audience", s.audience))

	tokenResponse, err := s.tokenClient.ExchangeToken(ctx, subjectToken, s.audience)
	if err != nil {
		s.logger.Error("Token exchange failed",
			zap.String("audience", s.audience),
			zap.Error(err))
		return nil, fmt.Errorf("exchange token for %s: %w", s.audience, err)
	}

	result := &domain.TokenExchangeResult{
		Audience:      s.audience,
		TokenResponse: tokenResponse,
		Decoded: domain.TokenExchangeDecoded{
			ExchangedAccessTokenPayload: jwt.DecodeOptional(tokenResponse.AccessToken()),
		},
	}
	s.logDecodeFailure("exchanged_access_token", result.Decoded.ExchangedAccessTokenPayload)

	return result, nil
}

func (s *ExchangeService) FetchPasswordToken(ctx context.Context) (*domain.PasswordGrantResult, error) {
	s.logger.Debug("Fetching token with password grant",
		zap.String("username", s.demoUsername))

	tokenResponse, err := s.tokenClient.ExchangePassword(ctx, s.demoUsername, s.demoPassword)
	if err != nil {
		return nil, fmt.Errorf("password grant: %w", err)
	}

	return &domain.PasswordGrantResult{
		TokenResponse:      tokenResponse,
		AccessTokenPayload: jwt.DecodeOptional(tokenResponse.AccessToken()),
	}, nil
}

func (s *ExchangeService) logDecodeFailure(field string, payload *domain.DecodedPayload) {
	if payload != nil && payload.Err != nil {
		s.logger.Warn("Returned token could not be decoded",
			zap.String("field", field),
			zap.Error(payload.Err))
	}
}
