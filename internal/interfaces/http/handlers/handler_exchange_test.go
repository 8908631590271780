package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/ipede/authcode-exchange-demo/internal/domain"
	apperrors "github.com/ipede/authcode-exchange-demo/internal/domain/errors"
)

func exchangeRequest(target, subjectToken string) *http.Request {
	form := url.Values{}
	if subjectToken != "" {
		form.Set("subject_token", subjectToken)
	}
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func exchangeResult() *domain.TokenExchangeResult {
	return &domain.TokenExchangeResult{
		Audience: "demo-client-b",
		TokenResponse: domain.TokenResponse{
			"access_token":      "exchanged.payload.signature",
			"issued_token_type": domain.TokenTypeAccessToken,
		},
		Decoded: domain.TokenExchangeDecoded{
			ExchangedAccessTokenPayload: &domain.DecodedPayload{Claims: domain.Claims{"aud": "demo-client-b"}},
		},
	}
}

func TestExchangeHandler_TokenExchangeHandler(t *testing.T) {
	tests := []struct {
		name           string
		subjectToken   string
		result         *domain.TokenExchangeResult
		err            error
		expectedStatus int
		checkBody      func(*testing.T, map[string]interface{})
	}{
		{
			name:           "Success",
			subjectToken:   "subject.token.value",
			result:         exchangeResult(),
			expectedStatus: http.StatusOK,
			checkBody: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "Token exchange succeeded (demo-client-a -> demo-client-b).", body["message"])
				assert.Equal(t, "demo-client-b", body["audience"])
				decoded := body["decoded"].(map[string]interface{})
				payload := decoded["exchanged_access_token_payload"].(map[string]interface{})
				assert.Equal(t, "demo-client-b", payload["aud"])
			},
		},
		{
			name:           "Missing subject token",
			subjectToken:   "",
			err:            domain.ErrMissingSubjectToken,
			expectedStatus: http.StatusBadRequest,
			checkBody: func(t *testing.T, body map[string]interface{}) {
				details := body["details"].([]interface{})
				assert.Equal(t, "subject_token", details[0].(map[string]interface{})["field"])
			},
		},
		{
			name:         "Provider rejects the subject token",
			subjectToken: "expired",
			err: apperrors.NewUpstreamRejectedError("Failed token exchange from demo-client-a to demo-client-b.",
				http.StatusBadRequest, `{"error":"invalid_token","error_description":"Invalid token"}`),
			expectedStatus: http.StatusBadRequest,
			checkBody: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, float64(http.StatusBadRequest), body["upstream_status"])
				assert.Contains(t, body["upstream_response"], "invalid_token")
			},
		},
		{
			name:           "Provider unreachable",
			subjectToken:   "subject.token.value",
			err:            apperrors.NewNetworkFailureError("Failed token exchange from demo-client-a to demo-client-b.", errors.New("connection refused")),
			expectedStatus: http.StatusBadGateway,
			checkBody: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, apperrors.NetworkFailure, body["code"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := new(mockExchangeService)
			if tt.result != nil {
				service.On("ExchangeForAudience", mock.Anything, tt.subjectToken).Return(tt.result, nil)
			} else {
				service.On("ExchangeForAudience", mock.Anything, tt.subjectToken).Return(nil, tt.err)
			}
			handler := NewExchangeHandler(service, newTestRenderer(t), "demo-client-a", zap.NewNop())
			w := httptest.NewRecorder()

			handler.TokenExchangeHandler(w, exchangeRequest("/token-exchange", tt.subjectToken))

			assert.Equal(t, tt.expectedStatus, w.Code)
			tt.checkBody(t, decodeBody(t, w))
			service.AssertExpectations(t)
		})
	}
}

func TestExchangeHandler_TokenExchangeViewHandler(t *testing.T) {
	service := new(mockExchangeService)
	service.On("ExchangeForAudience", mock.Anything, "subject.token.value").Return(exchangeResult(), nil)
	handler := NewExchangeHandler(service, newTestRenderer(t), "demo-client-a", zap.NewNop())
	w := httptest.NewRecorder()

	handler.TokenExchangeViewHandler(w, exchangeRequest("/token-exchange/view", "subject.token.value"))

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "demo-client-a &rarr; demo-client-b")
	assert.Contains(t, body, "exchanged.payload.signature")
}
