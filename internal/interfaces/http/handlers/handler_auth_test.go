package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ipede/authcode-exchange-demo/internal/domain"
	apperrors "github.com/ipede/authcode-exchange-demo/internal/domain/errors"
	"github.com/ipede/authcode-exchange-demo/internal/infrastructure/config"
	"github.com/ipede/authcode-exchange-demo/internal/interfaces/http/views"
)

type mockExchangeService struct {
	mock.Mock
}

func (m *mockExchangeService) AuthorizationURL(state string) string {
	args := m.Called(state)
	return args.String(0)
}

func (m *mockExchangeService) CompleteLogin(ctx context.Context, code string) (*domain.CodeExchangeResult, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CodeExchangeResult), args.Error(1)
}

func (m *mockExchangeService) ExchangeForAudience(ctx context.Context, subjectToken string) (*domain.TokenExchangeResult, error) {
	args := m.Called(ctx, subjectToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TokenExchangeResult), args.Error(1)
}

func (m *mockExchangeService) FetchPasswordToken(ctx context.Context) (*domain.PasswordGrantResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PasswordGrantResult), args.Error(1)
}

func newTestRenderer(t *testing.T) *views.Renderer {
	t.Helper()
	renderer, err := views.NewRenderer(zap.NewNop())
	require.NoError(t, err)
	return renderer
}

func newAuthHandler(t *testing.T, service domain.ExchangeService) *AuthHandler {
	return NewAuthHandler(service, newTestRenderer(t), config.NewConfig(), zap.NewNop())
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body
}

func codeResult() *domain.CodeExchangeResult {
	return &domain.CodeExchangeResult{
		TokenResponse: domain.TokenResponse{
			"access_token": "header.payload.signature",
			"token_type":   "Bearer",
		},
		Decoded: domain.CodeDecoded{
			AccessTokenPayload: &domain.DecodedPayload{Claims: domain.Claims{"sub": "user-1", "aud": "demo-client-a"}},
		},
	}
}

func TestAuthHandler_IndexHandler(t *testing.T) {
	handler := newAuthHandler(t, new(mockExchangeService))
	w := httptest.NewRecorder()

	handler.IndexHandler(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "demo-client-a")
}

func TestAuthHandler_LoginHandler(t *testing.T) {
	tests := []struct {
		name          string
		target        string
		expectedState string
	}{
		{
			name:          "Default state",
			target:        "/login",
			expectedState: DefaultState,
		},
		{
			name:          "Explicit state",
			target:        "/login?state=abc",
			expectedState: "abc",
		},
		{
			name:          "Empty state is kept",
			target:        "/login?state=",
			expectedState: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := new(mockExchangeService)
			service.On("AuthorizationURL", tt.expectedState).Return("http://kc/auth?state=" + tt.expectedState)
			handler := newAuthHandler(t, service)
			w := httptest.NewRecorder()

			handler.LoginHandler(w, httptest.NewRequest(http.MethodGet, tt.target, nil))

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			body := decodeBody(t, w)
			assert.Equal(t, "http://kc/auth?state="+tt.expectedState, body["authorization_url"])
			service.AssertExpectations(t)
		})
	}
}

func TestAuthHandler_LoginPageHandler(t *testing.T) {
	service := new(mockExchangeService)
	service.On("AuthorizationURL", "xyz").Return("http://kc/auth?state=xyz")
	handler := newAuthHandler(t, service)
	w := httptest.NewRecorder()

	handler.LoginPageHandler(w, httptest.NewRequest(http.MethodGet, "/login-page?state=xyz", nil))

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "http://kc/auth?state=xyz", w.Header().Get("Location"))
}

func TestAuthHandler_CallbackHandler(t *testing.T) {
	tests := []struct {
		name           string
		target         string
		code           string
		result         *domain.CodeExchangeResult
		err            error
		expectedStatus int
		checkBody      func(*testing.T, map[string]interface{})
	}{
		{
			name:           "Success",
			target:         "/callback?code=good&state=s1",
			code:           "good",
			result:         codeResult(),
			expectedStatus: http.StatusOK,
			checkBody: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "Authorization code received and exchanged for token.", body["message"])
				assert.Equal(t, "s1", body["state"])
				tokens := body["token_response"].(map[string]interface{})
				assert.Equal(t, "header.payload.signature", tokens["access_token"])
				decoded := body["decoded"].(map[string]interface{})
				assert.Equal(t, "user-1", decoded["access_token_payload"].(map[string]interface{})["sub"])
				assert.Contains(t, decoded, "id_token_payload")
				assert.Nil(t, decoded["id_token_payload"])
			},
		},
		{
			name:   "Provider rejects the code",
			target: "/callback?code=BAD",
			code:   "BAD",
			err: apperrors.NewUpstreamRejectedError("Failed to exchange authorization code for token.",
				http.StatusBadRequest, `{"error":"invalid_grant","error_description":"Code not valid"}`),
			expectedStatus: http.StatusBadRequest,
			checkBody: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, apperrors.UpstreamRejected, body["code"])
				assert.Equal(t, "Failed to exchange authorization code for token.", body["message"])
				assert.Equal(t, float64(http.StatusBadRequest), body["upstream_status"])
				assert.Contains(t, body["upstream_response"], "Code not valid")
			},
		},
		{
			name:           "Missing code",
			target:         "/callback",
			code:           "",
			err:            domain.ErrMissingCode,
			expectedStatus: http.StatusBadRequest,
			checkBody: func(t *testing.T, body map[string]interface{}) {
				details := body["details"].([]interface{})
				require.Len(t, details, 1)
				assert.Equal(t, "code", details[0].(map[string]interface{})["field"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := new(mockExchangeService)
			if tt.result != nil {
				service.On("CompleteLogin", mock.Anything, tt.code).Return(tt.result, nil)
			} else {
				service.On("CompleteLogin", mock.Anything, tt.code).Return(nil, tt.err)
			}
			handler := newAuthHandler(t, service)
			w := httptest.NewRecorder()

			handler.CallbackHandler(w, httptest.NewRequest(http.MethodGet, tt.target, nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			tt.checkBody(t, decodeBody(t, w))
			service.AssertExpectations(t)
		})
	}
}

func TestAuthHandler_CallbackViewHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		service := new(mockExchangeService)
		service.On("CompleteLogin", mock.Anything, "good").Return(codeResult(), nil)
		handler := newAuthHandler(t, service)
		w := httptest.NewRecorder()

		handler.CallbackViewHandler(w, httptest.NewRequest(http.MethodGet, "/callback/view?code=good&state=s1", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
		body := w.Body.String()
		assert.Contains(t, body, `<textarea name="subject_token">header.payload.signature</textarea>`)
		assert.Contains(t, body, "s1")
	})

	t.Run("Network failure", func(t *testing.T) {
		service := new(mockExchangeService)
		service.On("CompleteLogin", mock.Anything, "good").
			Return(nil, apperrors.NewNetworkFailureError("Failed to exchange authorization code for token.", context.DeadlineExceeded))
		handler := newAuthHandler(t, service)
		w := httptest.NewRecorder()

		handler.CallbackViewHandler(w, httptest.NewRequest(http.MethodGet, "/callback/view?code=good", nil))

		assert.Equal(t, http.StatusBadGateway, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, apperrors.NetworkFailure, body["code"])
	})
}
