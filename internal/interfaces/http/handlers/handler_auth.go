package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/ipede/authcode-exchange-demo/internal/domain"
	"github.com/ipede/authcode-exchange-demo/internal/infrastructure/config"
	httperrors "github.com/ipede/authcode-exchange-demo/internal/interfaces/http/errors"
	"github.com/ipede/authcode-exchange-demo/internal/interfaces/http/views"
)

// AuthHandler drives the authorization code flow: redirect, then callback.
// The state parameter is echoed back but never checked against an issued value.
type AuthHandler struct {
	service  domain.ExchangeService
	renderer *views.Renderer
	index    views.IndexView
	clientID string
	audience string
	logger   *zap.Logger
}

func NewAuthHandler(service domain.ExchangeService, renderer *views.Renderer, cfg *config.Config, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		service:  service,
		renderer: renderer,
		index: views.IndexView{
			Realm:       cfg.KeycloakRealm,
			ClientID:    cfg.ClientID,
			ClientBID:   cfg.ClientBID,
			RedirectURI: cfg.RedirectURI,
		},
		clientID: cfg.ClientID,
		audience: cfg.ClientBID,
		logger:   logger,
	}
}

// IndexHandler renders the landing page
func (h *AuthHandler) IndexHandler(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, views.IndexTemplate, h.index)
}

// LoginHandler returns the authorization URL as JSON
func (h *AuthHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	authURL := h.service.AuthorizationURL(stateParam(r))

	writeJSON(w, h.logger, LoginResponse{AuthorizationURL: authURL})
}

// LoginPageHandler redirects the browser to the provider
func (h *AuthHandler) LoginPageHandler(w http.ResponseWriter, r *http.Request) {
	authURL := h.service.AuthorizationURL(stateParam(r))

	h.logger.Debug("Redirecting to provider",
		zap.String("authorization_url", authURL))

	http.Redirect(w, r, authURL, http.StatusFound)
}

// CallbackHandler exchanges the callback code and returns tokens with decoded payloads
func (h *AuthHandler) CallbackHandler(w http.ResponseWriter, r *http.Request) {
	state := r.URL.Query().Get("state")
	result, err := h.service.CompleteLogin(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		h.logger.Error("Callback failed", zap.String("state", state), zap.Error(err))
		httperrors.RespondWithAppError(w, err)
		return
	}

	writeJSON(w, h.logger, CallbackResponse{
		Message:       "Authorization code received and exchanged for token.",
		State:         state,
		TokenResponse: result.TokenResponse,
		Decoded:       result.Decoded,
	})
}

// CallbackViewHandler renders the callback result as HTML
func (h *AuthHandler) CallbackViewHandler(w http.ResponseWriter, r *http.Request) {
	state := r.URL.Query().Get("state")
	result, err := h.service.CompleteLogin(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		h.logger.Error("Callback failed", zap.String("state", state), zap.Error(err))
		httperrors.RespondWithAppError(w, err)
		return
	}

	h.renderer.Render(w, views.CallbackTemplate, views.NewCallbackView(state, h.clientID, h.audience, result))
}

func stateParam(r *http.Request) string {
	query := r.URL.Query()
	if !query.Has("state") {
		return DefaultState
	}
	return query.Get("state")
}

func writeJSON(w http.ResponseWriter, logger *zap.Logger, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("Failed to encode response", zap.Error(err))
		httperrors.RespondWithError(w, httperrors.ErrCodeInternal, "Failed to encode response", nil, http.StatusInternalServerError)
	}
}
