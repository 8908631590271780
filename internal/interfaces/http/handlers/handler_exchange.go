package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ipede/authcode-exchange-demo/internal/domain"
	httperrors "github.com/ipede/authcode-exchange-demo/internal/interfaces/http/errors"
	"github.com/ipede/authcode-exchange-demo/internal/interfaces/http/views"
)

// ExchangeHandler exchanges a client A access token for one scoped to client B
type ExchangeHandler struct {
	service  domain.ExchangeService
	renderer *views.Renderer
	clientID string
	logger   *zap.Logger
}

func NewExchangeHandler(service domain.ExchangeService, renderer *views.Renderer, clientID string, logger *zap.Logger) *ExchangeHandler {
	return &ExchangeHandler{
		service:  service,
		renderer: renderer,
		clientID: clientID,
		logger:   logger,
	}
}

func (h *ExchangeHandler) exchange(w http.ResponseWriter, r *http.Request) (*domain.TokenExchangeResult, bool) {
	if err := r.ParseForm(); err != nil {
		h.logger.Error("Failed to parse form", zap.Error(err))
		httperrors.RespondWithError(w, httperrors.ErrCodeInvalidRequest, "Invalid request body", nil, http.StatusBadRequest)
		return nil, false
	}

	result, err := h.service.ExchangeForAudience(r.Context(), r.PostForm.Get("subject_token"))
	if err != nil {
		h.logger.Error("Token exchange failed", zap.Error(err))
		httperrors.RespondWithAppError(w, err)
		return nil, false
	}

	return result, true
}

// TokenExchangeHandler returns the exchanged token as JSON
func (h *ExchangeHandler) TokenExchangeHandler(w http.ResponseWriter, r *http.Request) {
	result, ok := h.exchange(w, r)
	if !ok {
		return
	}

	writeJSON(w, h.logger, TokenExchangeResponse{
		Message:       "Token exchange succeeded (" + h.clientID + " -> " + result.Audience + ").",
		Audience:      result.Audience,
		TokenResponse: result.TokenResponse,
		Decoded:       result.Decoded,
	})
}

// TokenExchangeViewHandler renders the exchanged token as HTML
func (h *ExchangeHandler) TokenExchangeViewHandler(w http.ResponseWriter, r *http.Request) {
	result, ok := h.exchange(w, r)
	if !ok {
		return
	}

	h.renderer.Render(w, views.ExchangeTemplate, views.NewExchangeView(h.clientID, result))
}
