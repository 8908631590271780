package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/ipede/authcode-exchange-demo/internal/domain"
	"github.com/ipede/authcode-exchange-demo/internal/infrastructure/config"
	"github.com/ipede/authcode-exchange-demo/internal/infrastructure/metrics"
	"github.com/ipede/authcode-exchange-demo/internal/interfaces/http/handlers"
	"github.com/ipede/authcode-exchange-demo/internal/interfaces/http/views"
)

type Router struct {
	router *chi.Mux
}

func NewRouter(
	service domain.ExchangeService,
	renderer *views.Renderer,
	cfg *config.Config,
	logger *zap.Logger,
) *Router {
	// Initialize handlers
	authHandler := handlers.NewAuthHandler(service, renderer, cfg, logger)
	exchangeHandler := handlers.NewExchangeHandler(service, renderer, cfg.ClientID, logger)

	// Create router with middleware
	router := createRouter()

	// Health check endpoints
	router.Group(func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("OK"))
		})

		r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("Ready"))
		})

		r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("Alive"))
		})
	})

	router.Handle("/metrics", metrics.Handler())

	// Authorization code flow
	router.Group(func(r chi.Router) {
		r.Get("/", authHandler.IndexHandler)
		r.Get("/login", authHandler.LoginHandler)
		r.Get("/login-page", authHandler.LoginPageHandler)
		r.Get("/callback", authHandler.CallbackHandler)
		r.Get("/callback/view", authHandler.CallbackViewHandler)
	})

	// Token exchange from client A to client B
	router.Group(func(r chi.Router) {
		r.Post("/token-exchange", exchangeHandler.TokenExchangeHandler)
		r.Post("/token-exchange/view", exchangeHandler.TokenExchangeViewHandler)
	})

	return &Router{router: router}
}

func createRouter() *chi.Mux {
	router := chi.NewRouter()

	// Add middleware
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	// outlives the provider timeout so upstream failures are reported, not cut off
	router.Use(middleware.Timeout(2 * config.ProviderTimeout))

	return router
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.router.ServeHTTP(w, req)
}
