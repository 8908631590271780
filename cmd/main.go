package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/ipede/authcode-exchange-demo/internal/application"
	"github.com/ipede/authcode-exchange-demo/internal/infrastructure/config"
	"github.com/ipede/authcode-exchange-demo/internal/infrastructure/keycloak"
	httprouter "github.com/ipede/authcode-exchange-demo/internal/interfaces/http"
	"github.com/ipede/authcode-exchange-demo/internal/interfaces/http/views"
)

func main() {
	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Load configuration
	cfg, err := config.LoadConfig(logger)
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	// Initialize services
	tokenClient := keycloak.NewClient(cfg, logger)
	urlBuilder := keycloak.NewAuthorizationURLBuilder(cfg)
	exchangeService := application.NewExchangeService(tokenClient, urlBuilder, cfg, logger)

	renderer, err := views.NewRenderer(logger)
	if err != nil {
		logger.Fatal("Failed to load page templates", zap.Error(err))
	}

	// Create router
	router := httprouter.NewRouter(exchangeService, renderer, cfg, logger)

	// Start server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 2*config.ProviderTimeout + 5*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Starting server",
			zap.Int("port", cfg.ServerPort),
			zap.String("realm_url", cfg.RealmURL()),
			zap.String("client_id", cfg.ClientID),
			zap.String("audience", cfg.ClientBID))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Graceful shutdown
	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited properly")
}
