package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// ProviderTimeout bounds every call made to the identity provider
const ProviderTimeout = 10 * time.Second

// DefaultScope is requested on the authorization endpoint
const DefaultScope = "openid profile"

// Config holds the application configuration. It is built once at start-up
// and only read afterwards.
type Config struct {
	// Identity provider
	KeycloakBaseURL string
	KeycloakRealm   string

	// Client A initiates the login and performs the token exchange
	ClientID     string
	ClientSecret string
	RedirectURI  string

	// Client B is the audience of exchanged tokens
	ClientBID string

	// Demo user for the password grant
	DemoUsername string
	DemoPassword string

	// Server configuration
	ServerPort int
}

// NewConfig creates a new configuration with default values
func NewConfig() *Config {
	return &Config{
		KeycloakBaseURL: "http://localhost:8080",
		KeycloakRealm:   "demo",

		ClientID:     "demo-client-a",
		ClientSecret: "demo-client-a-secret",
		RedirectURI:  "http://localhost:9000/callback/view",

		ClientBID: "demo-client-b",

		DemoUsername: "demo-user",
		DemoPassword: "demo-user-password",

		ServerPort: 9000,
	}
}

// LoadConfig loads configuration from environment variables
func LoadConfig(logger *zap.Logger) (*Config, error) {
	// Load .env from project root
	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file loaded", zap.Error(err))
	}

	defaults := NewConfig()

	port, err := strconv.Atoi(getEnv("PORT", strconv.Itoa(defaults.ServerPort)))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	baseURL := strings.TrimRight(getEnv("KEYCLOAK_BASE_URL", defaults.KeycloakBaseURL), "/")
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid KEYCLOAK_BASE_URL: %w", err)
	}

	cfg := &Config{
		KeycloakBaseURL: baseURL,
		KeycloakRealm:   getEnv("KEYCLOAK_REALM", defaults.KeycloakRealm),

		ClientID:     getEnv("OIDC_CLIENT_ID", defaults.ClientID),
		ClientSecret: getEnv("OIDC_CLIENT_SECRET", defaults.ClientSecret),
		RedirectURI:  getEnv("OIDC_REDIRECT_URI", defaults.RedirectURI),

		ClientBID: getEnv("OIDC_CLIENT_B_ID", defaults.ClientBID),

		DemoUsername: getEnv("DEMO_USER_USERNAME", defaults.DemoUsername),
		DemoPassword: getEnv("DEMO_USER_PASSWORD", defaults.DemoPassword),

		ServerPort: port,
	}

	logger.Debug("Configuration loaded",
		zap.String("keycloak_base_url", cfg.KeycloakBaseURL),
		zap.String("realm", cfg.KeycloakRealm),
		zap.String("client_id", cfg.ClientID),
		zap.String("client_b_id", cfg.ClientBID),
		zap.String("redirect_uri", cfg.RedirectURI))

	return cfg, nil
}

// RealmURL returns the OpenID Connect base path of the configured realm
func (c *Config) RealmURL() string {
	return fmt.Sprintf("%s/realms/%s/protocol/openid-connect", c.KeycloakBaseURL, c.KeycloakRealm)
}

// AuthURL returns the provider's authorization endpoint
func (c *Config) AuthURL() string {
	return c.RealmURL() + "/auth"
}

// TokenURL returns the provider's token endpoint
func (c *Config) TokenURL() string {
	return c.RealmURL() + "/token"
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
