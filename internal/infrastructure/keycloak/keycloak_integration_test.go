//go:build integration

package keycloak

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	apperrors "github.com/ipede/authcode-exchange-demo/internal/domain/errors"
	"github.com/ipede/authcode-exchange-demo/internal/infrastructure/config"
	"github.com/ipede/authcode-exchange-demo/internal/infrastructure/jwt"
)

const keycloakImage = "quay.io/keycloak/keycloak:26.0"

// setupKeycloakContainer starts Keycloak with the demo realm imported
func setupKeycloakContainer(t *testing.T) *config.Config {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        keycloakImage,
		ExposedPorts: []string{"8080/tcp"},
		Cmd:          []string{"start-dev", "--import-realm"},
		Env: map[string]string{
			"KC_BOOTSTRAP_ADMIN_USERNAME": "admin",
			"KC_BOOTSTRAP_ADMIN_PASSWORD": "admin",
		},
		Files: []testcontainers.ContainerFile{
			{
				HostFilePath:      "testdata/demo-realm.json",
				ContainerFilePath: "/opt/keycloak/data/import/demo-realm.json",
				FileMode:          0o644,
			},
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("8080/tcp"),
			wait.ForHTTP("/realms/demo/.well-known/openid-configuration").WithPort("8080/tcp"),
		).WithDeadline(3 * time.Minute),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate keycloak container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)

	port, err := container.MappedPort(ctx, "8080")
	require.NoError(t, err)

	cfg := config.NewConfig()
	cfg.KeycloakBaseURL = fmt.Sprintf("http://%s:%s", host, port.Port())
	return cfg
}

func TestKeycloak_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping keycloak integration test in short mode")
	}

	cfg := setupKeycloakContainer(t)
	ctx := context.Background()

	t.Run("Password grant", func(t *testing.T) {
		client := NewClient(cfg, zap.NewNop())

		tokens, err := client.ExchangePassword(ctx, cfg.DemoUsername, cfg.DemoPassword)
		require.NoError(t, err)
		require.NotEmpty(t, tokens.AccessToken())

		claims, err := jwt.DecodePayload(tokens.AccessToken())
		require.NoError(t, err)
		assert.Equal(t, cfg.ClientID, claims["azp"])
		assert.Equal(t, cfg.DemoUsername, claims["preferred_username"])

		ok, reasons := jwt.ValidateBasicClaims(claims, "", cfg.KeycloakBaseURL+"/realms/"+cfg.KeycloakRealm)
		assert.True(t, ok, reasons)
	})

	t.Run("Unknown code is rejected", func(t *testing.T) {
		client := NewClient(cfg, zap.NewNop())

		_, err := client.ExchangeAuthorizationCode(ctx, "BAD")

		appErr, ok := apperrors.As(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.UpstreamRejected, appErr.Code)
		assert.Equal(t, http.StatusBadRequest, appErr.UpstreamStatus)
		assert.Contains(t, appErr.UpstreamBody, "invalid_grant")
	})

	t.Run("Wrong client secret", func(t *testing.T) {
		wrong := *cfg
		wrong.ClientSecret = "not-the-secret"
		client := NewClient(&wrong, zap.NewNop())

		_, err := client.ExchangePassword(ctx, cfg.DemoUsername, cfg.DemoPassword)

		appErr, ok := apperrors.As(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusUnauthorized, appErr.UpstreamStatus)
		assert.Contains(t, appErr.UpstreamBody, "unauthorized_client")
	})

	t.Run("Authorization endpoint serves the login page", func(t *testing.T) {
		authURL := NewAuthorizationURLBuilder(cfg).Build("abc")

		resp, err := http.Get(authURL)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}
