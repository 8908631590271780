// Package fakekeycloak runs an in-process identity provider that implements the
// token endpoint grants used by the demo. Tokens are HS256-signed and carry
// Keycloak-shaped claims.
package fakekeycloak

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	gojwt "github.com/golang-jwt/jwt/v5"

	"github.com/ipede/authcode-exchange-demo/internal/domain"
	"github.com/ipede/authcode-exchange-demo/internal/infrastructure/config"
)

const (
	DefaultRealm        = "demo"
	DefaultClientID     = "demo-client-a"
	DefaultClientSecret = "demo-client-a-secret"
	DefaultClientBID    = "demo-client-b"
	DefaultUsername     = "demo-user"
	DefaultPassword     = "demo-user-password"
	DefaultRedirectURI  = "http://localhost:9000/callback/view"
	ValidCode           = "valid-code"
	Subject             = "1e11e539-8256-4b3b-bda8-cc0d56cddb48"
)

var signingKey = []byte("fake-keycloak-signing-key")

// Server is a fake Keycloak realm
type Server struct {
	*httptest.Server

	mu    sync.Mutex
	delay time.Duration
	forms []url.Values
	// omitIDToken drops id_token from authorization_code responses
	omitIDToken bool
}

// New starts a fake provider that is closed when the test ends
func New(t testing.TB) *Server {
	t.Helper()

	s := &Server{}
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Post("/realms/{realm}/protocol/openid-connect/token", s.tokenHandler)

	s.Server = httptest.NewServer(router)
	t.Cleanup(s.Close)

	return s
}

// SetDelay makes the token endpoint wait before answering
func (s *Server) SetDelay(delay time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delay = delay
}

// OmitIDToken drops id_token from subsequent authorization_code responses
func (s *Server) OmitIDToken() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.omitIDToken = true
}

// Config returns an application configuration pointing at this server
func (s *Server) Config() *config.Config {
	cfg := config.NewConfig()
	cfg.KeycloakBaseURL = s.URL
	cfg.KeycloakRealm = DefaultRealm
	cfg.ClientID = DefaultClientID
	cfg.ClientSecret = DefaultClientSecret
	cfg.ClientBID = DefaultClientBID
	cfg.RedirectURI = DefaultRedirectURI
	cfg.DemoUsername = DefaultUsername
	cfg.DemoPassword = DefaultPassword
	return cfg
}

// Issuer returns the iss claim of issued tokens
func (s *Server) Issuer() string {
	return s.URL + "/realms/" + DefaultRealm
}

// LastForm returns the form of the most recent token request
func (s *Server) LastForm() url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.forms) == 0 {
		return nil
	}
	return s.forms[len(s.forms)-1]
}

// Requests returns how many token requests were received
func (s *Server) Requests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.forms)
}

// SignToken issues a token with the given claims
func (s *Server) SignToken(claims gojwt.MapClaims) string {
	token, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString(signingKey)
	if err != nil {
		panic(err)
	}
	return token
}

// AccessToken issues an access token for audience
func (s *Server) AccessToken(audience ...string) string {
	now := time.Now()
	return s.SignToken(gojwt.MapClaims{
		"iss":                s.Issuer(),
		"sub":                Subject,
		"aud":                audience,
		"azp":                DefaultClientID,
		"typ":                "Bearer",
		"preferred_username": DefaultUsername,
		"iat":                now.Unix(),
		"exp":                now.Add(5 * time.Minute).Unix(),
	})
}

func (s *Server) idToken() string {
	now := time.Now()
	return s.SignToken(gojwt.MapClaims{
		"iss":                s.Issuer(),
		"sub":                Subject,
		"aud":                DefaultClientID,
		"typ":                "ID",
		"preferred_username": DefaultUsername,
		"iat":                now.Unix(),
		"exp":                now.Add(5 * time.Minute).Unix(),
	})
}

func (s *Server) tokenHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeOAuthError(w, http.StatusBadRequest, "invalid_request", "Malformed form body")
		return
	}

	s.mu.Lock()
	s.forms = append(s.forms, r.PostForm)
	delay := s.delay
	omitIDToken := s.omitIDToken
	s.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}

	if chi.URLParam(r, "realm") != DefaultRealm {
		writeOAuthError(w, http.StatusNotFound, "invalid_request", "Realm does not exist")
		return
	}

	form := r.PostForm
	if form.Get("client_id") != DefaultClientID || form.Get("client_secret") != DefaultClientSecret {
		writeOAuthError(w, http.StatusUnauthorized, "unauthorized_client", "Invalid client or Invalid client credentials")
		return
	}

	switch form.Get("grant_type") {
	case domain.GrantTypeAuthorizationCode:
		if form.Get("code") != ValidCode {
			writeOAuthError(w, http.StatusBadRequest, "invalid_grant", "Code not valid")
			return
		}
		if form.Get("redirect_uri") != DefaultRedirectURI {
			writeOAuthError(w, http.StatusBadRequest, "invalid_grant", "Incorrect redirect_uri")
			return
		}
		response := s.tokenResponse(s.AccessToken(DefaultClientID, "account"))
		if !omitIDToken {
			response["id_token"] = s.idToken()
		}
		writeJSON(w, response)

	case domain.GrantTypePassword:
		if form.Get("username") != DefaultUsername || form.Get("password") != DefaultPassword {
			writeOAuthError(w, http.StatusUnauthorized, "invalid_grant", "Invalid user credentials")
			return
		}
		writeJSON(w, s.tokenResponse(s.AccessToken(DefaultClientID, "account")))

	case domain.GrantTypeTokenExchange:
		audience := form.Get("audience")
		if form.Get("subject_token") == "" || !s.validToken(form.Get("subject_token")) {
			writeOAuthError(w, http.StatusBadRequest, "invalid_token", "Invalid token")
			return
		}
		if audience != DefaultClientBID {
			writeOAuthError(w, http.StatusBadRequest, "invalid_client", "Audience not found")
			return
		}
		response := s.tokenResponse(s.AccessToken(audience))
		response["issued_token_type"] = domain.TokenTypeAccessToken
		writeJSON(w, response)

	default:
		writeOAuthError(w, http.StatusBadRequest, "unsupported_grant_type", "Unsupported grant_type")
	}
}

func (s *Server) validToken(raw string) bool {
	_, err := gojwt.Parse(raw, func(*gojwt.Token) (interface{}, error) {
		return signingKey, nil
	}, gojwt.WithValidMethods([]string{gojwt.SigningMethodHS256.Alg()}))
	return err == nil
}

func (s *Server) tokenResponse(accessToken string) map[string]interface{} {
	return map[string]interface{}{
		"access_token":       accessToken,
		"expires_in":         300,
		"refresh_expires_in": 1800,
		"refresh_token":      s.SignToken(gojwt.MapClaims{"typ": "Refresh", "sub": Subject}),
		"token_type":         "Bearer",
		"not-before-policy":  0,
		"session_state":      "98f4c3d2-1b8c-4932-b8c4-92ec0ea7e195",
		"scope":              "openid profile email",
	}
}

func writeJSON(w http.ResponseWriter, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(body)
}

func writeOAuthError(w http.ResponseWriter, status int, code, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"error":             code,
		"error_description": description,
	})
}
