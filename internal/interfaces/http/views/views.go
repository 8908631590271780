package views

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"

	"go.uber.org/zap"

	"github.com/ipede/authcode-exchange-demo/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	IndexTemplate    = "index.html"
	CallbackTemplate = "callback.html"
	ExchangeTemplate = "exchange.html"
)

// IndexView is the landing page model
type IndexView struct {
	Realm       string
	ClientID    string
	ClientBID   string
	RedirectURI string
}

// CallbackView renders an authorization code exchange
type CallbackView struct {
	State              string
	ClientID           string
	Audience           string
	TokenResponse      string
	AccessTokenPayload string
	IDTokenPayload     string
	AccessToken        string
}

// ExchangeView renders a token exchange
type ExchangeView struct {
	ClientID                    string
	Audience                    string
	TokenResponse               string
	ExchangedAccessTokenPayload string
}

// NewCallbackView builds the view model of a code exchange result
func NewCallbackView(state, clientID, audience string, result *domain.CodeExchangeResult) CallbackView {
	return CallbackView{
		State:              state,
		ClientID:           clientID,
		Audience:           audience,
		TokenResponse:      PrettyJSON(result.TokenResponse),
		AccessTokenPayload: PrettyJSON(result.Decoded.AccessTokenPayload),
		IDTokenPayload:     PrettyJSON(result.Decoded.IDTokenPayload),
		AccessToken:        result.TokenResponse.AccessToken(),
	}
}

// NewExchangeView builds the view model of a token exchange result
func NewExchangeView(clientID string, result *domain.TokenExchangeResult) ExchangeView {
	return ExchangeView{
		ClientID:                    clientID,
		Audience:                    result.Audience,
		TokenResponse:               PrettyJSON(result.TokenResponse),
		ExchangedAccessTokenPayload: PrettyJSON(result.Decoded.ExchangedAccessTokenPayload),
	}
}

// PrettyJSON indents v with two spaces, leaving non-ASCII and HTML characters as they are.
// Escaping happens in the template.
func PrettyJSON(v interface{}) string {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n"))
}

// Renderer executes the embedded page templates
type Renderer struct {
	tmpl   *template.Template
	logger *zap.Logger
}

// NewRenderer parses the embedded templates
func NewRenderer(logger *zap.Logger) (*Renderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl, logger: logger}, nil
}

// Render writes the named page with status 200. The page is rendered into a
// buffer first so a template failure still yields a clean 500.
func (r *Renderer) Render(w http.ResponseWriter, name string, data interface{}) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		r.logger.Error("failed to render the template",
			zap.Error(err),
			zap.String("template", name))
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		r.logger.Error("failed to write page", zap.Error(err), zap.String("template", name))
	}
}
