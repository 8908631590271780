package jwt

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/ipede/authcode-exchange-demo/internal/domain"
	apperrors "github.com/ipede/authcode-exchange-demo/internal/domain/errors"
)

var (
	errNotAnObject  = errors.New("payload is not a JSON object")
	errTrailingData = errors.New("unexpected data after payload object")
)

// DecodePayload returns the claims carried in the payload segment of a compact JWT.
// The signature is not verified.
func DecodePayload(token string) (domain.Claims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, apperrors.NewMalformedTokenError("token is not JWT format", nil)
	}

	segment := parts[1]
	if rem := len(segment) % 4; rem != 0 {
		segment += strings.Repeat("=", 4-rem)
	}

	raw, err := base64.URLEncoding.DecodeString(segment)
	if err != nil {
		return nil, apperrors.NewMalformedTokenError("failed to decode token payload", err)
	}

	var claims domain.Claims
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	if err := decoder.Decode(&claims); err != nil {
		return nil, apperrors.NewMalformedTokenError("failed to decode token payload", err)
	}
	if claims == nil {
		return nil, apperrors.NewMalformedTokenError("failed to decode token payload", errNotAnObject)
	}
	if _, err := decoder.Token(); err != io.EOF {
		return nil, apperrors.NewMalformedTokenError("failed to decode token payload", errTrailingData)
	}

	return claims, nil
}

// Decode wraps DecodePayload into a DecodedPayload
func Decode(token string) *domain.DecodedPayload {
	claims, err := DecodePayload(token)
	return &domain.DecodedPayload{Claims: claims, Err: err}
}

// DecodeOptional is Decode for a token field that may be absent; it returns nil for "".
func DecodeOptional(token string) *domain.DecodedPayload {
	if token == "" {
		return nil
	}
	return Decode(token)
}
