package apperrors

import (
	"errors"
	"fmt"
)

// AppError represents an error surfaced to the caller of an exchange
// @Description An application error with a kind, message and optional upstream details
type AppError struct {
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
	Code    string `json:"code"`

	// UpstreamStatus and UpstreamBody are set for UpstreamRejected errors
	UpstreamStatus int    `json:"upstream_status,omitempty"`
	UpstreamBody   string `json:"upstream_response,omitempty"`

	Err error `json:"-"`
}

// Error kinds
const (
	UpstreamRejected   = "UPSTREAM_REJECTED"
	NetworkFailure     = "NETWORK_FAILURE"
	MalformedToken     = "MALFORMED_TOKEN"
	ValidationMismatch = "VALIDATION_MISMATCH"
)

// Error returns the error message
func (e *AppError) Error() string {
	switch {
	case e.Code == UpstreamRejected:
		return fmt.Sprintf("%s (status %d): %s", e.Message, e.UpstreamStatus, e.UpstreamBody)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	case e.Details != "":
		return fmt.Sprintf("%s: %s", e.Message, e.Details)
	}
	return e.Message
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewUpstreamRejectedError creates an error for a non-2xx provider response
func NewUpstreamRejectedError(message string, status int, body string) *AppError {
	return &AppError{
		Message:        message,
		Code:           UpstreamRejected,
		UpstreamStatus: status,
		UpstreamBody:   body,
	}
}

// NewNetworkFailureError creates an error for a timeout or connection failure
func NewNetworkFailureError(message string, err error) *AppError {
	return &AppError{
		Message: message,
		Code:    NetworkFailure,
		Err:     err,
	}
}

// NewMalformedTokenError creates an error for a token that cannot be decoded
func NewMalformedTokenError(message string, err error) *AppError {
	return &AppError{
		Message: message,
		Code:    MalformedToken,
		Err:     err,
	}
}

// NewValidationMismatchError creates an error listing claim mismatches
func NewValidationMismatchError(message string, reasons string) *AppError {
	return &AppError{
		Message: message,
		Details: reasons,
		Code:    ValidationMismatch,
	}
}

// As extracts the *AppError from err's chain
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func isKind(err error, kind string) bool {
	if appErr, ok := As(err); ok {
		return appErr.Code == kind
	}
	return false
}

// IsUpstreamRejected checks if the error is an upstream rejection
func IsUpstreamRejected(err error) bool {
	return isKind(err, UpstreamRejected)
}

// IsNetworkFailure checks if the error is a network failure
func IsNetworkFailure(err error) bool {
	return isKind(err, NetworkFailure)
}

// IsMalformedToken checks if the error is a malformed token error
func IsMalformedToken(err error) bool {
	return isKind(err, MalformedToken)
}

// IsValidationMismatch checks if the error is a validation mismatch
func IsValidationMismatch(err error) bool {
	return isKind(err, ValidationMismatch)
}
