package domain

import "errors"

var (
	// ErrMissingCode is returned when the callback carries no authorization code
	ErrMissingCode = errors.New("authorization code is required")

	// ErrMissingSubjectToken is returned when a token exchange has no subject token
	ErrMissingSubjectToken = errors.New("subject_token is required")

	// ErrInternal is returned when there is an internal server error
	ErrInternal = errors.New("internal server error")
)
