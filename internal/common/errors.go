// Package common defines shared constants and sentinel errors used across
// the eventsync server, the operator CLI and the storage layers. Callers
// should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Validation errors for caller-supplied values the core cannot interpret.
	ErrorIncorrectInput = errors.New("incorrect input")

	// ErrConfirmationRequired is returned by confirmers that cannot answer a
	// prompt (e.g. an HTTP request that did not carry the answer).
	ErrConfirmationRequired = errors.New("confirmation required")

	// Auth errors (invalid, malformed or expired token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
