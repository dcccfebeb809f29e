// Package common defines shared constants and sentinel errors used across
// lifecourse components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")

	// Validation errors.
	ErrorValidation = errors.New("validation error")

	// Auth errors. Expired, forged and malformed tokens all collapse into
	// ErrInvalidToken at the service boundary; the wrapped detail stays in
	// server-side logs only.
	ErrInvalidToken     = errors.New("invalid token")
	ErrTokenBlacklisted = errors.New("token blacklisted")

	// Crypto errors.
	ErrMalformedEnvelope = errors.New("malformed encryption envelope")
)
