// Package common defines shared constants and sentinel errors used across
// client and server layers of the vault. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")

	// Identity errors. ErrInvalidCredentials deliberately covers both
	// "unknown email" and "wrong secret" so login cannot be used to
	// enumerate accounts.
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Session and access errors.
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrSessionExpired  = errors.New("session expired")
	ErrInvalidToken    = errors.New("invalid token")
	ErrForbidden       = errors.New("forbidden")

	// Crypto errors. ErrAuthenticationFailed means the envelope tag did
	// not verify: wrong key, corruption, or tampering. Never retried.
	ErrAuthenticationFailed = errors.New("envelope authentication failed")
	ErrInvalidSaltLength    = errors.New("invalid salt length")
)
