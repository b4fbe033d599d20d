// Package common defines shared constants and sentinel errors used across
// the layers of authkeeper. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Input validation (missing required field).
	ErrorValidation = errors.New("validation error")

	// Registration conflicts.
	ErrorAlreadyExists = errors.New("already exists")

	// Verification token lifecycle errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Email verification flow errors.
	ErrAlreadyVerified = errors.New("email already verified")
	ErrRateLimited     = errors.New("rate limited")

	// ErrEmailNotVerified is a distinguished sign-in failure: the
	// credentials exist but the account is still inactive. Callers must
	// branch on it rather than treat it as plain unauthorized.
	ErrEmailNotVerified = errors.New("email not verified")

	// Session refresh errors.
	ErrRefreshTokenExpired = errors.New("refresh token expired")
)
