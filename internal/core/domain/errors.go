package domain

import "errors"

// Common domain errors
var (
	ErrNotFound           = errors.New("resource not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrDuplicateEntry     = errors.New("duplicate entry")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("token invalid")
)

// Lifecycle errors
var (
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrStaleState        = errors.New("application was already processed by another actor")
	ErrLimitOutOfRange   = errors.New("approved limit out of range")
	ErrInsufficientLimit = errors.New("insufficient remaining limit")
	ErrRateNotConfigured = errors.New("no active interest rate configured for this tenor")
	ErrReasonRequired    = errors.New("cancellation reason is required")
)
