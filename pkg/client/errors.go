// Package client is the Go SDK for the PlafondHub portal. It carries the
// session, credential storage and routing policy used by portal frontends,
// plus a typed API client for every backend operation.
package client

import "fmt"

// ValidationError reports input rejected locally, before any network call
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Message)
}

// AuthenticationError reports a rejected or missing credential. Receiving one
// forces a logout; the stored session is already cleared when it surfaces.
type AuthenticationError struct {
	Message string
}

func (e *AuthenticationError) Error() string {
	return "authentication: " + e.Message
}

// AuthorizationError reports a role denial. Redirect is the dashboard the
// backend suggests for the caller's own roles.
type AuthorizationError struct {
	Message  string
	Redirect string
}

func (e *AuthorizationError) Error() string {
	return "authorization: " + e.Message
}

// OperationError reports a business rule rejection (stale state, insufficient
// limit, unconfigured rate). The session stays intact.
type OperationError struct {
	StatusCode int
	Message    string
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("operation failed (%d): %s", e.StatusCode, e.Message)
}
