package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for store and registry plumbing.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidCursor indicates an opaque continuation token or snapshot
	// could not be decoded.
	ErrInvalidCursor = errors.New("invalid cursor")

	// ErrAuthRequired indicates the caller needs credentials but none
	// are configured.
	ErrAuthRequired = errors.New("authentication required")
)

// RemoteError is a normalised failure from a third-party API: any
// non-2xx response, transport failure or malformed body. The message is
// flattened from the provider's error shape; transport headers are never
// carried so they cannot leak into logs.
type RemoteError struct {
	// StatusCode is the HTTP status of the failing response, or 0 for
	// transport-level failures.
	StatusCode int

	// Message is the provider's error message, normalised.
	Message string

	// ProviderType is the provider-specific error type, when one exists.
	ProviderType string
}

// Error implements the error interface.
func (e *RemoteError) Error() string {
	if e.ProviderType != "" {
		return fmt.Sprintf("remote error %d (%s): %s", e.StatusCode, e.ProviderType, e.Message)
	}
	return fmt.Sprintf("remote error %d: %s", e.StatusCode, e.Message)
}

// ConfigurationError indicates a required field or column is missing on
// the remote schema, e.g. no last-modified column exists for a watch.
type ConfigurationError struct {
	// Field is the missing field name.
	Field string

	// Reason describes what was expected of the field.
	Reason string
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: field %q %s", e.Field, e.Reason)
}

// ValidationError indicates caller-supplied arguments fail a
// precondition before any remote call is made.
type ValidationError struct {
	// Reason describes the failed precondition.
	Reason string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return "validation error: " + e.Reason
}
