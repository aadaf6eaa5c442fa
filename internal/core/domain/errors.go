package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidArgument indicates malformed or invalid caller input.
	// Fail fast, never retry.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotConfigured indicates a required credential or endpoint is
	// missing. The wrapping message names the missing setting.
	ErrNotConfigured = errors.New("not configured")

	// ErrDimensionMismatch indicates a vector write whose width differs
	// from the store's established embedding width. Vectors from
	// different providers are not comparable; re-embed to switch.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured. Semantic search is disabled without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")
)

// ExternalServiceError reports a failed call to an upstream service
// (embedding provider, typically). It carries the upstream status and
// response body for diagnostics, never a raw transport stack trace.
type ExternalServiceError struct {
	// Service names the upstream ("openai", "ollama").
	Service string

	// StatusCode is the upstream HTTP status, 0 when the call never
	// produced a response.
	StatusCode int

	// Body is the (truncated) upstream response body.
	Body string

	// Unreachable is true when the endpoint refused the connection,
	// so callers can suggest checking that the service is running.
	Unreachable bool

	// Err is the underlying transport error, if any.
	Err error
}

// Error implements the error interface.
func (e *ExternalServiceError) Error() string {
	if e.Unreachable {
		return fmt.Sprintf("%s unreachable: %v", e.Service, e.Err)
	}
	if e.Body != "" {
		return fmt.Sprintf("%s returned status %d: %s", e.Service, e.StatusCode, e.Body)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s request failed: %v", e.Service, e.Err)
	}
	return fmt.Sprintf("%s returned status %d", e.Service, e.StatusCode)
}

// Unwrap returns the underlying transport error.
func (e *ExternalServiceError) Unwrap() error {
	return e.Err
}

// IsUnreachable reports whether err is an ExternalServiceError caused by
// a refused connection.
func IsUnreachable(err error) bool {
	var extErr *ExternalServiceError
	return errors.As(err, &extErr) && extErr.Unreachable
}
