package searchclient

import "github.com/amirhf/imageSearch/services/search-web/models"

// APIError is the base error type for non-success responses.
type APIError struct {
	Message    string
	StatusCode int
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}

// NotFoundError is returned when the service found no products (HTTP 404).
// It matches models.ErrNotFound with errors.Is.
type NotFoundError struct {
	APIError
}

// Is reports whether target is models.ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == models.ErrNotFound
}

// ValidationError is returned when the service rejects the request (HTTP 400).
type ValidationError struct {
	APIError
}

// ServerError is returned when the service fails (HTTP 5xx).
type ServerError struct {
	APIError
}

// NetworkError is returned for transport failures and unreadable or
// malformed responses.
type NetworkError struct {
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *NetworkError) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause of the error.
func (e *NetworkError) Unwrap() error {
	return e.Cause
}
