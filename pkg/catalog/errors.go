package catalog

import (
	"errors"
	"net/http"
)

var (
	// ErrUnauthorized matches an APIError carrying a 401 status.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound matches an APIError carrying a 404 status.
	ErrNotFound = errors.New("not found")
)

// APIError is a non-2xx answer from the remote API.
type APIError struct {
	// Op is the client operation, e.g. "fetchProducts".
	Op string
	// Summary is the operator-facing failure text, e.g. "Failed to fetch products".
	Summary    string
	StatusCode int
	// Message is the "message" field of the response body, if any.
	Message string
}

func (e *APIError) Error() string {
	return e.Summary
}

// Is lets errors.Is match the status-class sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

// Detail returns the remote message, falling back to the summary.
func (e *APIError) Detail() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Summary
}
