package client

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingUserID is returned by New when no user identifier is given.
	ErrMissingUserID = errors.New("client: user id is required")
	// ErrMissingAPIKey is returned by New when no API key is given.
	ErrMissingAPIKey = errors.New("client: api key is required")
)

// APIError is returned for non-2xx responses from the memory service.
type APIError struct {
	StatusCode int
	Message    string
	RequestID  string
}

// Error implements error.
func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("memory service returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("memory service error (%d): %s", e.StatusCode, e.Message)
}
