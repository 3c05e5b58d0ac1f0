package marketplace

import (
	"errors"
	"fmt"
)

// ErrRateLimited signals an HTTP 429 from the marketplace. Callers skip the
// current cycle and retry on their existing schedule.
var ErrRateLimited = errors.New("marketplace: rate limited")

// AuthError is returned when the marketplace rejects vendor credentials.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	if e.Message == "" {
		return "marketplace: login rejected"
	}
	return fmt.Sprintf("marketplace: login rejected: %s", e.Message)
}

// APIError covers any other non-success response.
type APIError struct {
	Endpoint   string
	StatusCode int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("marketplace: %s returned status %d", e.Endpoint, e.StatusCode)
}
