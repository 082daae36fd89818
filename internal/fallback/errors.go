package fallback

import (
	"errors"
	"fmt"
)

var (
	// ErrExhausted is returned when every provider failed
	ErrExhausted = errors.New("all providers failed")

	// ErrMalformedResponse marks a response without the expected field
	ErrMalformedResponse = errors.New("malformed provider response")

	// ErrNoProviders is returned by an orchestrator with an empty list
	ErrNoProviders = errors.New("no providers configured")
)

// StatusError is a non-2xx answer from a remote provider
type StatusError struct {
	Provider   string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d", e.Provider, e.StatusCode)
}

// Malformed wraps ErrMalformedResponse with a reason
func Malformed(provider, reason string) error {
	return fmt.Errorf("%s: %w: %s", provider, ErrMalformedResponse, reason)
}
