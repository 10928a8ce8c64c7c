package providers

import (
	"errors"
	"fmt"
)

// ErrRateLimitExhausted is returned when the provider keeps answering 429
// after every allowed retry
var ErrRateLimitExhausted = errors.New("rate limit retries exhausted")

// ErrMissingAPIKey is returned by clients built without credentials
var ErrMissingAPIKey = errors.New("sportradar api key not configured")

// UpstreamError is a non-success response other than rate limiting
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream returned status %d: %s", e.Status, e.Body)
}

// TransportError wraps network failures, timeouts and undecodable bodies
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request to %s failed: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
