package catalog

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrUnauthorized means the access token was rejected. It is never
	// retried by the client; Session refreshes and re-runs once.
	ErrUnauthorized = errors.New("catalog: unauthorized")

	// ErrRateLimited means the catalog kept answering 429 after every retry.
	ErrRateLimited = errors.New("catalog: rate limited")
)

// UpstreamError is any other non-success answer from the catalog.
type UpstreamError struct {
	StatusCode int
	Path       string
	Message    string
}

func (e *UpstreamError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("catalog: %s: status %d: %s", e.Path, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("catalog: %s: status %d", e.Path, e.StatusCode)
}

// rateLimitError is one 429 answer. It only lives inside the retry loop.
type rateLimitError struct {
	path       string
	retryAfter time.Duration
}

func (e *rateLimitError) Error() string {
	return fmt.Sprintf("catalog: %s: status 429", e.path)
}

func (e *rateLimitError) Is(target error) bool {
	return target == ErrRateLimited
}
