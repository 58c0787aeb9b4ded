package core

import (
	"errors"
	"fmt"
)

var (
	// ErrRateLimited marks a provider 429.
	ErrRateLimited = errors.New("provider rate limited")
	// ErrUnavailable marks a provider 5xx.
	ErrUnavailable = errors.New("provider unavailable")
)

// ProviderError carries the raw HTTP status and body of a failed
// completion call. It unwraps to the matching sentinel so callers can
// classify with errors.Is.
type ProviderError struct {
	Status int
	Body   string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider error: http %d: %s", e.Status, e.Body)
}

func (e *ProviderError) Unwrap() error {
	switch {
	case e.Status == 429:
		return ErrRateLimited
	case e.Status >= 500:
		return ErrUnavailable
	default:
		return nil
	}
}

// IsRetryable reports whether another attempt against the provider is
// worthwhile: rate limiting and upstream 5xx, nothing else.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrRateLimited) || errors.Is(err, ErrUnavailable)
}
