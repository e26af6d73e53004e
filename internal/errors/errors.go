// internal/errors/errors.go
package errors

import (
	"errors"
	"fmt"
)

// ErrEmptyTopic is returned when a search is requested for a blank topic.
var ErrEmptyTopic = errors.New("topic must not be empty")

// UpstreamError is returned when the GitHub search API answers with a
// non-success status or cannot be reached at all.
type UpstreamError struct {
	StatusCode int // 0 for transport failures
	Status     string
	Err        error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("GitHub API error: %s", e.Status)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// CacheReadError wraps a failure to read from the persistent cache tier.
type CacheReadError struct {
	Topic string
	Err   error
}

func (e *CacheReadError) Error() string {
	return fmt.Sprintf("cache read for %q: %v", e.Topic, e.Err)
}

func (e *CacheReadError) Unwrap() error {
	return e.Err
}

// CacheWriteError wraps a failure to write to the persistent cache tier.
type CacheWriteError struct {
	Topic string
	Err   error
}

func (e *CacheWriteError) Error() string {
	return fmt.Sprintf("cache write for %q: %v", e.Topic, e.Err)
}

func (e *CacheWriteError) Unwrap() error {
	return e.Err
}
