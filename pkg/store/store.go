// Package store persists optimization snapshots.
//
// The Store interface abstracts over backends so the CLI and API can share
// one persistence path:
//   - file: directory of JSON documents for local CLI usage
//   - redis: Redis-backed storage for server deployments
//   - null: no-op storage when persistence is disabled
//
// Keys are snapshot IDs. Values are opaque byte payloads; callers decide
// the encoding (in practice [snapshot.Metadata] JSON).
package store

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for store operations.
var (
	// ErrNotFound is returned when a requested snapshot does not exist.
	ErrNotFound = errors.New("not found")
)

// Store is the interface for snapshot storage backends.
type Store interface {
	// Get retrieves a payload by key.
	// The second return value reports whether the key existed.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a payload. A zero ttl means the entry never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a payload. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// List returns the stored keys in unspecified order.
	List(ctx context.Context) ([]string, error)

	// Close releases backend resources.
	Close() error
}

// RetryableError wraps an error to indicate it should trigger a retry.
type RetryableError struct{ Err error }

// Retryable wraps an error as a RetryableError.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// Error returns the error message of the wrapped error.
func (e *RetryableError) Error() string { return e.Err.Error() }

// Unwrap returns the wrapped error.
func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable checks if an error is wrapped with RetryableError.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// RetryWithBackoff retries fn up to 3 times with exponential backoff.
// Only errors wrapped with Retryable will trigger retries.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	const attempts = 3
	delay := time.Second
	var lastErr error

	for i := 0; i < attempts; i++ {
		if err := fn(); err == nil {
			return nil
		} else if lastErr = err; !IsRetryable(err) {
			return err
		}

		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	return lastErr
}
