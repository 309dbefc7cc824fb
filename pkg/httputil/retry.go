package httputil

import (
	"context"
	"errors"
	"time"
)

// RetryableError marks a failure as transient. The downloader wraps
// timeouts, connection resets and 5xx responses with it; permanent
// failures like a 404 stay unwrapped and fail the operation at once.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retry runs fn until it succeeds, returns a non-transient error, or
// attempts are exhausted. The delay doubles between attempts. A
// cancelled context aborts the wait and returns ctx.Err().
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}
	for {
		err := fn()
		if err == nil {
			return nil
		}
		var re *RetryableError
		if !errors.As(err, &re) {
			return err
		}
		if attempts--; attempts == 0 {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
}

// RetryWithBackoff applies the default media-download policy: three
// attempts starting at one second.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	return Retry(ctx, 3, time.Second, fn)
}
