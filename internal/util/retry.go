// Package util provides shared utility functions for dotverify.
package util

import (
	"context"
	"errors"
	"syscall"
	"time"

	"github.com/avast/retry-go/v4"
)

// RemoveRetryOptions returns retry options for deleting sandbox content.
// Only transient errors (a busy file, a directory refilled underneath us)
// are retried.
func RemoveRetryOptions(ctx context.Context) []retry.Option {
	return []retry.Option{
		retry.Attempts(3),
		retry.Delay(50 * time.Millisecond),
		retry.MaxDelay(200 * time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.RetryIf(IsTransientRemoveError),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
	}
}

// Retry executes fn with retry logic, stopping early when ctx is done.
// Returns the last error if all attempts fail.
func Retry(ctx context.Context, fn func() error, opts ...retry.Option) error {
	return retry.Do(fn, append([]retry.Option{retry.Context(ctx)}, opts...)...)
}

// IsTransientRemoveError returns true for errors a second removal attempt
// can plausibly fix.
func IsTransientRemoveError(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, syscall.EBUSY) || errors.Is(err, syscall.ENOTEMPTY)
}
