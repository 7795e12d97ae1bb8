package llm

import (
	"context"
	"time"
)

const (
	// DefaultMaxRetries bounds the automatic retries after the initial attempt.
	DefaultMaxRetries = 3
	// DefaultInitialDelay is the backoff before the first retry; it doubles
	// on every subsequent retry.
	DefaultInitialDelay = time.Second
)

// CallWithRetry runs op, retrying rate-limit failures with exponential
// backoff. The delay before retry i (0-indexed) is initialDelay * 2^i.
// Non-rate-limit errors propagate immediately; after maxRetries exhausted
// retries the last observed error is returned. Cancelling ctx during a
// backoff sleep aborts the remaining retries with ctx.Err().
//
// Every upstream model invocation in the system goes through this helper so
// there is exactly one retry policy.
func CallWithRetry[T any](ctx context.Context, op func() (T, error), maxRetries int, initialDelay time.Duration) (T, error) {
	var zero T
	if maxRetries < 0 {
		maxRetries = 0
	}
	if initialDelay <= 0 {
		initialDelay = DefaultInitialDelay
	}

	var lastErr error
	for attempt := 0; ; attempt++ {
		v, err := op()
		if err == nil {
			return v, nil
		}
		if !IsRateLimit(err) {
			return zero, err
		}
		lastErr = err
		if attempt >= maxRetries {
			return zero, lastErr
		}

		timer := time.NewTimer(initialDelay << attempt)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}
}
