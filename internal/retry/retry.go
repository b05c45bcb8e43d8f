// Package retry provides a small, reusable retry policy for unreliable
// remote calls: a bounded attempt count with exponential backoff and a
// caller-supplied predicate deciding which failures are worth retrying.
//
// The policy exists so that every component talking to the inference
// provider shares one tested backoff loop instead of duplicating ad hoc
// retry code per call site.
package retry

import (
	"context"
	"time"
)

// Policy describes how to drive repeated attempts of an operation.
type Policy struct {
	// MaxAttempts is the total number of tries, including the first.
	// Values < 1 are treated as 1.
	MaxAttempts int

	// BaseDelay is the wait before the second attempt; it doubles after
	// every further failure (BaseDelay, 2*BaseDelay, 4*BaseDelay, ...).
	BaseDelay time.Duration

	// Retryable reports whether a failure is transient enough to retry.
	// A nil predicate retries every error.
	Retryable func(error) bool

	// Sleep is the wait function, injectable for tests. Nil means a
	// context-aware time.Sleep.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Do runs fn up to MaxAttempts times, backing off between failures.
// It returns nil on the first success. On a non-retryable failure it stops
// immediately and returns that error; otherwise it returns the last error
// once attempts are exhausted. Context cancellation aborts the wait.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepCtx
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			delay := p.BaseDelay << uint(attempt-1)
			if err := sleep(ctx, delay); err != nil {
				return err
			}
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if p.Retryable != nil && !p.Retryable(lastErr) {
			return lastErr
		}
	}
	return lastErr
}

// sleepCtx waits for d or until ctx is done, whichever comes first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
