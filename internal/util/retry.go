package util

import (
	"context"
	"errors"
	"time"

	"github.com/mkm-lab/analysis-engine/pkg/common"
)

const defaultBackoffBase = 500 * time.Millisecond

// RetryBackoffWithContext calls fn up to maxTries times until it
// returns a result and nil error, sleeping an exponentially growing
// delay between attempts. Only transient errors are retried; any other
// error, and context cancellation, end the attempts immediately.
// If maxTries <= 0, it defaults to 1; if baseDelay <= 0, a 500ms base
// is used.
func RetryBackoffWithContext[T any](
	ctx context.Context,
	maxTries int,
	baseDelay time.Duration,
	fn func(context.Context) (T, error),
) (T, error) {
	var zero T
	if maxTries <= 0 {
		maxTries = 1
	}
	if baseDelay <= 0 {
		baseDelay = defaultBackoffBase
	}

	var lastErr error
	for i := 0; i < maxTries; i++ {
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}

		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return zero, err
		}
		if !common.IsTransient(err) {
			return zero, err
		}
		lastErr = err

		if i == maxTries-1 {
			break
		}
		if err := sleepContext(ctx, baseDelay<<uint(i)); err != nil {
			return zero, err
		}
	}
	return zero, lastErr
}

// RetryErrBackoffWithContext is RetryBackoffWithContext for functions
// with no result value.
func RetryErrBackoffWithContext(
	ctx context.Context,
	maxTries int,
	baseDelay time.Duration,
	fn func(context.Context) error,
) error {
	_, err := RetryBackoffWithContext(ctx, maxTries, baseDelay, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
