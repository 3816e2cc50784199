package retryutil

import (
	"context"
	"time"
)

type Decision int

const (
	// Retry waits for the attempt delay and runs the operation again.
	Retry Decision = iota
	// Fail returns the error immediately without consuming the
	// remaining attempt budget.
	Fail
)

// Classifier decides what to do with a failed attempt.
type Classifier func(err error) Decision

// LinearDelay returns attempt*unit, so the first retry waits one unit,
// the second two and so on.
func LinearDelay(unit time.Duration) func(attempt int) time.Duration {
	return func(attempt int) time.Duration {
		return time.Duration(attempt) * unit
	}
}

// NoDelay retries back to back.
func NoDelay(attempt int) time.Duration {
	return 0
}

// Do runs fn up to attempts times. On failure, classify picks between
// retrying after delay(attempt) and failing immediately. The last error
// is returned once the budget is exhausted. A cancelled context cuts the
// loop short with ctx.Err().
func Do[T any](
	ctx context.Context,
	attempts int,
	delay func(attempt int) time.Duration,
	classify Classifier,
	fn func() (T, error),
) (T, error) {
	var zero T
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		out, err := fn()
		if err == nil {
			return out, nil
		}
		if classify != nil && classify(err) == Fail {
			return zero, err
		}
		lastErr = err

		if attempt == attempts {
			break
		}
		wait := time.Duration(0)
		if delay != nil {
			wait = delay(attempt)
		}
		if wait <= 0 {
			continue
		}
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(wait):
		}
	}

	return zero, lastErr
}
