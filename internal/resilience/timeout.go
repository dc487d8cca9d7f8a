// Package resilience wraps backend calls with the timeout race and the two
// retry policies the pages rely on.
package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// DefaultTimeout is the window every backend call is raced against.
const DefaultTimeout = 30 * time.Second

var ErrTimeout = errors.New("operation timed out")

// TimeoutError is returned when a call loses the race. It is never retried.
type TimeoutError struct {
	Operation string
	After     time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s timed out. Please try again.", e.Operation)
}

func (e *TimeoutError) UserMessage() string { return e.Error() }

func (e *TimeoutError) Is(target error) bool { return target == ErrTimeout }

func IsTimeout(err error) bool { return errors.Is(err, ErrTimeout) }

// WithTimeout runs fn with a deadline of window. If the window elapses first
// the result is discarded and a *TimeoutError returned; cancellation of the
// parent context is reported as the parent's error instead.
func WithTimeout[T any](ctx context.Context, window time.Duration, operation string, fn func(ctx context.Context) (T, error)) (T, error) {
	if window <= 0 {
		window = DefaultTimeout
	}
	callCtx, cancel := context.WithTimeout(ctx, window)
	defer cancel()

	type result struct {
		val T
		err error
	}
	done := make(chan result, 1)
	go func() {
		v, err := fn(callCtx)
		done <- result{v, err}
	}()

	var zero T
	select {
	case r := <-done:
		if r.err != nil && callCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil {
			return zero, &TimeoutError{Operation: operation, After: window}
		}
		return r.val, r.err
	case <-callCtx.Done():
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		return zero, &TimeoutError{Operation: operation, After: window}
	}
}
