// Package service holds the per-entity operations behind both front ends.
// Each operation validates its input, makes its backend calls under the
// timeout and retry policies and reports the outcome through a Notifier.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"novelhub/internal/backend"
	"novelhub/internal/metrics"
	"novelhub/internal/notify"
	"novelhub/internal/resilience"
)

// ValidationError is returned before any backend call is made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string       { return e.Message }
func (e *ValidationError) UserMessage() string { return e.Message }

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// ErrLoginRequired is returned by operations that need a signed-in user.
var ErrLoginRequired error = &loginRequiredError{}

type loginRequiredError struct{}

func (*loginRequiredError) Error() string       { return "Please log in to continue" }
func (*loginRequiredError) UserMessage() string { return "Please log in to continue" }

func (*loginRequiredError) Is(target error) bool { return target == backend.ErrUnauthorized }

// stepError prefixes a failed step, e.g. "Failed to upload cover image: ...".
type stepError struct {
	step string
	err  error
}

func (e *stepError) Error() string       { return fmt.Sprintf("%s: %s", e.step, e.err.Error()) }
func (e *stepError) UserMessage() string { return e.Error() }
func (e *stepError) Unwrap() error       { return e.err }

// Options are shared by every service.
type Options struct {
	Timeout    time.Duration
	RetryMax   int
	RetryDelay time.Duration
	// First wait of the exponential policy used by listings and uploads.
	BackoffDelay time.Duration

	Notifier notify.Notifier
	Metrics  *metrics.Metrics
	Logger   *slog.Logger
}

type runner struct {
	opts Options
}

func newRunner(opts Options) runner {
	if opts.Notifier == nil {
		opts.Notifier = notify.Discard{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = resilience.DefaultTimeout
	}
	return runner{opts: opts}
}

func (r runner) policy(operation string) resilience.Policy {
	return resilience.Policy{
		Operation: operation,
		Timeout:   r.opts.Timeout,
		Attempts:  r.opts.RetryMax,
		Delay:     r.opts.RetryDelay,
		OnRetry: func(op string, attempt int, err error, wait time.Duration) {
			r.opts.Metrics.Retry(op)
			r.opts.Logger.Warn("retrying backend call",
				slog.String("operation", op),
				slog.Int("attempt", attempt),
				slog.Duration("wait", wait),
				slog.String("error", err.Error()))
		},
		OnTimeout: func(op string) {
			r.opts.Metrics.Timeout(op)
		},
	}
}

// report hands a failure or a success message to the notifier. Validation
// errors stay with the caller.
func (r runner) report(ctx context.Context, err error, success string) error {
	if err != nil {
		if !IsValidation(err) && !errors.Is(err, context.Canceled) {
			r.opts.Notifier.Error(ctx, err)
		}
		return err
	}
	if success != "" {
		r.opts.Notifier.Success(ctx, success)
	}
	return nil
}

// once races a single call against the timeout window. Writes use it.
func once[T any](ctx context.Context, r runner, operation string, fn func(ctx context.Context) (T, error)) (T, error) {
	v, err := resilience.WithTimeout(ctx, r.opts.Timeout, operation, fn)
	if resilience.IsTimeout(err) {
		r.opts.Metrics.Timeout(operation)
	}
	return v, err
}

// exec is once for calls without a result.
func exec(ctx context.Context, r runner, operation string, fn func(ctx context.Context) error) error {
	_, err := once(ctx, r, operation, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// fetch retries with the linear policy. Detail reads use it.
func fetch[T any](ctx context.Context, r runner, operation string, fn func(ctx context.Context) (T, error)) (T, error) {
	return resilience.FetchWithRetry(ctx, r.policy(operation), settled(fn))
}

// settled stops the retry loop on answers another attempt cannot change.
func settled[T any](fn func(ctx context.Context) (T, error)) func(ctx context.Context) (T, error) {
	return func(ctx context.Context) (T, error) {
		v, err := fn(ctx)
		if errors.Is(err, backend.ErrNotFound) {
			return v, resilience.Permanent(err)
		}
		return v, err
	}
}

// fetchList retries with the exponential policy. Listings use it.
func fetchList[T any](ctx context.Context, r runner, operation string, fn func(ctx context.Context) (T, error)) (T, error) {
	p := r.policy(operation)
	p.Delay = r.opts.BackoffDelay
	if r.opts.RetryMax > 0 {
		p.Attempts = r.opts.RetryMax + 1
	}
	return resilience.WithRetry(ctx, p, settled(fn))
}

func nowPtr(t time.Time) *time.Time {
	return &t
}
