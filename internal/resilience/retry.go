package resilience

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	DefaultAttempts   = 3
	DefaultRetryDelay = time.Second

	// exponential policy used by listings, uploads and auth checks
	DefaultExponentialAttempts = 4
	DefaultExponentialDelay    = 5 * time.Second
	DefaultMultiplier          = 1.5
)

// Policy configures a retried call. Zero fields take the defaults of the
// function it is passed to.
type Policy struct {
	Operation  string
	Timeout    time.Duration
	Attempts   int // total, including the first
	Delay      time.Duration
	Multiplier float64 // exponential only

	OnRetry   func(operation string, attempt int, err error, wait time.Duration)
	OnTimeout func(operation string)
}

// FetchWithRetry retries fn with a linear backoff of Delay*(n) after the
// n-th failure. Each attempt is raced against the timeout window and a
// timeout ends the loop immediately.
func FetchWithRetry[T any](ctx context.Context, p Policy, fn func(ctx context.Context) (T, error)) (T, error) {
	if p.Attempts <= 0 {
		p.Attempts = DefaultAttempts
	}
	if p.Delay <= 0 {
		p.Delay = DefaultRetryDelay
	}
	b := &linearBackOff{delay: p.Delay}
	return retry(ctx, p, b, fn)
}

// WithRetry is the exponential variant: Delay, Delay*Multiplier, ...
func WithRetry[T any](ctx context.Context, p Policy, fn func(ctx context.Context) (T, error)) (T, error) {
	if p.Attempts <= 0 {
		p.Attempts = DefaultExponentialAttempts
	}
	if p.Delay <= 0 {
		p.Delay = DefaultExponentialDelay
	}
	if p.Multiplier <= 1 {
		p.Multiplier = DefaultMultiplier
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.Delay
	b.Multiplier = p.Multiplier
	b.RandomizationFactor = 0
	b.MaxInterval = 10 * time.Minute
	b.MaxElapsedTime = 0
	b.Reset()
	return retry(ctx, p, b, fn)
}

func retry[T any](ctx context.Context, p Policy, b backoff.BackOff, fn func(ctx context.Context) (T, error)) (T, error) {
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(p.Attempts-1)), ctx)

	attempt := 0
	operation := func() (T, error) {
		attempt++
		v, err := WithTimeout(ctx, p.Timeout, p.Operation, fn)
		if err == nil {
			return v, nil
		}
		if IsTimeout(err) {
			if p.OnTimeout != nil {
				p.OnTimeout(p.Operation)
			}
			return v, backoff.Permanent(err)
		}
		if ctx.Err() != nil {
			return v, backoff.Permanent(err)
		}
		return v, err
	}

	notify := func(err error, wait time.Duration) {
		if p.OnRetry != nil {
			p.OnRetry(p.Operation, attempt, err, wait)
		}
	}
	return backoff.RetryNotifyWithData(operation, policy, notify)
}

type linearBackOff struct {
	delay time.Duration
	n     int
}

func (b *linearBackOff) NextBackOff() time.Duration {
	b.n++
	return b.delay * time.Duration(b.n)
}

func (b *linearBackOff) Reset() { b.n = 0 }

// Permanent marks err as not worth retrying; the loop returns it unwrapped.
func Permanent(err error) error {
	return backoff.Permanent(err)
}
