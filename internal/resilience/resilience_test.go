package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errFlaky = errors.New("connection reset")

func TestWithTimeout_Distinguished(t *testing.T) {
	_, err := WithTimeout(context.Background(), 20*time.Millisecond, "Loading novels",
		func(ctx context.Context) (int, error) {
			<-ctx.Done()
			return 0, ctx.Err()
		})

	require.Error(t, err)
	assert.True(t, IsTimeout(err))

	var te *TimeoutError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, "Loading novels timed out. Please try again.", te.Error())
}

func TestWithTimeout_ReturnsResult(t *testing.T) {
	v, err := WithTimeout(context.Background(), time.Second, "op", func(ctx context.Context) (string, error) {
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
}

func TestWithTimeout_ParentCancelIsNotTimeout(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := WithTimeout(ctx, time.Second, "op", func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})
	require.Error(t, err)
	assert.False(t, IsTimeout(err))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFetchWithRetry_LinearBackoff(t *testing.T) {
	calls := 0
	var waits []time.Duration

	v, err := FetchWithRetry(context.Background(), Policy{
		Operation: "Fetching chapter",
		Delay:     5 * time.Millisecond,
		OnRetry: func(_ string, _ int, _ error, wait time.Duration) {
			waits = append(waits, wait)
		},
	}, func(ctx context.Context) (int, error) {
		calls++
		if calls < 3 {
			return 0, errFlaky
		}
		return 42, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{5 * time.Millisecond, 10 * time.Millisecond}, waits)
}

func TestFetchWithRetry_ReturnsLastError(t *testing.T) {
	calls := 0
	_, err := FetchWithRetry(context.Background(), Policy{Delay: time.Millisecond}, func(ctx context.Context) (int, error) {
		calls++
		return 0, errFlaky
	})
	assert.ErrorIs(t, err, errFlaky)
	assert.Equal(t, DefaultAttempts, calls)
}

func TestFetchWithRetry_TimeoutNotRetried(t *testing.T) {
	calls := 0
	timeouts := 0
	_, err := FetchWithRetry(context.Background(), Policy{
		Operation: "Loading library",
		Timeout:   10 * time.Millisecond,
		Delay:     time.Millisecond,
		OnTimeout: func(string) { timeouts++ },
	}, func(ctx context.Context) (int, error) {
		calls++
		<-ctx.Done()
		return 0, ctx.Err()
	})

	require.Error(t, err)
	assert.True(t, IsTimeout(err))
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, timeouts)
}

func TestWithRetry_ExponentialBackoff(t *testing.T) {
	calls := 0
	var waits []time.Duration

	_, err := WithRetry(context.Background(), Policy{
		Delay: 4 * time.Millisecond,
		OnRetry: func(_ string, _ int, _ error, wait time.Duration) {
			waits = append(waits, wait)
		},
	}, func(ctx context.Context) (struct{}, error) {
		calls++
		return struct{}{}, errFlaky
	})

	assert.ErrorIs(t, err, errFlaky)
	assert.Equal(t, DefaultExponentialAttempts, calls)
	require.Len(t, waits, 3)
	assert.Equal(t, 4*time.Millisecond, waits[0])
	assert.Equal(t, 6*time.Millisecond, waits[1])
	assert.Equal(t, 9*time.Millisecond, waits[2])
}

func TestWithRetry_TimeoutNotRetried(t *testing.T) {
	calls := 0
	_, err := WithRetry(context.Background(), Policy{
		Operation: "Uploading cover",
		Timeout:   10 * time.Millisecond,
		Delay:     time.Millisecond,
	}, func(ctx context.Context) (int, error) {
		calls++
		<-ctx.Done()
		return 0, ctx.Err()
	})
	assert.True(t, IsTimeout(err))
	assert.Equal(t, 1, calls)
}
