package retrylimit

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type codeError struct{ code int }

func (e *codeError) Error() string   { return http.StatusText(e.code) }
func (e *codeError) StatusCode() int { return e.code }

func fastConfig(attempts int) RetryConfig {
	return RetryConfig{
		MaxAttempts:    attempts,
		InitialDelay:   time.Millisecond,
		MaxDelay:       5 * time.Millisecond,
		RateLimitDelay: time.Millisecond,
		Multiplier:     2.0,
	}
}

func TestRetrySucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	err := WithRetryConfig(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("flaky")
		}
		return nil
	}, nil, fastConfig(5))

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryExhaustsAttempts(t *testing.T) {
	calls := 0
	last := errors.New("always down")
	err := WithRetryConfig(context.Background(), func() error {
		calls++
		return last
	}, nil, fastConfig(3))

	require.Error(t, err)
	assert.ErrorIs(t, err, last)
	assert.Equal(t, 3, calls)
}

func TestFatalErrorStopsImmediately(t *testing.T) {
	calls := 0
	inner := errors.New("bad request")
	err := WithRetryConfig(context.Background(), func() error {
		calls++
		return &FatalError{Err: inner}
	}, nil, fastConfig(5))

	assert.Equal(t, 1, calls)
	assert.Equal(t, inner, err)
}

func TestWrappedFatalErrorStopsImmediately(t *testing.T) {
	calls := 0
	inner := errors.New("schema changed")
	err := WithRetryConfig(context.Background(), func() error {
		calls++
		return fmt.Errorf("fetch failed: %w", &FatalError{Err: inner})
	}, nil, fastConfig(5))

	assert.Equal(t, 1, calls)
	assert.Equal(t, inner, err)
}

func TestContextCancelStopsRetries(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	err := WithRetryConfig(ctx, func() error {
		calls++
		cancel()
		return errors.New("keep trying")
	}, nil, fastConfig(10))

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestRateLimitResponseLowersLimit(t *testing.T) {
	lim := NewAdaptiveLimiter(4, 1, 10, 1, 0.5)
	before := lim.CurrentLimit()

	err := WithRetryConfig(context.Background(), func() error {
		return &codeError{code: http.StatusTooManyRequests}
	}, lim, fastConfig(2))

	require.Error(t, err)
	assert.Less(t, lim.CurrentLimit(), before)
}

func TestSuccessRaisesLimitUpToMax(t *testing.T) {
	lim := NewAdaptiveLimiter(1, 1, 3, 1, 0.5)

	for i := 0; i < 10; i++ {
		lim.Success()
	}
	assert.Equal(t, 3.0, lim.CurrentLimit())
}

func TestLimitNeverDropsBelowMin(t *testing.T) {
	lim := NewAdaptiveLimiter(2, 1, 10, 1, 0.5)

	for i := 0; i < 10; i++ {
		lim.RateLimited()
	}
	assert.Equal(t, 1.0, lim.CurrentLimit())
}

func TestServerErrorIsRetriedAndThrottled(t *testing.T) {
	lim := NewAdaptiveLimiter(4, 1, 10, 1, 0.5)
	before := lim.CurrentLimit()

	calls := 0
	err := WithRetryConfig(context.Background(), func() error {
		calls++
		if calls == 1 {
			return &codeError{code: http.StatusBadGateway}
		}
		return nil
	}, lim, fastConfig(3))

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Less(t, lim.CurrentLimit(), before+1) // throttled then raised at most once
}
