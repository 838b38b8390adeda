package retry

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "igcrawler/pkg/errors"
	"igcrawler/pkg/logger"
)

func testConfig(maxAttempts int) *Config {
	return &Config{
		MaxAttempts: maxAttempts,
		Backoff:     NewFixedBackoff(time.Millisecond),
		RetryIf:     DefaultRetryIf,
		Context:     context.Background(),
		Logger:      logger.NewTestLogger(),
	}
}

func TestDoSucceedsFirstTry(t *testing.T) {
	calls := 0
	err := Do(func() error {
		calls++
		return nil
	}, testConfig(3))

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoRetriesUntilSuccess(t *testing.T) {
	calls := 0
	err := Do(func() error {
		calls++
		if calls < 3 {
			return errs.New(errs.ErrorTypeRateLimit, "throttled", 429)
		}
		return nil
	}, testConfig(5))

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoStopsOnNonRetryableError(t *testing.T) {
	calls := 0
	authErr := errs.New(errs.ErrorTypeAuth, "authentication required", 401)
	err := Do(func() error {
		calls++
		return authErr
	}, testConfig(5))

	assert.Equal(t, 1, calls)
	assert.Equal(t, authErr, err)
}

func TestDoExhaustsAttempts(t *testing.T) {
	calls := 0
	err := Do(func() error {
		calls++
		return errs.New(errs.ErrorTypeRateLimit, "throttled", 429)
	}, testConfig(3))

	assert.Equal(t, 3, calls)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max retry attempts (3) exceeded")
	// The terminal error must still be classifiable.
	assert.True(t, errs.IsRateLimit(err))
}

func TestDoCustomRetryIf(t *testing.T) {
	calls := 0
	cfg := testConfig(5)
	cfg.RetryIf = errs.IsRateLimit

	err := Do(func() error {
		calls++
		return errs.New(errs.ErrorTypeServerError, "server error", 500)
	}, cfg)

	// Server errors are retryable by default but not under this predicate.
	assert.Equal(t, 1, calls)
	assert.True(t, errs.IsType(err, errs.ErrorTypeServerError))
}

func TestDoOnRetryCallback(t *testing.T) {
	var attempts []int
	var delays []time.Duration

	cfg := testConfig(3)
	cfg.Backoff = NewFixedBackoff(5 * time.Millisecond)
	cfg.OnRetry = func(attempt int, err error, delay time.Duration) {
		attempts = append(attempts, attempt)
		delays = append(delays, delay)
	}

	_ = Do(func() error {
		return errs.New(errs.ErrorTypeRateLimit, "throttled", 429)
	}, cfg)

	// Called before each retry, not after the final attempt.
	assert.Equal(t, []int{1, 2}, attempts)
	assert.Equal(t, []time.Duration{5 * time.Millisecond, 5 * time.Millisecond}, delays)
}

func TestDoContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := testConfig(5)
	cfg.Context = ctx
	cfg.Backoff = NewFixedBackoff(time.Minute)

	calls := 0
	done := make(chan error, 1)
	go func() {
		done <- Do(func() error {
			calls++
			return errs.New(errs.ErrorTypeRateLimit, "throttled", 429)
		}, cfg)
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.Error(t, err)
		assert.Contains(t, err.Error(), "retry cancelled")
		assert.Equal(t, 1, calls)
	case <-time.After(time.Second):
		t.Fatal("Do did not return after context cancellation")
	}
}

func TestDefaultRetryIf(t *testing.T) {
	assert.False(t, DefaultRetryIf(nil))
	assert.False(t, DefaultRetryIf(context.Canceled))
	assert.False(t, DefaultRetryIf(errs.New(errs.ErrorTypeAuth, "auth", 401)))
	assert.True(t, DefaultRetryIf(errs.New(errs.ErrorTypeNetwork, "net", 0)))
	assert.True(t, DefaultRetryIf(fmt.Errorf("untyped failure")))
}

func TestFixedBackoff(t *testing.T) {
	fb := NewFixedBackoff(42 * time.Second)
	assert.Equal(t, time.Duration(0), fb.NextDelay(0))
	assert.Equal(t, 42*time.Second, fb.NextDelay(1))
	assert.Equal(t, 42*time.Second, fb.NextDelay(7))
}

func TestExponentialBackoff(t *testing.T) {
	eb := &ExponentialBackoff{
		BaseDelay:  time.Second,
		MaxDelay:   10 * time.Second,
		Multiplier: 2.0,
	}

	assert.Equal(t, time.Second, eb.NextDelay(1))
	assert.Equal(t, 2*time.Second, eb.NextDelay(2))
	assert.Equal(t, 4*time.Second, eb.NextDelay(3))
	// Capped at MaxDelay.
	assert.Equal(t, 10*time.Second, eb.NextDelay(10))
}

func TestExponentialBackoffJitter(t *testing.T) {
	eb := &ExponentialBackoff{
		BaseDelay:    time.Second,
		MaxDelay:     time.Minute,
		Multiplier:   2.0,
		JitterFactor: 0.5,
	}

	for i := 0; i < 20; i++ {
		d := eb.NextDelay(2)
		assert.GreaterOrEqual(t, d, time.Second)
		assert.LessOrEqual(t, d, 3*time.Second)
	}
}
