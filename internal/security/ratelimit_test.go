package security

import (
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRateLimiter(t *testing.T) {
	config := &RateLimitConfig{
		WindowDuration: time.Hour,
		RequestLimit:   50,
		SweepInterval:  5 * time.Minute,
	}
	logger := logrus.New()

	limiter := NewRateLimiter(config, logger)
	defer limiter.Stop()

	assert.NotNil(t, limiter)
	assert.Equal(t, config, limiter.config)
	assert.NotNil(t, limiter.windows)
	assert.NotNil(t, limiter.sweepTicker)
}

func TestNewRateLimiter_Defaults(t *testing.T) {
	logger := logrus.New()

	limiter := NewRateLimiter(&RateLimitConfig{}, logger)
	defer limiter.Stop()

	assert.Equal(t, time.Hour, limiter.config.WindowDuration)
	assert.Equal(t, 50, limiter.config.RequestLimit)
	assert.Equal(t, 5*time.Minute, limiter.config.SweepInterval)
}

func TestRateLimiter_Admit_WithinLimit(t *testing.T) {
	config := &RateLimitConfig{
		WindowDuration: time.Hour,
		RequestLimit:   5,
		SweepInterval:  time.Minute,
	}
	logger := logrus.New()
	limiter := NewRateLimiter(config, logger)
	defer limiter.Stop()

	for i := 0; i < 5; i++ {
		assert.True(t, limiter.Admit("client-a"), "request %d should be admitted", i+1)
	}
	assert.Equal(t, 0, limiter.Remaining("client-a"))
}

func TestRateLimiter_Admit_ExceedLimit(t *testing.T) {
	config := &RateLimitConfig{
		WindowDuration: time.Hour,
		RequestLimit:   3,
		SweepInterval:  time.Minute,
	}
	logger := logrus.New()
	limiter := NewRateLimiter(config, logger)
	defer limiter.Stop()

	for i := 0; i < 3; i++ {
		require.True(t, limiter.Admit("client-a"))
	}

	assert.False(t, limiter.Admit("client-a"))
	assert.False(t, limiter.Admit("client-a"))
}

func TestRateLimiter_Admit_DenialsKeepCounting(t *testing.T) {
	config := &RateLimitConfig{
		WindowDuration: time.Hour,
		RequestLimit:   2,
		SweepInterval:  time.Minute,
	}
	logger := logrus.New()
	limiter := NewRateLimiter(config, logger)
	defer limiter.Stop()

	require.True(t, limiter.Admit("client-a"))
	require.True(t, limiter.Admit("client-a"))
	for i := 0; i < 10; i++ {
		require.False(t, limiter.Admit("client-a"))
	}

	// Denied calls were charged too: the counter keeps climbing past the
	// limit instead of hovering at it.
	limiter.mutex.RLock()
	window := limiter.windows["client-a"]
	limiter.mutex.RUnlock()
	assert.Equal(t, 12, window.count)
	assert.Equal(t, 0, limiter.Remaining("client-a"))
}

func TestRateLimiter_Admit_WindowReset(t *testing.T) {
	config := &RateLimitConfig{
		WindowDuration: 50 * time.Millisecond,
		RequestLimit:   2,
		SweepInterval:  time.Hour,
	}
	logger := logrus.New()
	limiter := NewRateLimiter(config, logger)
	defer limiter.Stop()

	require.True(t, limiter.Admit("client-a"))
	require.True(t, limiter.Admit("client-a"))
	require.False(t, limiter.Admit("client-a"))

	time.Sleep(60 * time.Millisecond)

	// The elapsed window resets on the next request, without any sweep
	// having run.
	assert.True(t, limiter.Admit("client-a"))
	assert.Equal(t, 1, limiter.Remaining("client-a"))
}

func TestRateLimiter_Admit_IndependentIdentities(t *testing.T) {
	config := &RateLimitConfig{
		WindowDuration: time.Hour,
		RequestLimit:   1,
		SweepInterval:  time.Minute,
	}
	logger := logrus.New()
	limiter := NewRateLimiter(config, logger)
	defer limiter.Stop()

	require.True(t, limiter.Admit("client-a"))
	require.False(t, limiter.Admit("client-a"))

	assert.True(t, limiter.Admit("client-b"))
	assert.Equal(t, 2, limiter.Windows())
}

func TestRateLimiter_Admit_Concurrent(t *testing.T) {
	config := &RateLimitConfig{
		WindowDuration: time.Hour,
		RequestLimit:   100,
		SweepInterval:  time.Minute,
	}
	logger := logrus.New()
	limiter := NewRateLimiter(config, logger)
	defer limiter.Stop()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < 150; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if limiter.Admit("client-a") {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	// Exactly the limit is admitted no matter how calls interleave.
	assert.Equal(t, 100, allowed)
}

func TestRateLimiter_Remaining_UnknownIdentity(t *testing.T) {
	config := &RateLimitConfig{
		WindowDuration: time.Hour,
		RequestLimit:   7,
		SweepInterval:  time.Minute,
	}
	logger := logrus.New()
	limiter := NewRateLimiter(config, logger)
	defer limiter.Stop()

	assert.Equal(t, 7, limiter.Remaining("never-seen"))
}

func TestRateLimiter_Sweep_RemovesExpiredWindows(t *testing.T) {
	config := &RateLimitConfig{
		WindowDuration: 20 * time.Millisecond,
		RequestLimit:   5,
		SweepInterval:  time.Hour,
	}
	logger := logrus.New()
	limiter := NewRateLimiter(config, logger)
	defer limiter.Stop()

	require.True(t, limiter.Admit("client-a"))
	require.True(t, limiter.Admit("client-b"))
	require.Equal(t, 2, limiter.Windows())

	time.Sleep(30 * time.Millisecond)
	limiter.sweep()

	assert.Equal(t, 0, limiter.Windows())

	// A swept identity starts a fresh window on its next request.
	assert.True(t, limiter.Admit("client-a"))
}

func TestRateLimiter_Sweep_KeepsActiveWindows(t *testing.T) {
	config := &RateLimitConfig{
		WindowDuration: time.Hour,
		RequestLimit:   5,
		SweepInterval:  time.Hour,
	}
	logger := logrus.New()
	limiter := NewRateLimiter(config, logger)
	defer limiter.Stop()

	require.True(t, limiter.Admit("client-a"))
	limiter.sweep()

	assert.Equal(t, 1, limiter.Windows())
}

func TestRateLimiter_Stop_Idempotent(t *testing.T) {
	logger := logrus.New()
	limiter := NewRateLimiter(&RateLimitConfig{}, logger)

	limiter.Stop()
	limiter.Stop()
}
