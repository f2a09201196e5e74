package security

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	WindowDuration time.Duration `yaml:"window_duration"`
	RequestLimit   int           `yaml:"request_limit"`
	SweepInterval  time.Duration `yaml:"sweep_interval"`
}

// rateWindow tracks requests from one identity inside a fixed window.
// The counter keeps climbing past the limit: denials are not rolled
// back, so an over-limit caller stays denied until the window rolls
// over instead of probing in extra requests at the boundary.
type rateWindow struct {
	windowStart time.Time
	count       int
	mutex       sync.Mutex
}

// RateLimiter throttles callers by identity using per-identity fixed
// windows. Admission is the only operation that evaluates or resets a
// window; the sweep is purely memory reclamation.
type RateLimiter struct {
	config *RateLimitConfig
	logger *logrus.Logger

	windows map[string]*rateWindow
	mutex   sync.RWMutex

	sweepTicker *time.Ticker
	stopSweep   chan struct{}
	stopped     bool
}

// NewRateLimiter creates a rate limiter and starts its sweep goroutine.
func NewRateLimiter(config *RateLimitConfig, logger *logrus.Logger) *RateLimiter {
	if config.WindowDuration == 0 {
		config.WindowDuration = time.Hour
	}
	if config.RequestLimit == 0 {
		config.RequestLimit = 50
	}
	if config.SweepInterval == 0 {
		// Coarser than the window boundary; the sweep only bounds memory.
		config.SweepInterval = config.WindowDuration / 12
	}

	rl := &RateLimiter{
		config:    config,
		logger:    logger,
		windows:   make(map[string]*rateWindow),
		stopSweep: make(chan struct{}),
	}

	rl.startSweep()

	return rl
}

// Admit records a request from identity and reports whether it is
// allowed. A fresh or elapsed window resets to count 1; otherwise the
// count is incremented unconditionally and compared to the limit.
func (rl *RateLimiter) Admit(identity string) bool {
	now := time.Now()
	window := rl.getOrCreateWindow(identity)

	window.mutex.Lock()
	defer window.mutex.Unlock()

	if window.windowStart.IsZero() || now.Sub(window.windowStart) >= rl.config.WindowDuration {
		window.windowStart = now
		window.count = 1
		return true
	}

	window.count++
	if window.count > rl.config.RequestLimit {
		rl.logger.WithFields(logrus.Fields{
			"identity": identity,
			"count":    window.count,
			"limit":    rl.config.RequestLimit,
		}).Warn("Rate limit exceeded")
		return false
	}

	return true
}

// Remaining reports how many admissions identity has left in its
// current window. Purely informational; it never mutates the window.
func (rl *RateLimiter) Remaining(identity string) int {
	rl.mutex.RLock()
	window, exists := rl.windows[identity]
	rl.mutex.RUnlock()

	if !exists {
		return rl.config.RequestLimit
	}

	window.mutex.Lock()
	defer window.mutex.Unlock()

	if time.Since(window.windowStart) >= rl.config.WindowDuration {
		return rl.config.RequestLimit
	}
	remaining := rl.config.RequestLimit - window.count
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Windows returns the number of tracked identities.
func (rl *RateLimiter) Windows() int {
	rl.mutex.RLock()
	defer rl.mutex.RUnlock()
	return len(rl.windows)
}

// getOrCreateWindow returns the window for an identity, creating it on
// first request.
func (rl *RateLimiter) getOrCreateWindow(identity string) *rateWindow {
	rl.mutex.RLock()
	window, exists := rl.windows[identity]
	rl.mutex.RUnlock()
	if exists {
		return window
	}

	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	if window, exists = rl.windows[identity]; !exists {
		window = &rateWindow{}
		rl.windows[identity] = window
	}
	return window
}

// startSweep starts the periodic sweep goroutine.
func (rl *RateLimiter) startSweep() {
	rl.sweepTicker = time.NewTicker(rl.config.SweepInterval)

	go func() {
		for {
			select {
			case <-rl.sweepTicker.C:
				rl.sweep()
			case <-rl.stopSweep:
				return
			}
		}
	}()
}

// sweep removes windows that fully elapsed without a new request. It
// never takes part in admission decisions; an elapsed window that is
// still mapped resets lazily on the identity's next Admit.
func (rl *RateLimiter) sweep() {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := time.Now()
	removed := 0
	for identity, window := range rl.windows {
		window.mutex.Lock()
		expired := now.Sub(window.windowStart) >= rl.config.WindowDuration
		window.mutex.Unlock()
		if expired {
			delete(rl.windows, identity)
			removed++
		}
	}

	if removed > 0 {
		rl.logger.WithField("removed_windows", removed).Debug("Rate limit sweep completed")
	}
}

// Stop stops the sweep goroutine.
func (rl *RateLimiter) Stop() {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	if rl.stopped {
		return
	}
	rl.stopped = true
	rl.sweepTicker.Stop()
	close(rl.stopSweep)
}
