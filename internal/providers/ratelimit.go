package providers

import (
	"math/rand"
	"sync"
	"time"
)

// RateLimiter enforces a randomized minimum delay between outbound calls.
// Calls are strictly serialized; the delay for each call is sampled
// uniformly from [minDelay, maxDelay] and measured from the moment the
// previous Wait returned.
type RateLimiter struct {
	minDelay time.Duration
	maxDelay time.Duration

	mu       sync.Mutex
	lastCall time.Time

	// Overridable in tests.
	sleep func(time.Duration)
	now   func() time.Time
}

// NewRateLimiter creates a rate limiter with the given delay bounds.
// maxDelay below minDelay is treated as minDelay.
func NewRateLimiter(minDelay, maxDelay time.Duration) *RateLimiter {
	if maxDelay < minDelay {
		maxDelay = minDelay
	}
	return &RateLimiter{
		minDelay: minDelay,
		maxDelay: maxDelay,
		sleep:    time.Sleep,
		now:      time.Now,
	}
}

// Wait blocks until the sampled delay has elapsed since the previous call
// returned. The first call returns immediately. Safe for concurrent use,
// though the ingestion pipeline is deliberately single-threaded.
func (rl *RateLimiter) Wait() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	delay := rl.minDelay
	if span := rl.maxDelay - rl.minDelay; span > 0 {
		delay += time.Duration(rand.Int63n(int64(span) + 1))
	}

	if !rl.lastCall.IsZero() {
		if remaining := delay - rl.now().Sub(rl.lastCall); remaining > 0 {
			rl.sleep(remaining)
		}
	}
	rl.lastCall = rl.now()
}
