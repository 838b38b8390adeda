// Package ratelimit paces outgoing API requests.
package ratelimit

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter defines the interface for request pacing
type Limiter interface {
	// Wait blocks until the next request may be issued
	Wait()
	// Reset resets the limiter state
	Reset()
}

// FixedDelay enforces a politeness interval before every request: a base
// delay between consecutive calls plus a uniform random jitter in
// [0, jitterMax). The delay is session-wide, not per-call; one FixedDelay
// must be shared by every caller using the same HTTP session.
type FixedDelay struct {
	base      time.Duration
	jitterMax time.Duration
	limiter   *rate.Limiter

	mu  sync.Mutex
	rng *rand.Rand
}

// NewFixedDelay creates a limiter spacing requests at least base apart
func NewFixedDelay(base, jitterMax time.Duration) *FixedDelay {
	f := &FixedDelay{
		base:      base,
		jitterMax: jitterMax,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	f.Reset()
	return f
}

// Wait sleeps until the base interval since the previous request has
// elapsed, then adds the jitter.
func (f *FixedDelay) Wait() {
	if f.limiter != nil {
		// Background context: there is no cancellation in the crawl
		// model; each network call is bounded by its own timeout.
		_ = f.limiter.Wait(context.Background())
	}
	if j := f.jitter(); j > 0 {
		time.Sleep(j)
	}
}

// Reset restores the initial state. The first Wait after a reset still
// spaces by the full base interval, matching the "sleep before every
// call" contract.
func (f *FixedDelay) Reset() {
	if f.base <= 0 {
		f.limiter = nil
		return
	}
	l := rate.NewLimiter(rate.Every(f.base), 1)
	// Drain the initial token so the very first Wait delays too.
	l.Allow()
	f.limiter = l
}

func (f *FixedDelay) jitter() time.Duration {
	if f.jitterMax <= 0 {
		return 0
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return time.Duration(f.rng.Int63n(int64(f.jitterMax)))
}

// Nop is a Limiter that never waits, for tests
type Nop struct{}

func (Nop) Wait()  {}
func (Nop) Reset() {}
