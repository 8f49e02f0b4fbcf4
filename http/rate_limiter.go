package http

import (
	"sync"
	"time"
)

const (
	// A bucket untouched for this long is forgotten.
	idleBucketTTL = 1 * time.Hour
	evictInterval = 30 * time.Minute
)

// bucket is one client's budget. It refills completely once window has
// passed since the last refill.
type bucket struct {
	remaining int
	refilled  time.Time
}

func (b *bucket) take(now time.Time, capacity int, window time.Duration) (bool, time.Duration) {
	if elapsed := now.Sub(b.refilled); elapsed >= window {
		b.remaining = capacity
		b.refilled = now
	}
	if b.remaining == 0 {
		return false, window - now.Sub(b.refilled)
	}
	b.remaining--
	return true, 0
}

// RateLimiter hands out capacity requests per window to each client key.
type RateLimiter struct {
	capacity int
	window   time.Duration
	now      func() time.Time

	mu      sync.Mutex
	buckets map[string]*bucket

	done     chan struct{}
	stopOnce sync.Once
}

// NewRateLimiter starts a limiter and its idle-bucket eviction loop.
func NewRateLimiter(capacity int, window time.Duration) *RateLimiter {
	rl := newRateLimiter(capacity, window, time.Now)
	go rl.evictLoop()
	return rl
}

func newRateLimiter(capacity int, window time.Duration, now func() time.Time) *RateLimiter {
	return &RateLimiter{
		capacity: capacity,
		window:   window,
		now:      now,
		buckets:  make(map[string]*bucket),
		done:     make(chan struct{}),
	}
}

// Allow spends one request for client. When the budget is gone it reports
// how long until the next refill.
func (r *RateLimiter) Allow(client string) (bool, time.Duration) {
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.buckets[client]
	if !ok {
		b = &bucket{remaining: r.capacity, refilled: now}
		r.buckets[client] = b
	}
	return b.take(now, r.capacity, r.window)
}

func (r *RateLimiter) evictLoop() {
	t := time.NewTicker(evictInterval)
	defer t.Stop()

	for {
		select {
		case <-r.done:
			return
		case <-t.C:
			r.evictIdle()
		}
	}
}

func (r *RateLimiter) evictIdle() {
	cutoff := r.now().Add(-idleBucketTTL)

	r.mu.Lock()
	defer r.mu.Unlock()
	for client, b := range r.buckets {
		if b.refilled.Before(cutoff) {
			delete(r.buckets, client)
		}
	}
}

// Stop ends the eviction loop. Calling it again is a no-op.
func (r *RateLimiter) Stop() {
	r.stopOnce.Do(func() { close(r.done) })
}
