// Package ratelimit provides the token bucket that throttles outbound API
// requests for a client session.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

const (
	// DefaultRequestsPerSecond is the average rate the API allows per
	// integration.
	DefaultRequestsPerSecond = 3.0

	// DefaultMaxBurst is the bucket capacity.
	DefaultMaxBurst = 5
)

// Limiter is a token bucket with continuous (fractional) refill. It is safe
// for concurrent use; callers that have to wait for a token sleep without
// holding the internal mutex.
type Limiter struct {
	mu sync.Mutex

	rate       float64
	capacity   float64
	tokens     float64
	lastRefill time.Time
}

// New creates a Limiter that starts with a full bucket. Non-positive
// arguments fall back to the defaults.
func New(requestsPerSecond float64, maxBurst int) *Limiter {
	if requestsPerSecond <= 0 {
		requestsPerSecond = DefaultRequestsPerSecond
	}
	if maxBurst <= 0 {
		maxBurst = DefaultMaxBurst
	}
	return &Limiter{
		rate:       requestsPerSecond,
		capacity:   float64(maxBurst),
		tokens:     float64(maxBurst),
		lastRefill: time.Now(),
	}
}

// Acquire takes one token, waiting at most timeout for it to become
// available. It returns false without consuming a token when the required
// wait would exceed the remaining timeout. A zero timeout never waits.
func (l *Limiter) Acquire(timeout time.Duration) bool {
	ok, _ := l.take(context.Background(), timeout, true)
	return ok
}

// Wait takes one token, blocking until one is available or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	_, err := l.take(ctx, 0, false)
	return err
}

// WaitForRetry sleeps for the server-advertised retry window and then
// refills the bucket to capacity.
func (l *Limiter) WaitForRetry(ctx context.Context, d time.Duration) error {
	if err := sleep(ctx, d); err != nil {
		return err
	}
	l.Reset()
	return nil
}

// Reset refills the bucket to capacity.
func (l *Limiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.tokens = l.capacity
	l.lastRefill = time.Now()
}

// Tokens returns the number of tokens currently available.
func (l *Limiter) Tokens() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.refillLocked(time.Now())
	return l.tokens
}

func (l *Limiter) take(ctx context.Context, timeout time.Duration, bounded bool) (bool, error) {
	start := time.Now()

	l.mu.Lock()
	for {
		now := time.Now()
		l.refillLocked(now)

		if l.tokens >= 1 {
			l.tokens--
			l.mu.Unlock()
			return true, nil
		}

		wait := time.Duration((1 - l.tokens) / l.rate * float64(time.Second))
		if bounded {
			remaining := timeout - now.Sub(start)
			if remaining <= 0 || wait > remaining {
				l.mu.Unlock()
				return false, nil
			}
		}

		// Sleep outside the lock so other callers can refill and take.
		l.mu.Unlock()
		if err := sleep(ctx, wait); err != nil {
			return false, err
		}
		l.mu.Lock()
	}
}

func (l *Limiter) refillLocked(now time.Time) {
	elapsed := now.Sub(l.lastRefill).Seconds()
	if elapsed > 0 {
		l.tokens += elapsed * l.rate
		if l.tokens > l.capacity {
			l.tokens = l.capacity
		}
	}
	l.lastRefill = now
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
