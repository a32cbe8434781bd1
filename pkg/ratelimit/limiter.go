// Package ratelimit provides per-key token-bucket admission control with a
// bounded wait for callers that can tolerate short delays.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter admits calls per key at a configured maximum rate. Each key owns
// an independent token bucket; keys never contend with each other beyond
// the map lookup.
type Limiter struct {
	cfg Config

	mu      sync.Mutex
	buckets map[string]*rate.Limiter
}

// New creates a Limiter with the given configuration.
// The configuration must already be finalized.
func New(cfg Config) *Limiter {
	return &Limiter{
		cfg:     cfg,
		buckets: make(map[string]*rate.Limiter),
	}
}

// Wait blocks until the key's bucket admits a call. It returns
// ErrWaitExceeded without consuming a token when admission would take
// longer than the configured maximum wait, and the context error if ctx
// is cancelled while waiting.
func (l *Limiter) Wait(ctx context.Context, key string) error {
	bucket := l.bucket(key)

	r := bucket.Reserve()
	if !r.OK() {
		return fmt.Errorf("%w: %s", ErrWaitExceeded, key)
	}

	delay := r.Delay()
	if delay > l.cfg.MaxWaitDuration() {
		r.Cancel()
		return fmt.Errorf("%w: %s", ErrWaitExceeded, key)
	}

	if delay == 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		r.Cancel()
		return ctx.Err()
	}
}

// Allow reports whether a call for the key would be admitted immediately,
// consuming a token if so.
func (l *Limiter) Allow(key string) bool {
	return l.bucket(key).Allow()
}

func (l *Limiter) bucket(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if b, ok := l.buckets[key]; ok {
		return b
	}

	limit := rate.Limit(float64(l.cfg.MaxCalls) / l.cfg.WindowDuration().Seconds())
	b := rate.NewLimiter(limit, l.cfg.MaxCalls)
	l.buckets[key] = b
	return b
}
