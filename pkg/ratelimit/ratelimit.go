// Package ratelimit implements a token-bucket limiter used to cap the
// rate of outbound GraphQL executions per datasource instance.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter is a token bucket: tokens refill continuously at Rate per
// second up to Burst, and each execution consumes one token.
type Limiter struct {
	rate   float64
	burst  float64
	tokens float64
	last   time.Time
	mu     sync.Mutex
}

// New creates a limiter allowing rate executions per second with the
// given burst capacity. The bucket starts full.
func New(rate, burst float64) *Limiter {
	return &Limiter{
		rate:   rate,
		burst:  burst,
		tokens: burst,
		last:   time.Now(),
	}
}

// Wait blocks until a token is available or the context is done.
func (l *Limiter) Wait(ctx context.Context) error {
	l.mu.Lock()

	now := time.Now()
	l.tokens = min(l.burst, l.tokens+now.Sub(l.last).Seconds()*l.rate)
	l.last = now

	if l.tokens >= 1 {
		l.tokens--
		l.mu.Unlock()
		return nil
	}

	wait := time.Duration((1 - l.tokens) / l.rate * float64(time.Second))
	l.tokens = 0
	l.mu.Unlock()

	select {
	case <-time.After(wait):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
