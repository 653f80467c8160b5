// internal/ratelimit/limiter.go
package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer inserts a fixed politeness pause between sequential requests against a
// single endpoint. The pause is counted from the moment Pause is called, so time
// spent waiting on the previous response never shortens it. It never retries or
// backs off.
type Pacer struct {
	limit    rate.Limit
	interval time.Duration
}

// NewPacer creates a Pacer with the given pause. A non-positive interval
// disables pacing.
func NewPacer(interval time.Duration) *Pacer {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &Pacer{
		limit:    limit,
		interval: interval,
	}
}

// Pause blocks for the full interval or until ctx is done
func (p *Pacer) Pause(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if p.interval <= 0 {
		return ctx.Err()
	}

	// a fresh bucket drained of its only token refills exactly one interval from now
	limiter := rate.NewLimiter(p.limit, 1)
	limiter.Allow()
	return limiter.Wait(ctx)
}

// Interval returns the configured pause
func (p *Pacer) Interval() time.Duration {
	return p.interval
}
