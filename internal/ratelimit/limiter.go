// Package ratelimit throttles synthetic record production.
package ratelimit

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter wraps a token bucket limiter. A nil *Limiter performs no
// throttling, so callers never need to branch on whether a rate was
// configured.
type Limiter struct {
	limiter *rate.Limiter
}

// New creates a limiter allowing perSecond records per second with the
// given burst. Returns nil when perSecond is 0 or negative (unlimited).
func New(perSecond, burst int) *Limiter {
	if perSecond <= 0 {
		return nil
	}
	if burst < perSecond {
		burst = perSecond
	}
	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
	}
}

// Wait blocks until one record is allowed or ctx is cancelled.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.WaitN(ctx, 1)
}

// WaitN blocks until n records are allowed or ctx is cancelled. Requests
// larger than the burst are split so that any bundle size can be waited
// for.
func (l *Limiter) WaitN(ctx context.Context, n int) error {
	if l == nil || n <= 0 {
		return nil
	}
	burst := l.limiter.Burst()
	for n > 0 {
		chunk := n
		if chunk > burst {
			chunk = burst
		}
		if err := l.limiter.WaitN(ctx, chunk); err != nil {
			return err
		}
		n -= chunk
	}
	return nil
}
