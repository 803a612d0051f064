package cli

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer spaces out background steps so the flock moves at a watchable rate.
type Pacer struct {
	limiter *rate.Limiter
}

// NewPacer allows one step per delay. A zero or negative delay disables pacing.
func NewPacer(delay time.Duration) *Pacer {
	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}
	return &Pacer{limiter: rate.NewLimiter(limit, 1)}
}

// SetDelay changes the spacing of future steps.
func (p *Pacer) SetDelay(delay time.Duration) {
	if delay <= 0 {
		p.limiter.SetLimit(rate.Inf)
		return
	}
	p.limiter.SetLimit(rate.Every(delay))
}

// Wait blocks until the next step may run or ctx is done.
func (p *Pacer) Wait(ctx context.Context) error {
	return p.limiter.Wait(ctx)
}
