package http

import (
	"time"

	"golang.org/x/time/rate"
)

// rateLimiter caps ephemeral events (previews, cursor moves) per connection.
// A limit of n allows n events per second with a burst of n.
type rateLimiter struct {
	limiter *rate.Limiter
	now     func() time.Time
}

func newRateLimiter(limit int) *rateLimiter {
	if limit <= 0 {
		return &rateLimiter{}
	}
	return &rateLimiter{
		limiter: rate.NewLimiter(rate.Limit(limit), limit),
		now:     time.Now,
	}
}

func (r *rateLimiter) allow() bool {
	if r == nil || r.limiter == nil {
		return true
	}
	return r.limiter.AllowN(r.now(), 1)
}
