package provider

import (
	"context"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter spaces requests per API host. Providers that share a host
// (YouTube and Search Console on www.googleapis.com) share a limiter.
type RateLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.Mutex
	delay    time.Duration
}

// NewRateLimiter creates a limiter allowing one request per delay per host.
// A non-positive delay disables limiting.
func NewRateLimiter(delay time.Duration) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		delay:    delay,
	}
}

// Wait blocks until a request to rawURL's host may proceed
func (r *RateLimiter) Wait(ctx context.Context, rawURL string) error {
	if r.delay <= 0 {
		return ctx.Err()
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return err
	}
	return r.limiter(u.Host).Wait(ctx)
}

// SetHostDelay overrides the spacing for one host
func (r *RateLimiter) SetHostDelay(host string, delay time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if delay <= 0 {
		delay = r.delay
	}
	r.limiters[host] = rate.NewLimiter(rate.Every(delay), 1)
}

func (r *RateLimiter) limiter(host string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.limiters[host]
	if !ok {
		l = rate.NewLimiter(rate.Every(r.delay), 1)
		r.limiters[host] = l
	}
	return l
}
