package crawl

import (
	"context"
	"sync"
	"time"

	"github.com/fwojciec/sitesearch"
	"golang.org/x/time/rate"
)

var _ sitesearch.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter enforces a politeness delay between consecutive requests
// to the same domain using token buckets. Each domain gets its own
// limiter with a burst of 1, so the first request proceeds immediately
// and every later request waits out the full delay.
type DomainLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	delay    time.Duration
}

// NewDomainLimiter creates a new DomainLimiter with the given minimum
// delay between requests to a domain. A zero or negative delay disables
// limiting.
func NewDomainLimiter(delay time.Duration) *DomainLimiter {
	return &DomainLimiter{
		limiters: make(map[string]*rate.Limiter),
		delay:    delay,
	}
}

// Wait blocks until the politeness delay allows a request to the domain.
// Returns an error if the context is canceled before the wait completes.
func (d *DomainLimiter) Wait(ctx context.Context, domain string) error {
	d.mu.Lock()
	limiter, ok := d.limiters[domain]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(d.delay), 1)
		d.limiters[domain] = limiter
	}
	d.mu.Unlock()

	return limiter.Wait(ctx)
}
