// Package ratelimit implements per-domain pacing for polite crawling.
package ratelimit

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter paces requests per domain. Each domain gets its own token bucket
// whose refill interval tracks the effective politeness delay, which may
// change mid-crawl when robots.txt asks for a longer Crawl-delay or the task
// config is updated.
type Limiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// New creates a new Limiter.
func New() *Limiter {
	return &Limiter{
		limiters: make(map[string]*rate.Limiter),
	}
}

// Wait blocks until the domain's next request slot, respecting the context.
// interval is the minimum gap between requests to the same domain; zero or
// negative intervals pass through immediately. The returned duration is the
// time actually spent waiting.
func (l *Limiter) Wait(ctx context.Context, rawURL string, interval time.Duration) (time.Duration, error) {
	if interval <= 0 {
		return 0, nil
	}
	domain := "unknown"
	if u, err := url.Parse(rawURL); err == nil && u.Hostname() != "" {
		domain = u.Hostname()
	}

	limit := rate.Every(interval)
	l.mu.Lock()
	limiter, exists := l.limiters[domain]
	if !exists {
		limiter = rate.NewLimiter(limit, 1)
		l.limiters[domain] = limiter
	} else if limiter.Limit() != limit {
		limiter.SetLimit(limit)
	}
	l.mu.Unlock()

	start := time.Now()
	if err := limiter.Wait(ctx); err != nil {
		return time.Since(start), fmt.Errorf("rate limit wait: %w", err)
	}
	return time.Since(start), nil
}
