package middleware

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/milanfarm/farmbook/farmbook-backend/internal/metrics"
)

const (
	// DefaultRatePerSecond is the default sustained request rate per tenant
	DefaultRatePerSecond = 2.0
	// DefaultBurstSize is the default burst size
	DefaultBurstSize = 10
	// CleanupInterval is the interval for cleaning up stale limiters
	CleanupInterval = 5 * time.Minute
	// LimiterTTL is the time-to-live for inactive limiters
	LimiterTTL = 10 * time.Minute
)

// RateLimiter manages per-tenant rate limiting
type RateLimiter struct {
	limiters  map[string]*limiterEntry
	mu        sync.Mutex
	rateLimit float64
	burstSize int
	stopCh    chan struct{}
	stopOnce  sync.Once
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a new RateLimiter with default settings
func NewRateLimiter() *RateLimiter {
	return NewRateLimiterWithConfig(DefaultRatePerSecond, DefaultBurstSize)
}

// NewRateLimiterWithConfig creates a RateLimiter allowing perSecond requests
// per second with the given burst
func NewRateLimiterWithConfig(perSecond float64, burstSize int) *RateLimiter {
	rl := &RateLimiter{
		limiters:  make(map[string]*limiterEntry),
		rateLimit: perSecond,
		burstSize: burstSize,
		stopCh:    make(chan struct{}),
	}

	go rl.cleanup()

	return rl
}

func (r *RateLimiter) entry(tenantID string) *limiterEntry {
	entry, exists := r.limiters[tenantID]
	if !exists {
		entry = &limiterEntry{limiter: rate.NewLimiter(rate.Limit(r.rateLimit), r.burstSize)}
		r.limiters[tenantID] = entry
	}
	entry.lastSeen = time.Now()
	return entry
}

// Allow checks if a request from the given tenant is allowed
func (r *RateLimiter) Allow(tenantID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.entry(tenantID).limiter.Allow()
}

// GetState returns the remaining tokens and an estimate of when the bucket is full again
func (r *RateLimiter) GetState(tenantID string) (remaining int, resetTime time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, exists := r.limiters[tenantID]
	if !exists {
		return r.burstSize, time.Now()
	}

	tokens := entry.limiter.Tokens()
	if tokens < 0 {
		tokens = 0
	}
	missing := float64(r.burstSize) - tokens
	resetDuration := time.Duration(missing / r.rateLimit * float64(time.Second))
	return int(math.Floor(tokens)), time.Now().Add(resetDuration)
}

// cleanup periodically removes stale limiters to prevent memory leaks
func (r *RateLimiter) cleanup() {
	ticker := time.NewTicker(CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.mu.Lock()
			now := time.Now()
			for tenantID, entry := range r.limiters {
				if now.Sub(entry.lastSeen) > LimiterTTL {
					delete(r.limiters, tenantID)
					log.Debug().Str("tenant_id", tenantID).Msg("Cleaned up stale rate limiter")
				}
			}
			r.mu.Unlock()
		case <-r.stopCh:
			return
		}
	}
}

// Stop stops the cleanup goroutine
func (r *RateLimiter) Stop() {
	r.stopOnce.Do(func() { close(r.stopCh) })
}

// RateLimitMiddleware returns an Echo middleware that limits authenticated
// requests per tenant. Requests without a session pass through.
func RateLimitMiddleware(rl *RateLimiter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tenantID := GetTenantID(c)
			if tenantID == "" {
				return next(c)
			}

			limit := fmt.Sprintf("%d", rl.burstSize)
			if !rl.Allow(tenantID) {
				_, resetTime := rl.GetState(tenantID)
				retryAfter := int(math.Ceil(time.Until(resetTime).Seconds()))
				if retryAfter < 1 {
					retryAfter = 1
				}

				c.Response().Header().Set("X-RateLimit-Limit", limit)
				c.Response().Header().Set("X-RateLimit-Remaining", "0")
				c.Response().Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", resetTime.Unix()))
				c.Response().Header().Set("Retry-After", fmt.Sprintf("%d", retryAfter))

				metrics.RecordRateLimited(c.Path())
				log.Warn().
					Str("tenant_id", tenantID).
					Str("route", c.Path()).
					Int("retry_after", retryAfter).
					Msg("Rate limit exceeded")

				return rateLimitError(c, fmt.Sprintf("Too many requests. Please retry after %d seconds.", retryAfter))
			}

			remaining, resetTime := rl.GetState(tenantID)
			c.Response().Header().Set("X-RateLimit-Limit", limit)
			c.Response().Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))
			c.Response().Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", resetTime.Unix()))

			return next(c)
		}
	}
}
