package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Adeleye080/DShop/apperr"
)

// RateLimiter counts attempts per client IP inside a sliding window.
// State is process-local and unbounded over distinct IPs; a multi-instance
// deployment must move this to a shared store with keyed expiring counters.
type RateLimiter struct {
	mu       sync.Mutex
	limit    int
	window   time.Duration
	attempts map[string][]time.Time
	now      func() time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:    limit,
		window:   window,
		attempts: make(map[string][]time.Time),
		now:      time.Now,
	}
}

// Allow records an attempt for key and reports whether it stays within the
// limit. Attempts older than the window are dropped first, so the first
// attempt after a full window always succeeds.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	kept := rl.attempts[key][:0]
	for _, t := range rl.attempts[key] {
		if now.Sub(t) < rl.window {
			kept = append(kept, t)
		}
	}
	if len(kept) >= rl.limit {
		rl.attempts[key] = kept
		return false
	}
	rl.attempts[key] = append(kept, now)
	return true
}

// Middleware rejects requests over the limit with a rate_limited error.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.Allow(c.ClientIP()) {
			apperr.Respond(c, apperr.RateLimited("too many attempts, please try again later"))
			c.Abort()
			return
		}
		c.Next()
	}
}
