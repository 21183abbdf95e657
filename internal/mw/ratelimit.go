package mw

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// CallerRateLimiter stores a rate limiter per calling client.
type CallerRateLimiter struct {
	callers map[string]*rate.Limiter
	mu      *sync.RWMutex
	r       rate.Limit
	b       int
}

// NewCallerRateLimiter creates a new CallerRateLimiter.
func NewCallerRateLimiter(r rate.Limit, b int) *CallerRateLimiter {
	return &CallerRateLimiter{
		callers: make(map[string]*rate.Limiter),
		mu:      &sync.RWMutex{},
		r:       r,
		b:       b,
	}
}

// add creates a new rate limiter for a caller key.
func (l *CallerRateLimiter) add(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter := rate.NewLimiter(l.r, l.b)
	l.callers[key] = limiter
	return limiter
}

// GetLimiter returns the rate limiter for a caller key.
func (l *CallerRateLimiter) GetLimiter(key string) *rate.Limiter {
	l.mu.RLock()
	limiter, exists := l.callers[key]
	l.mu.RUnlock()

	if !exists {
		return l.add(key)
	}
	return limiter
}

// RateLimiter is a middleware for per-caller rate limiting. When ipHeader
// is set the caller is identified by that header (the shell runs behind a
// local webview bridge that forwards the real origin); otherwise the
// connection's client IP is used.
func RateLimiter(r rate.Limit, b int, ipHeader string) gin.HandlerFunc {
	limiter := NewCallerRateLimiter(r, b)
	return func(c *gin.Context) {
		key := c.ClientIP()
		if ipHeader != "" {
			if v := c.GetHeader(ipHeader); v != "" {
				key = v
			}
		}
		if !limiter.GetLimiter(key).Allow() {
			c.AbortWithStatus(http.StatusTooManyRequests)
			return
		}
		c.Next()
	}
}
