package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimit is a fixed-window limiter keyed by scope and client IP. Counts
// live in Redis when it is configured and in process memory otherwise, or
// while Redis is failing.
func RateLimit(scope string, maxRequests int, window time.Duration) gin.HandlerFunc {
	local := newMemoryLimiter(window)
	windowSecs := strconv.FormatInt(int64(window.Seconds()), 10)

	return func(c *gin.Context) {
		key := "rl:" + scope + ":" + windowSecs + ":" + c.ClientIP()

		count, err := incrWindow(c.Request.Context(), key, window)
		if err != nil {
			if !errors.Is(err, ErrRedisDisabled) {
				c.Header("X-RateLimit-Error", "redis-error")
			}
			count = local.incr(key)
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(maxRequests))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(max(0, int64(maxRequests)-count), 10))

		if count > int64(maxRequests) {
			RLBlocked.WithLabelValues(scope).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"retry_after": int(window.Seconds()),
			})
			return
		}

		RLRequests.WithLabelValues(scope).Inc()
		c.Next()
	}
}

type clientInfo struct {
	start time.Time
	count int64
}

type memoryLimiter struct {
	mu      sync.Mutex
	window  time.Duration
	clients map[string]*clientInfo
	now     func() time.Time
}

func newMemoryLimiter(window time.Duration) *memoryLimiter {
	return &memoryLimiter{
		window:  window,
		clients: make(map[string]*clientInfo),
		now:     time.Now,
	}
}

func (l *memoryLimiter) incr(key string) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	ci, ok := l.clients[key]
	if !ok || now.Sub(ci.start) >= l.window {
		// drop expired windows while we hold the lock
		for k, other := range l.clients {
			if now.Sub(other.start) >= l.window {
				delete(l.clients, k)
			}
		}
		ci = &clientInfo{start: now}
		l.clients[key] = ci
	}
	ci.count++
	return ci.count
}
