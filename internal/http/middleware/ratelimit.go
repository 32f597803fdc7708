package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

type window struct {
	start time.Time
	count int
}

// SimpleRateLimit is the in-process fixed-window limiter used when Redis is
// not configured. keyFn picks the bucket; nil means client IP.
func SimpleRateLimit(maxRequests int, per time.Duration, keyFn func(*gin.Context) string) gin.HandlerFunc {
	if keyFn == nil {
		keyFn = func(c *gin.Context) string { return c.ClientIP() }
	}

	var (
		mu      sync.Mutex
		buckets = make(map[string]*window)
		swept   = time.Now()
	)

	return func(c *gin.Context) {
		key := keyFn(c)
		now := time.Now()

		mu.Lock()
		if now.Sub(swept) > per {
			for k, w := range buckets {
				if now.Sub(w.start) > per {
					delete(buckets, k)
				}
			}
			swept = now
		}
		w, ok := buckets[key]
		if !ok || now.Sub(w.start) > per {
			w = &window{start: now}
			buckets[key] = w
		}
		w.count++
		blocked := w.count > maxRequests
		mu.Unlock()

		if blocked {
			RLBlocked.WithLabelValues(c.FullPath()).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		RLRequests.WithLabelValues(c.FullPath()).Inc()
		c.Next()
	}
}

// UserKey buckets by the authenticated user, falling back to client IP.
func UserKey(c *gin.Context) string {
	if uid, ok := c.Get("user_id"); ok {
		if id, ok := uid.(int64); ok {
			return "user:" + formatInt(id)
		}
	}
	return c.ClientIP()
}
