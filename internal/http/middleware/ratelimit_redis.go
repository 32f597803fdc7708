package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
)

// RedisLimiter is a fixed-window limiter on Redis INCR/EXPIRE. It fails open
// when Redis errors so the server stays available.
type RedisLimiter struct {
	client *redis.Client
	prefix string
}

// NewRedisLimiter connects to addr and pings it.
func NewRedisLimiter(addr, password string, db int) (*RedisLimiter, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return &RedisLimiter{client: client, prefix: "rl"}, nil
}

func (l *RedisLimiter) Ping(ctx context.Context) error {
	return l.client.Ping(ctx).Err()
}

func (l *RedisLimiter) Close() error {
	return l.client.Close()
}

// allow counts one hit for key in the current window. ok is false once the
// count exceeds max.
func (l *RedisLimiter) allow(ctx context.Context, key string, max int, window time.Duration) (count int64, ok bool, err error) {
	full := l.prefix + ":" + strconv.FormatInt(int64(window.Seconds()), 10) + ":" + key

	count, err = l.client.Incr(ctx, full).Result()
	if err != nil {
		return 0, true, err
	}
	if count == 1 {
		l.client.Expire(ctx, full, window)
	}
	return count, count <= int64(max), nil
}

// ByIP limits requests per client IP.
func (l *RedisLimiter) ByIP(max int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		l.limit(c, "ip:"+c.ClientIP(), c.FullPath(), max, window, "rate limit exceeded")
	}
}

// ByUser limits requests per authenticated user; JWT must run first.
func (l *RedisLimiter) ByUser(max int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := c.Get("user_id")
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		uid, _ := userID.(int64)
		l.limit(c, "user:"+strconv.FormatInt(uid, 10), "game:"+c.FullPath(), max, window, "game rate limit exceeded")
	}
}

func (l *RedisLimiter) limit(c *gin.Context, key, endpoint string, max int, window time.Duration, msg string) {
	count, ok, err := l.allow(c.Request.Context(), key, max, window)
	if err != nil {
		c.Header("X-RateLimit-Error", "redis-error")
		c.Next()
		return
	}

	c.Header("X-RateLimit-Limit", strconv.Itoa(max))
	c.Header("X-RateLimit-Remaining", strconv.FormatInt(max64(0, int64(max)-count), 10))

	if !ok {
		RLBlocked.WithLabelValues(endpoint).Inc()
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error":       msg,
			"retry_after": int(window.Seconds()),
		})
		return
	}
	RLRequests.WithLabelValues(endpoint).Inc()
	c.Next()
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
