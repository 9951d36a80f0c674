package httpmiddleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RedisLimiter is a fixed-window per-IP rate limiter shared across
// instances. Fails open when Redis is unreachable.
type RedisLimiter struct {
	client    *redis.Client
	perMinute int
	prefix    string
}

// NewRedisLimiter creates a limiter allowing perMinute requests per IP.
func NewRedisLimiter(client *redis.Client, perMinute int) *RedisLimiter {
	return &RedisLimiter{client: client, perMinute: perMinute, prefix: "drawlab:ratelimit:"}
}

// GinMiddleware returns gin handler enforcing per-IP limits.
func (l *RedisLimiter) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if ip == "" {
			ip = "unknown"
		}

		key := l.prefix + ip + ":" + time.Now().UTC().Format("200601021504")
		count, err := l.client.Incr(c.Request.Context(), key).Result()
		if err != nil {
			c.Next()
			return
		}
		if count == 1 {
			l.client.Expire(c.Request.Context(), key, 2*time.Minute)
		}
		if count > int64(l.perMinute) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit"})
			return
		}
		c.Next()
	}
}
