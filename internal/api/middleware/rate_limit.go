package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type RateLimitMiddleware struct {
	client *redis.Client
}

func NewRateLimitMiddleware(client *redis.Client) *RateLimitMiddleware {
	return &RateLimitMiddleware{client: client}
}

// RateLimit bounds requests per authenticated user per endpoint
// within the window. Counting runs through Redis so the limit holds
// across restarts.
func (rm *RateLimitMiddleware) RateLimit(requests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("user_id")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		key := fmt.Sprintf("rate_limit:%v:%s", userID, c.Request.URL.Path)
		if !rm.allow(c, key, requests, window) {
			return
		}
		c.Next()
	}
}

// RateLimitIP bounds unauthenticated requests per client IP.
func (rm *RateLimitMiddleware) RateLimitIP(requests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := fmt.Sprintf("rate_limit:ip:%s:%s", c.ClientIP(), c.Request.URL.Path)
		if !rm.allow(c, key, requests, window) {
			return
		}
		c.Next()
	}
}

func (rm *RateLimitMiddleware) allow(c *gin.Context, key string, requests int, window time.Duration) bool {
	ctx := c.Request.Context()

	count, err := rm.client.Incr(ctx, key).Result()
	if err != nil {
		// Redis down should not take the API down with it.
		return true
	}
	if count == 1 {
		rm.client.Expire(ctx, key, window)
	}

	if count > int64(requests) {
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":   "rate limit exceeded",
			"message": fmt.Sprintf("too many requests, limit is %d per %v", requests, window),
		})
		c.Abort()
		return false
	}
	return true
}
