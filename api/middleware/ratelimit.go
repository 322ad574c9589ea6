package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/mapscout/config"
	"github.com/use-agent/mapscout/models"
	"golang.org/x/time/rate"
)

// RateLimit returns token-bucket limiting middleware. Each configured API
// key gets its own bucket; unauthenticated traffic shares a single one. The
// key set is fixed at startup, so there is no per-request bookkeeping to
// grow or evict.
func RateLimit(cfg config.RateLimitConfig, apiKeys []string) gin.HandlerFunc {
	newBucket := func() *rate.Limiter {
		return rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst)
	}
	buckets := make(map[string]*rate.Limiter, len(apiKeys))
	for _, k := range apiKeys {
		if k != "" {
			buckets[k] = newBucket()
		}
	}
	shared := newBucket()

	return func(c *gin.Context) {
		bucket := shared
		if key, ok := c.Get("api_key"); ok {
			if b, found := buckets[key.(string)]; found {
				bucket = b
			}
		}
		if !bucket.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, models.SearchResponse{
				Success: false,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeRateLimited,
					Message: "rate limit exceeded, slow down",
				},
			})
			return
		}
		c.Next()
	}
}
