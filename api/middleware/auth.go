package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/mapscout/models"
)

// Auth returns API-key middleware. A request authenticates with either
// header style:
//
//	X-API-Key: <key>
//	Authorization: Bearer <key>
//
// An empty key list means open access. On success the key lands in the
// context under "api_key" so the rate limiter can pick its bucket.
func Auth(apiKeys []string) gin.HandlerFunc {
	known := make(map[string]struct{}, len(apiKeys))
	for _, k := range apiKeys {
		if k != "" {
			known[k] = struct{}{}
		}
	}
	if len(known) == 0 {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		key := requestKey(c)
		if key == "" {
			rejectUnauthorized(c, "missing API key: set X-API-Key or Authorization: Bearer <key>")
			return
		}
		if _, ok := known[key]; !ok {
			rejectUnauthorized(c, "invalid API key")
			return
		}
		c.Set("api_key", key)
		c.Next()
	}
}

func requestKey(c *gin.Context) string {
	if key := c.GetHeader("X-API-Key"); key != "" {
		return key
	}
	if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

func rejectUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, models.SearchResponse{
		Success: false,
		Error: &models.ErrorDetail{
			Code:    models.ErrCodeUnauthorized,
			Message: msg,
		},
	})
}
