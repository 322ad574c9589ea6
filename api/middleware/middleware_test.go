package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/mapscout/config"
)

func authRouter(keys []string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Auth(keys))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func get(r *gin.Engine, header, value string) int {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	if header != "" {
		req.Header.Set(header, value)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestAuthOpenAccess(t *testing.T) {
	r := authRouter(nil)
	if code := get(r, "", ""); code != http.StatusOK {
		t.Errorf("no configured keys should mean open access, got %d", code)
	}
}

func TestAuthKeyChecks(t *testing.T) {
	r := authRouter([]string{"secret"})

	if code := get(r, "", ""); code != http.StatusUnauthorized {
		t.Errorf("missing key = %d, want 401", code)
	}
	if code := get(r, "X-API-Key", "wrong"); code != http.StatusUnauthorized {
		t.Errorf("invalid key = %d, want 401", code)
	}
	if code := get(r, "X-API-Key", "secret"); code != http.StatusOK {
		t.Errorf("X-API-Key = %d, want 200", code)
	}
	if code := get(r, "Authorization", "Bearer secret"); code != http.StatusOK {
		t.Errorf("bearer token = %d, want 200", code)
	}
}

func TestRateLimitBurst(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimit(config.RateLimitConfig{RequestsPerSecond: 0.01, Burst: 2}, nil))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 2; i++ {
		if code := get(r, "", ""); code != http.StatusOK {
			t.Fatalf("request %d within burst = %d, want 200", i+1, code)
		}
	}
	if code := get(r, "", ""); code != http.StatusTooManyRequests {
		t.Errorf("request past burst = %d, want 429", code)
	}
}

func TestRateLimitPerKeyBuckets(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := config.RateLimitConfig{RequestsPerSecond: 0.01, Burst: 1}
	r := gin.New()
	r.Use(Auth([]string{"alpha", "beta"}))
	r.Use(RateLimit(cfg, []string{"alpha", "beta"}))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	if code := get(r, "X-API-Key", "alpha"); code != http.StatusOK {
		t.Fatalf("first alpha request = %d, want 200", code)
	}
	if code := get(r, "X-API-Key", "alpha"); code != http.StatusTooManyRequests {
		t.Errorf("second alpha request = %d, want 429", code)
	}
	if code := get(r, "X-API-Key", "beta"); code != http.StatusOK {
		t.Errorf("beta should have its own bucket, got %d", code)
	}
}
