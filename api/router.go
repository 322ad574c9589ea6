package api

import (
	"github.com/gin-gonic/gin"
	"github.com/use-agent/mapscout/api/handler"
	"github.com/use-agent/mapscout/api/middleware"
	"github.com/use-agent/mapscout/config"
	"github.com/use-agent/mapscout/scraper"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	API:     Auth (if enabled) → RateLimit
//
// Health endpoint is intentionally outside auth so monitoring probes always work.
func NewRouter(sc *scraper.Scraper, pipeline *scraper.Pipeline, cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	v1 := r.Group("/api/v1")

	// Health — no auth required.
	v1.GET("/health", handler.Health(sc))

	// Protected group — auth + rate limit.
	protected := v1.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(cfg.RateLimit, cfg.Auth.APIKeys))

	protected.POST("/search", handler.Search(pipeline))

	return r
}
