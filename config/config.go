package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Browser   BrowserConfig
	Scraper   ScraperConfig
	Discovery DiscoveryConfig
	Extract   ExtractConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Diag      DiagConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// BrowserConfig controls the Rod browser instance.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// MaxPages is the page pool capacity (max concurrent searches).
	MaxPages int // default: 4

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string

	// DefaultProxy is the proxy URL for all requests.
	DefaultProxy string

	// BlockedResourceTypes lists resource types to abort during hijack.
	// default: ["Image", "Font", "Media"]
	BlockedResourceTypes []string
}

// ScraperConfig controls per-link scraping behavior.
type ScraperConfig struct {
	// NavigationTimeout is the max time for a single page.Navigate.
	NavigationTimeout time.Duration // default: 30s

	// SettleDelay is the pause after navigation before reading markup,
	// giving the embedded state script time to land.
	SettleDelay time.Duration // default: 2s

	// LinkDelay is the pause between consecutive place links.
	LinkDelay time.Duration // default: 500ms

	// ConsentSettleTimeout bounds the wait for network quiescence after
	// clicking a consent button.
	ConsentSettleTimeout time.Duration // default: 8s

	// HeadingAttachTimeout bounds the wait for the place heading to appear
	// on the DOM fallback path.
	HeadingAttachTimeout time.Duration // default: 10s

	// HeadingTextTimeout bounds the wait for the heading to carry text.
	HeadingTextTimeout time.Duration // default: 5s

	// HTTPFirst tries a plain HTTP fetch of each place page before the
	// browser navigates, extracting from the raw markup when it already
	// carries the embedded state.
	HTTPFirst bool // default: false

	// HTTPTimeout is the deadline for the HTTP-first fetch.
	HTTPTimeout time.Duration // default: 5s
}

// DiscoveryConfig controls the link discovery loop.
type DiscoveryConfig struct {
	// FeedWaitTimeout bounds the wait for the results feed to attach.
	FeedWaitTimeout time.Duration // default: 25s

	// ScrollPause is the pause after each scroll before re-harvesting.
	ScrollPause time.Duration // default: 1500ms

	// MaxStalledScrolls ends feed scrolling after this many consecutive
	// iterations without new links.
	MaxStalledScrolls int // default: 5

	// MaxFallbackScrolls caps wheel-scroll iterations when no feed exists.
	MaxFallbackScrolls int // default: 20

	// WheelDelta is the pixel delta per fallback wheel scroll.
	WheelDelta int // default: 3000

	// DefaultMaxPlaces bounds results when the request does not. 0 leaves
	// the run unbounded; scrolling still ends at the end-of-list marker or
	// the stall bound.
	DefaultMaxPlaces int // default: 0
}

// ExtractConfig controls record acceptance policy.
type ExtractConfig struct {
	// RequireName makes the embedded-state path reject records without a
	// name, matching the stricter rendered-page path.
	RequireName bool // default: false
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: true

	// APIKeys is the list of valid API keys.
	APIKeys []string
}

// RateLimitConfig controls per-key rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per API key.
	RequestsPerSecond float64 // default: 5

	// Burst is the maximum burst size per API key.
	Burst int // default: 10
}

// DiagConfig controls diagnostic artifact capture.
type DiagConfig struct {
	// Enabled toggles screenshot/html capture on failures.
	Enabled bool // default: true

	// Dir is the artifact directory; empty means the system temp dir.
	Dir string
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("MAPSCOUT_HOST", "0.0.0.0"),
			Port: envIntOr("MAPSCOUT_PORT", 8080),
			Mode: envOr("MAPSCOUT_MODE", "release"),
		},
		Browser: BrowserConfig{
			Headless:     envBoolOr("MAPSCOUT_HEADLESS", true),
			MaxPages:     envIntOr("MAPSCOUT_MAX_PAGES", 4),
			NoSandbox:    envBoolOr("MAPSCOUT_NO_SANDBOX", false),
			BrowserBin:   os.Getenv("MAPSCOUT_BROWSER_BIN"),
			DefaultProxy: os.Getenv("MAPSCOUT_PROXY"),
			BlockedResourceTypes: envSliceOr("MAPSCOUT_BLOCKED_RESOURCES", []string{
				"Image", "Font", "Media",
			}),
		},
		Scraper: ScraperConfig{
			NavigationTimeout:    envDurationOr("MAPSCOUT_NAV_TIMEOUT", 30*time.Second),
			SettleDelay:          envDurationOr("MAPSCOUT_SETTLE_DELAY", 2*time.Second),
			LinkDelay:            envDurationOr("MAPSCOUT_LINK_DELAY", 500*time.Millisecond),
			ConsentSettleTimeout: envDurationOr("MAPSCOUT_CONSENT_TIMEOUT", 8*time.Second),
			HeadingAttachTimeout: envDurationOr("MAPSCOUT_HEADING_TIMEOUT", 10*time.Second),
			HeadingTextTimeout:   envDurationOr("MAPSCOUT_HEADING_TEXT_TIMEOUT", 5*time.Second),
			HTTPFirst:            envBoolOr("MAPSCOUT_HTTP_FIRST", false),
			HTTPTimeout:          envDurationOr("MAPSCOUT_HTTP_TIMEOUT", 5*time.Second),
		},
		Discovery: DiscoveryConfig{
			FeedWaitTimeout:    envDurationOr("MAPSCOUT_FEED_TIMEOUT", 25*time.Second),
			ScrollPause:        envDurationOr("MAPSCOUT_SCROLL_PAUSE", 1500*time.Millisecond),
			MaxStalledScrolls:  envIntOr("MAPSCOUT_MAX_STALLED_SCROLLS", 5),
			MaxFallbackScrolls: envIntOr("MAPSCOUT_MAX_FALLBACK_SCROLLS", 20),
			WheelDelta:         envIntOr("MAPSCOUT_WHEEL_DELTA", 3000),
			DefaultMaxPlaces:   envIntOr("MAPSCOUT_DEFAULT_MAX_PLACES", 0),
		},
		Extract: ExtractConfig{
			RequireName: envBoolOr("MAPSCOUT_REQUIRE_NAME", false),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("MAPSCOUT_AUTH_ENABLED", true),
			APIKeys: envSliceOr("MAPSCOUT_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("MAPSCOUT_RATE_RPS", 5.0),
			Burst:             envIntOr("MAPSCOUT_RATE_BURST", 10),
		},
		Diag: DiagConfig{
			Enabled: envBoolOr("MAPSCOUT_DIAG_ENABLED", true),
			Dir:     os.Getenv("MAPSCOUT_DIAG_DIR"),
		},
		Log: LogConfig{
			Level:  envOr("MAPSCOUT_LOG_LEVEL", "info"),
			Format: envOr("MAPSCOUT_LOG_FORMAT", "json"),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
