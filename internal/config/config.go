package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aradhyyySharrma8204/cachecraft2/internal/utils"
)

// Config holds application configuration derived from environment variables.
type Config struct {
	// Cache engine
	CacheTTL        time.Duration // entry time-to-live, fixed at creation
	HistoryWindow   int           // recent queries sent as predictor context
	UserCacheSize   int           // max tracked users (LRU bound)
	UserIdleTTL     time.Duration // idle time before a user context is evictable
	SimBackendLatencyMS int       // simulated backend latency, analytics only
	SimCacheLatencyMS   int       // simulated cache latency, analytics only
	BackendDelay    time.Duration // artificial delay in the simulated backend (0 = none)
	// Prefetch pipeline
	PrefetchEnabled             bool
	PrefetchConfidenceThreshold float64 // initial value; mutable at runtime via admin settings
	PrefetchQueueSize           int
	PrefetchWorkers             int
	// Predictor (Groq-style chat completions)
	PredictorAPIKey        string
	PredictorBaseURL       string
	PredictorModel         string
	PredictorTimeout       time.Duration
	PredictorMaxCandidates int
	PredictorMaxRetries    int // 0 keeps the single-attempt contract
	PredictorRPS           float64
	PredictorBurst         int
	PredictorCacheTTL      time.Duration // response cache for identical history windows
	// HTTP client behavior
	HTTPRetryBase  time.Duration
	LogHTTPRetries bool
	// Admin API token for gating admin endpoints (Bearer token)
	AdminAPIToken string
	// Security settings
	RateLimitGlobal      float64  // requests per second globally
	RateLimitGlobalBurst int      // burst size for global rate limit
	RateLimitPerIP       float64  // requests per second per IP
	RateLimitPerIPBurst  int      // burst size for per-IP rate limit
	CORSAllowedOrigins   []string // allowed CORS origins
	EnableRateLimit      bool     // enable rate limiting middleware
	// Server
	Port string
	// Observability settings
	LogLevel          string  // log level: debug, info, warn, error
	OTELEnabled       bool    // enable OpenTelemetry tracing
	OTELEndpoint      string  // OpenTelemetry collector endpoint
	OTELSampleRate    float64 // trace sampling rate (0.0 to 1.0)
	SentryDSN         string  // Sentry DSN for error reporting
	SentryEnvironment string  // Sentry environment (dev, staging, production)
	SentryRelease     string  // Sentry release version
	SentrySampleRate  float64 // Sentry error sampling rate (0.0 to 1.0)
}

var cached *Config

// Load reads env vars once and caches them.
func Load() *Config {
	if cached != nil {
		return cached
	}
	apiKey := strings.TrimSpace(os.Getenv("PREDICTOR_API_KEY"))
	if apiKey == "" {
		// Groq deployments commonly export this name instead.
		apiKey = strings.TrimSpace(os.Getenv("GROQ_API_KEY"))
	}
	cached = &Config{
		CacheTTL:            time.Duration(utils.GetEnvAsInt("CACHE_TTL_SECONDS", 300)) * time.Second,
		HistoryWindow:       utils.GetEnvAsInt("HISTORY_WINDOW", 3),
		UserCacheSize:       utils.GetEnvAsInt("USER_CACHE_SIZE", 10000),
		UserIdleTTL:         utils.GetEnvAsDuration("USER_IDLE_TTL", time.Hour),
		SimBackendLatencyMS: utils.GetEnvAsInt("SIM_BACKEND_LATENCY_MS", 500),
		SimCacheLatencyMS:   utils.GetEnvAsInt("SIM_CACHE_LATENCY_MS", 30),
		BackendDelay:        utils.GetEnvAsDuration("BACKEND_DELAY", 0),

		PrefetchEnabled:             utils.GetEnvAsBool("PREFETCH_ENABLED", true),
		PrefetchConfidenceThreshold: utils.GetEnvAsFloat("PREFETCH_CONFIDENCE_THRESHOLD", 0.6),
		PrefetchQueueSize:           utils.GetEnvAsInt("PREFETCH_QUEUE_SIZE", 256),
		PrefetchWorkers:             utils.GetEnvAsInt("PREFETCH_WORKERS", 4),

		PredictorAPIKey:        apiKey,
		PredictorBaseURL:       utils.GetEnv("PREDICTOR_BASE_URL", "https://api.groq.com"),
		PredictorModel:         utils.GetEnv("PREDICTOR_MODEL", "mistral-saba-24b"),
		PredictorTimeout:       utils.GetEnvAsDuration("PREDICTOR_TIMEOUT", 10*time.Second),
		PredictorMaxCandidates: utils.GetEnvAsInt("PREDICTOR_MAX_CANDIDATES", 3),
		PredictorMaxRetries:    utils.GetEnvAsInt("PREDICTOR_MAX_RETRIES", 0),
		PredictorRPS:           utils.GetEnvAsFloat("PREDICTOR_RPS", 1.0),
		PredictorBurst:         utils.GetEnvAsInt("PREDICTOR_BURST", 2),
		PredictorCacheTTL:      utils.GetEnvAsDuration("PREDICTOR_CACHE_TTL", 10*time.Second),

		HTTPRetryBase:  time.Duration(utils.GetEnvAsInt("HTTP_RETRY_BASE_MS", 300)) * time.Millisecond,
		LogHTTPRetries: utils.GetEnvAsBool("LOG_HTTP_RETRIES", false),

		AdminAPIToken: strings.TrimSpace(os.Getenv("ADMIN_API_TOKEN")),
		// Security settings with sensible defaults
		RateLimitGlobal:      utils.GetEnvAsFloat("RATE_LIMIT_GLOBAL", 100.0),
		RateLimitGlobalBurst: utils.GetEnvAsInt("RATE_LIMIT_GLOBAL_BURST", 200),
		RateLimitPerIP:       utils.GetEnvAsFloat("RATE_LIMIT_PER_IP", 10.0),
		RateLimitPerIPBurst:  utils.GetEnvAsInt("RATE_LIMIT_PER_IP_BURST", 20),
		EnableRateLimit:      utils.GetEnvAsBool("ENABLE_RATE_LIMIT", true),

		Port: utils.GetEnv("PORT", "8000"),
		// Observability settings
		LogLevel:          strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL"))),
		OTELEnabled:       utils.GetEnvAsBool("OTEL_ENABLED", false),
		OTELEndpoint:      strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")),
		OTELSampleRate:    utils.GetEnvAsFloat("OTEL_TRACE_SAMPLE_RATE", 0.1),
		SentryDSN:         strings.TrimSpace(os.Getenv("SENTRY_DSN")),
		SentryEnvironment: strings.TrimSpace(os.Getenv("SENTRY_ENVIRONMENT")),
		SentryRelease:     strings.TrimSpace(os.Getenv("SENTRY_RELEASE")),
		SentrySampleRate:  utils.GetEnvAsFloat("SENTRY_SAMPLE_RATE", 1.0),
	}
	if cached.LogLevel == "" {
		cached.LogLevel = "info"
	}
	if cached.SentryEnvironment == "" {
		if env := os.Getenv("ENV"); env != "" {
			cached.SentryEnvironment = env
		} else {
			cached.SentryEnvironment = "development"
		}
	}

	// Parse CORS allowed origins. The dashboard is a browser app, so the
	// out-of-the-box default mirrors the original deployment: allow all.
	corsOrigins := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if corsOrigins == "" {
		cached.CORSAllowedOrigins = []string{"*"}
	} else {
		cached.CORSAllowedOrigins = strings.Split(corsOrigins, ",")
		for i := range cached.CORSAllowedOrigins {
			cached.CORSAllowedOrigins[i] = strings.TrimSpace(cached.CORSAllowedOrigins[i])
		}
	}

	return cached
}

// Validate reports configuration values that would break the cache contract.
// Called once at startup; a predictor key is deliberately not required here
// because the pipeline degrades to no predictions without one.
func (c *Config) Validate() error {
	if c.CacheTTL <= 0 {
		return fmt.Errorf("CACHE_TTL_SECONDS must be positive, got %v", c.CacheTTL)
	}
	if c.HistoryWindow < 1 {
		return fmt.Errorf("HISTORY_WINDOW must be at least 1, got %d", c.HistoryWindow)
	}
	if c.PrefetchConfidenceThreshold < 0 || c.PrefetchConfidenceThreshold > 1 {
		return fmt.Errorf("PREFETCH_CONFIDENCE_THRESHOLD must be in [0,1], got %v", c.PrefetchConfidenceThreshold)
	}
	if c.UserCacheSize < 1 {
		return fmt.Errorf("USER_CACHE_SIZE must be at least 1, got %d", c.UserCacheSize)
	}
	if c.PrefetchQueueSize < 1 || c.PrefetchWorkers < 1 {
		return fmt.Errorf("prefetch queue size and workers must be at least 1, got %d/%d",
			c.PrefetchQueueSize, c.PrefetchWorkers)
	}
	if c.SimBackendLatencyMS < c.SimCacheLatencyMS {
		return fmt.Errorf("SIM_BACKEND_LATENCY_MS (%d) must not be below SIM_CACHE_LATENCY_MS (%d)",
			c.SimBackendLatencyMS, c.SimCacheLatencyMS)
	}
	return nil
}

// PredictorEnabled reports whether outbound prediction calls are possible.
func (c *Config) PredictorEnabled() bool {
	return c.PrefetchEnabled && c.PredictorAPIKey != ""
}

// ResetForTest clears cached config; for use in tests only.
func ResetForTest() { cached = nil }
