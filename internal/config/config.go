package config

import (
	"os"
	"strings"
	"time"

	"github.com/onnwee/nbody-core/internal/utils"
)

// Config holds application configuration derived from environment variables.
type Config struct {
	// Simulation parameters
	IntegratorKind   string // RK2, YOSHIDA, or HERMITE
	Theta            float64
	DT               float64
	Workers          int
	BoundsHalfWidth  float64
	TickInterval     time.Duration
	SnapshotInterval time.Duration
	StatsInterval    string // @every-style expression gating run-level stats logging
	// Security settings
	RateLimitGlobal      float64  // requests per second globally
	RateLimitGlobalBurst int      // burst size for global rate limit
	RateLimitPerIP       float64  // requests per second per IP
	RateLimitPerIPBurst  int      // burst size for per-IP rate limit
	CORSAllowedOrigins   []string // allowed CORS origins
	EnableRateLimit      bool     // enable rate limiting middleware
	// Webhook push (optional external renderer)
	WebhookURL        string
	WebhookMaxRetries int
	WebhookRetryBase  time.Duration
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
	integrator := strings.ToUpper(strings.TrimSpace(os.Getenv("SIM_INTEGRATOR")))
	if integrator == "" {
		integrator = "YOSHIDA"
	}

	cached = &Config{
		IntegratorKind:   integrator,
		Theta:            utils.GetEnvAsFloat("SIM_THETA", 0.05),
		DT:               utils.GetEnvAsFloat("SIM_DT", 0.01),
		Workers:          utils.GetEnvAsInt("SIM_WORKERS", 0),
		BoundsHalfWidth:  utils.GetEnvAsFloat("SIM_BOUNDS_HALF_WIDTH", 250.0),
		TickInterval:     time.Duration(utils.GetEnvAsInt("SIM_TICK_INTERVAL_MS", 16)) * time.Millisecond,
		SnapshotInterval: time.Duration(utils.GetEnvAsInt("SIM_SNAPSHOT_INTERVAL_MS", 100)) * time.Millisecond,
		StatsInterval:    strings.TrimSpace(os.Getenv("SIM_STATS_INTERVAL")),
		// Security settings with sensible defaults
		RateLimitGlobal:      utils.GetEnvAsFloat("RATE_LIMIT_GLOBAL", 100.0),
		RateLimitGlobalBurst: utils.GetEnvAsInt("RATE_LIMIT_GLOBAL_BURST", 200),
		RateLimitPerIP:       utils.GetEnvAsFloat("RATE_LIMIT_PER_IP", 10.0),
		RateLimitPerIPBurst:  utils.GetEnvAsInt("RATE_LIMIT_PER_IP_BURST", 20),
		EnableRateLimit:      utils.GetEnvAsBool("ENABLE_RATE_LIMIT", true),
		WebhookURL:           strings.TrimSpace(os.Getenv("SIM_WEBHOOK_URL")),
		WebhookMaxRetries:    utils.GetEnvAsInt("SIM_WEBHOOK_MAX_RETRIES", 3),
		WebhookRetryBase:     time.Duration(utils.GetEnvAsInt("SIM_WEBHOOK_RETRY_BASE_MS", 300)) * time.Millisecond,
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
	if cached.StatsInterval == "" {
		cached.StatsInterval = "@every 30s"
	}
	if cached.SentryEnvironment == "" {
		if env := os.Getenv("ENV"); env != "" {
			cached.SentryEnvironment = env
		} else {
			cached.SentryEnvironment = "development"
		}
	}

	corsOrigins := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if corsOrigins == "" {
		cached.CORSAllowedOrigins = []string{"http://localhost:5173", "http://localhost:3000"}
	} else {
		origins := strings.Split(corsOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		cached.CORSAllowedOrigins = utils.UniqueStrings(origins)
	}

	return cached
}

// ResetForTest clears cached config; for use in tests only.
func ResetForTest() { cached = nil }

// GetEnvBool reads a boolean environment variable with a default.
// Use this when you need to check a flag not present in the cached config.
func (c *Config) GetEnvBool(key string, def bool) bool {
	return utils.GetEnvAsBool(key, def)
}
