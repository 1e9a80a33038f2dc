// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables named
// SECTION_FIELD, e.g. SERVER_PORT or SOURCE_RELOAD_INTERVAL. API_KEYS and
// TRUSTED_PROXIES are also accepted without the SECURITY_ prefix.
type Config struct {
	Server   ServerConfig    `envconfig:"SERVER"`
	Source   SourceConfig    `envconfig:"SOURCE"`
	Analysis AnalysisConfig  `envconfig:"ANALYSIS"`
	Rate     RateLimitConfig `envconfig:"RATE_LIMIT"`
	Security SecurityConfig  `envconfig:"SECURITY"`
	Metrics  MetricsConfig   `envconfig:"METRICS"`
	Logging  LoggingConfig   `envconfig:"LOG"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `default:"8080"`

	// ReadTimeout is the maximum duration for reading the request (default: 15s)
	ReadTimeout time.Duration `split_words:"true" default:"15s"`

	// WriteTimeout is the maximum duration for writing the response (default: 60s)
	WriteTimeout time.Duration `split_words:"true" default:"60s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `split_words:"true" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `split_words:"true" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `split_words:"true" default:"60s"`

	// MaxBodySize caps JSON and form request bodies in bytes (default: 1MB)
	MaxBodySize int64 `split_words:"true" default:"1048576"`
}

// SourceConfig selects where the stamp table is loaded from.
type SourceConfig struct {
	// Kind is file, http or postgres (default: file)
	Kind string `default:"file"`

	// Path is the local file for kind=file (default: data.csv)
	Path string `default:"data.csv"`

	// Sheet is the worksheet read from .xlsx files (default: first sheet)
	Sheet string

	// URL is the CSV endpoint for kind=http
	URL string

	// DatabaseURL is the PostgreSQL connection string for kind=postgres
	DatabaseURL string `split_words:"true"`

	// Query returns the table for kind=postgres (default: SELECT * FROM stamp_rows ORDER BY 1)
	Query string `default:"SELECT * FROM stamp_rows ORDER BY 1"`

	// Timeout bounds one load (default: 30s)
	Timeout time.Duration `default:"30s"`

	// MaxSize caps file and HTTP payloads in bytes (default: 100MB)
	MaxSize int64 `split_words:"true" default:"104857600"`

	// ReloadInterval enables periodic reloads when positive (default: 0, disabled)
	ReloadInterval time.Duration `split_words:"true" default:"0s"`
}

// AnalysisConfig bounds analysis work.
type AnalysisConfig struct {
	// MaxRanges is the number of ranges accepted per request (default: 20)
	MaxRanges int `split_words:"true" default:"20"`

	// MaxSpan is the number of identifiers one range may cover (default: 1000000)
	MaxSpan int64 `split_words:"true" default:"1000000"`

	// Slots is the number of ranges under analysis at once across all
	// requests; a request takes one slot per range (default: 32)
	Slots int `default:"32"`

	// MaxWait is how long a request waits for an analysis slot (default: 10s)
	MaxWait time.Duration `split_words:"true" default:"10s"`

	// Parallelism is the number of ranges analyzed concurrently per request (default: 4)
	Parallelism int `default:"4"`
}

// RateLimitConfig holds per-client rate limiting settings.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `default:"true"`

	// RPS is the sustained requests per second per client IP (default: 10)
	RPS float64 `default:"10"`

	// Burst is the bucket size per client IP (default: 20)
	Burst int `default:"20"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// APIKeys is a comma-separated list of keys accepted on protected routes.
	// Read from SECURITY_API_KEYS or API_KEYS.
	APIKeys []string `envconfig:"API_KEYS" split_words:"true"`

	// RequireAPIKey enforces X-API-Key on protected routes (default: false)
	RequireAPIKey bool `split_words:"true" default:"false"`

	// TrustedProxies is a comma-separated list of proxy CIDRs whose
	// X-Forwarded-For is honoured. Read from SECURITY_TRUSTED_PROXIES or TRUSTED_PROXIES.
	TrustedProxies []string `envconfig:"TRUSTED_PROXIES" split_words:"true"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `split_words:"true" default:"true"`
}

// MetricsConfig holds Prometheus settings.
type MetricsConfig struct {
	// Enabled exposes the metrics endpoint (default: true)
	Enabled bool `default:"true"`

	// Path is where metrics are served (default: /metrics)
	Path string `default:"/metrics"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
