package config

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// Load reads configuration from environment variables.
// It applies defaults for unset values and validates the result.
// Returns an error if a value cannot be parsed or validation fails.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	cfg.Security.APIKeys = cleanList(cfg.Security.APIKeys)
	cfg.Security.TrustedProxies = cleanList(cfg.Security.TrustedProxies)
	cfg.Source.Kind = strings.ToLower(strings.TrimSpace(cfg.Source.Kind))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration and panics on error.
// Use this only in main() where early termination is desired.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}

// cleanList trims entries of a comma-separated list and drops empty ones.
func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string

	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT (%d) must be 1-65535", c.Server.Port))
	}
	if c.Server.ReadTimeout < 0 {
		errs = append(errs, "SERVER_READ_TIMEOUT must be non-negative")
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, "SERVER_SHUTDOWN_TIMEOUT must be positive")
	}
	if c.Server.MaxBodySize <= 0 {
		errs = append(errs, "SERVER_MAX_BODY_SIZE must be positive")
	}

	// Source validation
	switch c.Source.Kind {
	case "file":
		if c.Source.Path == "" {
			errs = append(errs, "SOURCE_PATH is required when SOURCE_KIND=file")
		}
	case "http":
		u, err := url.Parse(c.Source.URL)
		if c.Source.URL == "" || err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			errs = append(errs, fmt.Sprintf("SOURCE_URL (%q) must be an http(s) URL when SOURCE_KIND=http", c.Source.URL))
		}
	case "postgres":
		if c.Source.DatabaseURL == "" {
			errs = append(errs, "SOURCE_DATABASE_URL is required when SOURCE_KIND=postgres")
		}
	default:
		errs = append(errs, fmt.Sprintf("SOURCE_KIND (%q) must be one of: file, http, postgres", c.Source.Kind))
	}
	if c.Source.Timeout <= 0 {
		errs = append(errs, "SOURCE_TIMEOUT must be positive")
	}
	if c.Source.MaxSize < 0 {
		errs = append(errs, "SOURCE_MAX_SIZE must be non-negative")
	}
	if c.Source.ReloadInterval < 0 {
		errs = append(errs, "SOURCE_RELOAD_INTERVAL must be non-negative")
	}

	// Analysis validation
	if c.Analysis.MaxRanges <= 0 {
		errs = append(errs, "ANALYSIS_MAX_RANGES must be positive")
	}
	if c.Analysis.MaxSpan <= 0 {
		errs = append(errs, "ANALYSIS_MAX_SPAN must be positive")
	}
	if c.Analysis.Slots <= 0 {
		errs = append(errs, "ANALYSIS_SLOTS must be positive")
	}
	if c.Analysis.MaxWait <= 0 {
		errs = append(errs, "ANALYSIS_MAX_WAIT must be positive")
	}
	if c.Analysis.Parallelism <= 0 {
		errs = append(errs, "ANALYSIS_PARALLELISM must be positive")
	}

	// Rate limit validation
	if c.Rate.Enabled && c.Rate.RPS <= 0 {
		errs = append(errs, "RATE_LIMIT_RPS must be positive when rate limiting is enabled")
	}
	if c.Rate.Enabled && c.Rate.Burst <= 0 {
		errs = append(errs, "RATE_LIMIT_BURST must be positive when rate limiting is enabled")
	}

	// Security validation
	if c.Security.RequireAPIKey && len(c.Security.APIKeys) == 0 {
		errs = append(errs, "SECURITY_REQUIRE_API_KEY is true but API_KEYS is empty; configure at least one API key or disable auth")
	}
	for _, cidr := range c.Security.TrustedProxies {
		if _, _, err := net.ParseCIDR(cidr); err != nil && net.ParseIP(cidr) == nil {
			errs = append(errs, fmt.Sprintf("TRUSTED_PROXIES entry %q is neither a CIDR nor an IP", cidr))
		}
	}

	// Metrics validation
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		errs = append(errs, fmt.Sprintf("METRICS_PATH (%q) must start with /", c.Metrics.Path))
	}

	// Logging validation
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// String returns a safe string representation of the config for logging.
// Database URLs and API keys are masked.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("Config{")
	b.WriteString(fmt.Sprintf("Server: {Host: %q, Port: %d}, ", c.Server.Host, c.Server.Port))
	b.WriteString(fmt.Sprintf("Source: {Kind: %q, Path: %q, URL: %s, DatabaseURL: %s, ReloadInterval: %s}, ",
		c.Source.Kind, c.Source.Path, maskURL(c.Source.URL), mask(c.Source.DatabaseURL), c.Source.ReloadInterval))
	b.WriteString(fmt.Sprintf("Analysis: {MaxRanges: %d, MaxSpan: %d, Slots: %d, Parallelism: %d}, ",
		c.Analysis.MaxRanges, c.Analysis.MaxSpan, c.Analysis.Slots, c.Analysis.Parallelism))
	b.WriteString(fmt.Sprintf("Rate: {Enabled: %v, RPS: %g, Burst: %d}, ",
		c.Rate.Enabled, c.Rate.RPS, c.Rate.Burst))
	b.WriteString(fmt.Sprintf("Security: {APIKeys: %d configured, RequireAPIKey: %v}, ",
		len(c.Security.APIKeys), c.Security.RequireAPIKey))
	b.WriteString(fmt.Sprintf("Logging: {Level: %q, Format: %q}",
		c.Logging.Level, c.Logging.Format))
	b.WriteString("}")
	return b.String()
}

func mask(s string) string {
	if s == "" {
		return `""`
	}
	return "[MASKED]"
}

// maskURL keeps scheme and host but hides credentials and query strings.
func maskURL(s string) string {
	if s == "" {
		return `""`
	}
	u, err := url.Parse(s)
	if err != nil {
		return "[MASKED]"
	}
	return fmt.Sprintf("%q", u.Scheme+"://"+u.Host+u.Path)
}
