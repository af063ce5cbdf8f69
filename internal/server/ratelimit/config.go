package ratelimit

import (
	"fmt"
	"net/http"
	"time"

	"github.com/caarlos0/env/v11"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // Endpoint path pattern (a trailing "/" matches by prefix)
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window; 0 means unlimited
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool          `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	DefaultLimit    int           `env:"RATE_LIMIT_DEFAULT_LIMIT" envDefault:"600"`
	DefaultWindow   time.Duration `env:"RATE_LIMIT_DEFAULT_WINDOW" envDefault:"1m"`
	CleanupInterval time.Duration `env:"RATE_LIMIT_CLEANUP_INTERVAL" envDefault:"5m"`
	IdleTimeout     time.Duration `env:"RATE_LIMIT_IDLE_TIMEOUT" envDefault:"1h"`
	Whitelist       []string      `env:"RATE_LIMIT_WHITELIST" envSeparator:","`
	Blacklist       []string      `env:"RATE_LIMIT_BLACKLIST" envSeparator:","`
	EndpointConfigs []EndpointConfig
}

// LoadConfig loads rate limiting configuration from environment variables.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse rate limit env: %w", err)
	}
	cfg.EndpointConfigs = DefaultEndpointConfigs()
	return cfg, nil
}

// DefaultEndpointConfigs returns the endpoint-specific limits.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		// Each request runs a full content fetch
		{Path: "/map", Method: http.MethodGet, Limit: 120, Window: time.Minute, Burst: 20},
		{Path: "/map/diagnostics", Method: http.MethodGet, Limit: 30, Window: time.Minute, Burst: 5},

		// Publishing writes to the database
		{Path: "/snapshots", Method: http.MethodPost, Limit: 10, Window: time.Hour, Burst: 2},

		// Health checks are never limited
		{Path: "/health", Method: http.MethodGet, Limit: 0},
	}
}
