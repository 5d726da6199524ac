package ratelimit

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // Endpoint path pattern (supports prefix matching)
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool             `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
	DefaultLimit    int              `envconfig:"RATE_LIMIT_DEFAULT_LIMIT" default:"600"`
	DefaultWindow   time.Duration    `envconfig:"RATE_LIMIT_DEFAULT_WINDOW" default:"1m"`
	CleanupInterval time.Duration    `envconfig:"RATE_LIMIT_CLEANUP_INTERVAL" default:"5m"`
	IdleTTL         time.Duration    `envconfig:"RATE_LIMIT_IDLE_TTL" default:"1h"`
	Exempt          []string         `envconfig:"RATE_LIMIT_EXEMPT"` // client IDs that are never limited
	EndpointConfigs []EndpointConfig `ignored:"true"`
}

// LoadConfig loads rate limiting configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("invalid rate limit configuration: %w", err)
	}
	if cfg.DefaultLimit < 0 {
		return nil, fmt.Errorf("RATE_LIMIT_DEFAULT_LIMIT must be non-negative, got: %d", cfg.DefaultLimit)
	}
	cfg.EndpointConfigs = DefaultEndpointConfigs()
	return &cfg, nil
}

// DefaultEndpointConfigs returns the default endpoint-specific configurations.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		// Operations that call a remote model (strictest limits)
		{Path: "/resume", Method: "POST", Limit: 20, Window: time.Hour, Burst: 5},
		{Path: "/interview/generate", Method: "POST", Limit: 20, Window: time.Hour, Burst: 3},
		{Path: "/interview/continue", Method: "POST", Limit: 30, Window: time.Hour, Burst: 5},

		// Interview writes
		{Path: "/interview/answer", Method: "POST", Limit: 120, Window: time.Minute, Burst: 10},
		{Path: "/profile/field", Method: "POST", Limit: 60, Window: time.Minute, Burst: 10},
		{Path: "/interview/reset", Method: "POST", Limit: 30, Window: time.Minute, Burst: 5},
		{Path: "/profile/reset", Method: "POST", Limit: 30, Window: time.Minute, Burst: 5},
		{Path: "/restart", Method: "POST", Limit: 30, Window: time.Minute, Burst: 5},

		// Reads use the default limit; health and the event stream are unlimited
	}
}
