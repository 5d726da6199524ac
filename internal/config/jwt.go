package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// minSecretLength is the shortest accepted HS256 signing secret, in bytes.
const minSecretLength = 32

// JWTConfig holds configuration for identity token signing and validation.
// The variables are unprefixed so one secret can be shared with the service
// that issues tokens to candidates.
type JWTConfig struct {
	Secret          string `envconfig:"JWT_SECRET"`
	ExpirationHours int    `envconfig:"JWT_EXPIRATION_HOURS" default:"24"`
}

// NewJWTConfig reads JWT_SECRET (required, at least 32 bytes) and
// JWT_EXPIRATION_HOURS (default 24).
func NewJWTConfig() (*JWTConfig, error) {
	var cfg JWTConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("invalid JWT configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the secret and the token lifetime.
func (c *JWTConfig) Validate() error {
	switch {
	case c.Secret == "":
		return fmt.Errorf("JWT_SECRET is required but not set")
	case len(c.Secret) < minSecretLength:
		return fmt.Errorf("JWT_SECRET must be at least %d bytes, got %d", minSecretLength, len(c.Secret))
	case c.ExpirationHours < 1:
		return fmt.Errorf("JWT_EXPIRATION_HOURS must be at least 1 hour, got: %d", c.ExpirationHours)
	}
	return nil
}

// Expiration is the lifetime of an issued token.
func (c *JWTConfig) Expiration() time.Duration {
	return time.Duration(c.ExpirationHours) * time.Hour
}
