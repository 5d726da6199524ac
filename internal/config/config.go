// Package config provides configuration loading and validation for the CLI and server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap/zapcore"

	"github.com/jonathan/interview-coach/internal/llm"
)

// EnvPrefix prefixes every environment variable read by FromEnv.
const EnvPrefix = "INTERVIEW"

// Config represents the application configuration. It can be loaded from a
// JSON file, from the environment, or both; see Load.
type Config struct {
	// Storage
	StorageBackend string `json:"storage_backend,omitempty" envconfig:"STORAGE_BACKEND" default:"file"`     // memory, file, redis or postgres
	StorageDir     string `json:"storage_dir,omitempty" envconfig:"STORAGE_DIR" default:".interview-coach"` // Directory for the file backend
	RedisAddr      string `json:"redis_addr,omitempty" envconfig:"REDIS_ADDR"`                              // host:port of the redis backend
	RedisPassword  string `json:"redis_password,omitempty" envconfig:"REDIS_PASSWORD"`
	RedisDB        int    `json:"redis_db,omitempty" envconfig:"REDIS_DB"`
	DatabaseURL    string `json:"database_url,omitempty" envconfig:"DATABASE_URL"` // PostgreSQL connection URL

	// Collaborators
	APIKey       string `json:"api_key,omitempty" envconfig:"GEMINI_API_KEY"`      // Gemini API key
	QuestionBank string `json:"question_bank,omitempty" envconfig:"QUESTION_BANK"` // YAML question bank for offline runs
	Offline      bool   `json:"offline,omitempty" envconfig:"OFFLINE"`             // Use the question bank and heuristic scorer
	GeminiModel  string `json:"gemini_model,omitempty" envconfig:"GEMINI_MODEL"`   // Overrides the model of every tier

	// Server
	Port     int    `json:"port,omitempty" envconfig:"PORT" default:"8080"`
	Env      string `json:"env,omitempty" envconfig:"ENV" default:"development"`
	LogLevel string `json:"log_level,omitempty" envconfig:"LOG_LEVEL" default:"info"`
}

var validBackends = map[string]bool{
	"memory":   true,
	"file":     true,
	"redis":    true,
	"postgres": true,
}

var validEnvs = map[string]bool{
	"development": true,
	"staging":     true,
	"production":  true,
	"test":        true,
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// FromEnv reads configuration from INTERVIEW_* environment variables, after
// loading a .env file if one exists. Tagged fields also fall back to their
// unprefixed names, so GEMINI_API_KEY and DATABASE_URL work as-is.
func FromEnv() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}
	return &cfg, nil
}

// Load combines the environment with an optional config file. Values set in
// the file take precedence over the environment. The result is validated.
func Load(path string) (*Config, error) {
	cfg, err := FromEnv()
	if err != nil {
		return nil, err
	}
	if path != "" {
		fileCfg, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		merged := fileCfg.MergeWithDefaults(*cfg)
		merged.Offline = fileCfg.Offline || cfg.Offline
		cfg = &merged
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration has valid values.
// Empty values are accepted wherever a default applies.
func (c *Config) Validate() error {
	if c.StorageBackend != "" && !validBackends[c.StorageBackend] {
		return fmt.Errorf("config error: unknown storage_backend %q (must be one of: memory, file, redis, postgres)", c.StorageBackend)
	}
	if c.StorageBackend == "redis" && c.RedisAddr == "" {
		return fmt.Errorf("config error: 'redis_addr' is required for the redis backend")
	}
	if c.StorageBackend == "postgres" && c.DatabaseURL == "" {
		return fmt.Errorf("config error: 'database_url' is required for the postgres backend")
	}
	if c.RedisDB < 0 {
		return fmt.Errorf("config error: 'redis_db' must be non-negative")
	}

	if c.Port != 0 && (c.Port < 1 || c.Port > 65535) {
		return fmt.Errorf("config error: invalid port %d (must be between 1 and 65535)", c.Port)
	}
	if c.Env != "" && !validEnvs[c.Env] {
		return fmt.Errorf("config error: invalid env %q (must be one of: development, staging, production, test)", c.Env)
	}
	if c.LogLevel != "" {
		if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
			return fmt.Errorf("config error: invalid log_level %q", c.LogLevel)
		}
	}

	// Validate file paths exist (if specified)
	if c.QuestionBank != "" {
		if _, err := os.Stat(c.QuestionBank); os.IsNotExist(err) {
			return fmt.Errorf("config error: question bank file not found: %s", c.QuestionBank)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.StorageBackend == "" {
		result.StorageBackend = defaults.StorageBackend
	}
	if result.StorageDir == "" {
		result.StorageDir = defaults.StorageDir
	}
	if result.RedisAddr == "" {
		result.RedisAddr = defaults.RedisAddr
	}
	if result.RedisPassword == "" {
		result.RedisPassword = defaults.RedisPassword
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.QuestionBank == "" {
		result.QuestionBank = defaults.QuestionBank
	}
	if result.GeminiModel == "" {
		result.GeminiModel = defaults.GeminiModel
	}
	if result.Env == "" {
		result.Env = defaults.Env
	}
	if result.LogLevel == "" {
		result.LogLevel = defaults.LogLevel
	}

	// Int fields: use default if zero
	if result.RedisDB == 0 {
		result.RedisDB = defaults.RedisDB
	}
	if result.Port == 0 {
		result.Port = defaults.Port
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// UseOffline reports whether the offline collaborators should be used.
func (c *Config) UseOffline() bool {
	return c.Offline || c.APIKey == ""
}

// LLMConfig returns the model configuration for the online collaborators.
func (c *Config) LLMConfig() *llm.Config {
	cfg := llm.DefaultConfig()
	if c.GeminiModel == "" {
		return cfg
	}
	for _, tier := range []llm.ModelTier{llm.TierLite, llm.TierStandard, llm.TierAdvanced} {
		cfg = cfg.WithModel(tier, c.GeminiModel)
	}
	return cfg
}

// ServerAddr returns the listen address for the configured port.
func (c *Config) ServerAddr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// IsDevelopment reports whether the development environment is configured.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}
