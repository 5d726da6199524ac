package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/interview-coach/internal/llm"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// clearEnv makes sure no ambient INTERVIEW_* or fallback variables leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"STORAGE_BACKEND", "STORAGE_DIR", "REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB",
		"DATABASE_URL", "GEMINI_API_KEY", "QUESTION_BANK", "OFFLINE", "GEMINI_MODEL", "PORT", "ENV", "LOG_LEVEL",
	} {
		unsetenv(t, EnvPrefix+"_"+key)
		unsetenv(t, key)
	}
}

func TestLoadConfig_ValidJSON(t *testing.T) {
	path := writeConfig(t, `{
		"storage_backend": "redis",
		"redis_addr": "localhost:6379",
		"port": 9090,
		"offline": true
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "redis", cfg.StorageBackend)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 9090, cfg.Port)
	assert.True(t, cfg.Offline)
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, `{ invalid json }`))
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config JSON")
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.json")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "config path is empty")
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "file", cfg.StorageBackend)
	assert.Equal(t, ".interview-coach", cfg.StorageDir)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.UseOffline())
}

func TestFromEnv_PrefixedAndFallbackNames(t *testing.T) {
	clearEnv(t)
	t.Setenv("INTERVIEW_STORAGE_BACKEND", "postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/interviews")
	t.Setenv("GEMINI_API_KEY", "key-123")
	t.Setenv("INTERVIEW_PORT", "9000")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.StorageBackend)
	assert.Equal(t, "postgres://localhost/interviews", cfg.DatabaseURL)
	assert.Equal(t, "key-123", cfg.APIKey)
	assert.Equal(t, 9000, cfg.Port)
	assert.False(t, cfg.UseOffline())
}

func TestFromEnv_InvalidNumber(t *testing.T) {
	clearEnv(t)
	t.Setenv("INTERVIEW_PORT", "eighty")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PORT")
}

func TestLoad_FileOverridesEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("INTERVIEW_STORAGE_DIR", "/var/lib/coach")
	t.Setenv("INTERVIEW_LOG_LEVEL", "debug")
	path := writeConfig(t, `{"storage_backend": "memory", "log_level": "warn"}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.StorageBackend)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "/var/lib/coach", cfg.StorageDir)
	assert.Equal(t, 8080, cfg.Port)
}

func TestLoad_Invalid(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `{"storage_backend": "redis"}`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis_addr")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "empty config", cfg: Config{}},
		{name: "valid file backend", cfg: Config{StorageBackend: "file", Port: 8080, Env: "production", LogLevel: "error"}},
		{name: "unknown backend", cfg: Config{StorageBackend: "s3"}, wantErr: "storage_backend"},
		{name: "postgres without url", cfg: Config{StorageBackend: "postgres"}, wantErr: "database_url"},
		{name: "negative redis db", cfg: Config{RedisDB: -1}, wantErr: "redis_db"},
		{name: "port out of range", cfg: Config{Port: 70000}, wantErr: "invalid port"},
		{name: "unknown env", cfg: Config{Env: "qa"}, wantErr: "invalid env"},
		{name: "unknown log level", cfg: Config{LogLevel: "verbose"}, wantErr: "log_level"},
		{name: "missing question bank", cfg: Config{QuestionBank: "/nonexistent/bank.yaml"}, wantErr: "question bank"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMergeWithDefaults(t *testing.T) {
	defaults := Config{
		StorageBackend: "file",
		StorageDir:     "/data",
		APIKey:         "default-key",
		Port:           8080,
		LogLevel:       "info",
	}

	partial := Config{
		StorageBackend: "memory",
		Port:           9090,
	}

	merged := partial.MergeWithDefaults(defaults)

	// Custom values should be preserved
	assert.Equal(t, "memory", merged.StorageBackend)
	assert.Equal(t, 9090, merged.Port)

	// Default values should fill in empty fields
	assert.Equal(t, "/data", merged.StorageDir)
	assert.Equal(t, "default-key", merged.APIKey)
	assert.Equal(t, "info", merged.LogLevel)
}

func TestMergeWithDefaults_EmptyDefaults(t *testing.T) {
	cfg := Config{StorageBackend: "memory", Env: "test"}

	merged := cfg.MergeWithDefaults(Config{})

	assert.Equal(t, "memory", merged.StorageBackend)
	assert.Equal(t, "test", merged.Env)
}

func TestServerAddr(t *testing.T) {
	cfg := Config{Port: 3000}
	assert.Equal(t, ":3000", cfg.ServerAddr())
}

func TestLLMConfig(t *testing.T) {
	def := (&Config{}).LLMConfig()
	assert.Equal(t, "gemini-2.5-pro", def.GetModel(llm.TierAdvanced))

	overridden := (&Config{GeminiModel: "gemini-exp"}).LLMConfig()
	for _, tier := range []llm.ModelTier{llm.TierLite, llm.TierStandard, llm.TierAdvanced} {
		assert.Equal(t, "gemini-exp", overridden.GetModel(tier), tier)
	}
	assert.Equal(t, def.Temperature, overridden.Temperature)
}
