package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		level   string
		enabled zapcore.Level
		muted   zapcore.Level
	}{
		{name: "production default", env: "production", enabled: zapcore.InfoLevel, muted: zapcore.DebugLevel},
		{name: "development default", env: "development", enabled: zapcore.DebugLevel, muted: zapcore.DebugLevel - 1},
		{name: "explicit warn", env: "production", level: "warn", enabled: zapcore.WarnLevel, muted: zapcore.InfoLevel},
		{name: "explicit debug", env: "test", level: "debug", enabled: zapcore.DebugLevel, muted: zapcore.DebugLevel - 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.env, tt.level)
			require.NoError(t, err)
			require.NotNil(t, logger)
			assert.True(t, logger.Core().Enabled(tt.enabled))
			assert.False(t, logger.Core().Enabled(tt.muted))
		})
	}
}

func TestNew_InvalidLevel(t *testing.T) {
	logger, err := New("production", "loud")
	assert.Error(t, err)
	assert.Nil(t, logger)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestNamed(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	Named(zap.New(core), "store").Info("ready")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "store", logs.All()[0].LoggerName)

	assert.NotNil(t, Named(nil, "store"))
}
