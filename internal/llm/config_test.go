package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig_TierUsage(t *testing.T) {
	config := DefaultConfig()

	// Generation runs on the standard tier and evaluation on the advanced one.
	assert.Equal(t, "gemini-2.5-flash", config.GetModel(TierStandard))
	assert.Equal(t, "gemini-2.5-pro", config.GetModel(TierAdvanced))
	assert.InDelta(t, 0.4, config.Temperature, 1e-6)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
	assert.ErrorContains(t, (&Config{}).Validate(), "no model configured")
	assert.ErrorContains(t, (&Config{Models: map[ModelTier]string{TierLite: "lite"}, Temperature: 3}).Validate(), "out of range")
}

func TestGetModel_Fallback(t *testing.T) {
	tests := []struct {
		name   string
		models map[ModelTier]string
		want   string
	}{
		{"exact tier", map[ModelTier]string{TierAdvanced: "pro", TierStandard: "flash"}, "pro"},
		{"falls back to standard", map[ModelTier]string{TierStandard: "flash", TierLite: "lite"}, "flash"},
		{"falls back to lite", map[ModelTier]string{TierLite: "lite"}, "lite"},
		{"nothing configured", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, (&Config{Models: tt.models}).GetModel(TierAdvanced))
		})
	}
}

func TestWithModel_LeavesOriginalUntouched(t *testing.T) {
	config := DefaultConfig()
	scoring := config.WithModel(TierAdvanced, "custom-model")

	assert.Equal(t, "gemini-2.5-pro", config.GetModel(TierAdvanced))
	assert.Equal(t, "custom-model", scoring.GetModel(TierAdvanced))
	assert.Equal(t, config.GetModel(TierStandard), scoring.GetModel(TierStandard))
}
