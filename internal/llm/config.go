// Package llm provides the LLM client and the two collaborators the interview
// core consumes: a question generator and an answer scorer, each with an
// online (Gemini) and an offline implementation.
package llm

import "fmt"

// ModelTier selects a model by cost and capability.
type ModelTier string

const (
	// TierLite is for cheap, low-latency calls
	TierLite ModelTier = "lite"
	// TierStandard is used for question generation
	TierStandard ModelTier = "standard"
	// TierAdvanced is used for answer evaluation
	TierAdvanced ModelTier = "advanced"
)

// Config maps tiers to Gemini model names.
type Config struct {
	Models      map[ModelTier]string
	Temperature float32
}

// DefaultConfig returns the Gemini 2.5 family with a moderate temperature,
// which keeps generated questions varied between sessions.
func DefaultConfig() *Config {
	return &Config{
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
		Temperature: 0.4,
	}
}

// GetModel returns the model for tier, falling back to the standard and then
// the lite model. It returns "" when neither is configured.
func (c *Config) GetModel(tier ModelTier) string {
	for _, t := range []ModelTier{tier, TierStandard, TierLite} {
		if model, ok := c.Models[t]; ok && model != "" {
			return model
		}
	}
	return ""
}

// Validate rejects configurations the Gemini API would refuse.
func (c *Config) Validate() error {
	if c.GetModel(TierStandard) == "" {
		return fmt.Errorf("no model configured")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature %.2f out of range [0, 2]", c.Temperature)
	}
	return nil
}

// WithModel returns a copy of c with tier mapped to model.
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	models := make(map[ModelTier]string, len(c.Models)+1)
	for k, v := range c.Models {
		models[k] = v
	}
	models[tier] = model
	return &Config{Models: models, Temperature: c.Temperature}
}
