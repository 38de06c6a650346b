// Package llm is the boundary to the generative model provider: the Transport
// interface, its failure taxonomy, the Gemini implementation, and the models
// behind each tier.
package llm

import "fmt"

// ModelTier names a model size. Every unit calls TierStandard unless its
// configuration selects another tier.
type ModelTier string

const (
	TierLite     ModelTier = "lite"
	TierStandard ModelTier = "standard"
	TierAdvanced ModelTier = "advanced"
)

// ParseModelTier converts a configuration value into a ModelTier.
func ParseModelTier(s string) (ModelTier, error) {
	switch tier := ModelTier(s); tier {
	case TierLite, TierStandard, TierAdvanced:
		return tier, nil
	}
	return "", fmt.Errorf("unknown model tier %q (want lite, standard or advanced)", s)
}

// Config maps each tier to a Gemini model name.
type Config struct {
	Models map[ModelTier]string
}

// DefaultConfig returns the Gemini 2.5 family, one model per tier.
func DefaultConfig() *Config {
	return &Config{
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
	}
}

// GetModel returns the model for tier. A tier without a model uses the
// standard model; "" means nothing is configured.
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok && model != "" {
		return model
	}
	return c.Models[TierStandard]
}

// WithModel returns a copy of c with tier served by model.
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	models := make(map[ModelTier]string, len(c.Models)+1)
	for k, v := range c.Models {
		models[k] = v
	}
	models[tier] = model
	return &Config{Models: models}
}

// Validate reports a config that cannot serve the standard tier.
func (c *Config) Validate() error {
	if c.Models[TierStandard] == "" {
		return fmt.Errorf("no model configured for the %s tier", TierStandard)
	}
	return nil
}
