package generation

import (
	"time"

	"github.com/JonDMorrison/brandsinblooms-platform-sub005/internal/llm"
	"github.com/JonDMorrison/brandsinblooms-platform-sub005/internal/types"
)

// defaultCallConfigs holds the per-unit call settings. Foundation gets the
// longest timeout and largest output budget because it gates the job;
// Contact is factual and runs cold; Testimonials is narrative and runs hot.
var defaultCallConfigs = map[types.UnitType]llm.CallConfig{
	types.UnitFoundation:   {Tier: llm.TierStandard, Temperature: 0.7, MaxOutputTokens: 4096, Timeout: 60 * time.Second, Retries: 2},
	types.UnitAbout:        {Tier: llm.TierStandard, Temperature: 0.7, MaxOutputTokens: 1536, Timeout: 30 * time.Second, Retries: 2},
	types.UnitValues:       {Tier: llm.TierStandard, Temperature: 0.6, MaxOutputTokens: 1536, Timeout: 30 * time.Second, Retries: 1},
	types.UnitFeatures:     {Tier: llm.TierStandard, Temperature: 0.6, MaxOutputTokens: 1536, Timeout: 30 * time.Second, Retries: 1},
	types.UnitServices:     {Tier: llm.TierStandard, Temperature: 0.5, MaxOutputTokens: 2048, Timeout: 30 * time.Second, Retries: 1},
	types.UnitTeam:         {Tier: llm.TierStandard, Temperature: 0.6, MaxOutputTokens: 1536, Timeout: 30 * time.Second, Retries: 1},
	types.UnitTestimonials: {Tier: llm.TierStandard, Temperature: 0.9, MaxOutputTokens: 2048, Timeout: 30 * time.Second, Retries: 2},
	types.UnitContact:      {Tier: llm.TierStandard, Temperature: 0.2, MaxOutputTokens: 768, Timeout: 20 * time.Second, Retries: 2},
}

// Override replaces selected fields of a unit's call configuration.
// Nil fields keep the default.
type Override struct {
	Tier            *llm.ModelTier
	Temperature     *float32
	MaxOutputTokens *int32
	Timeout         *time.Duration
	Retries         *int
}

// Apply returns cfg with the override's non-nil fields substituted.
func (o Override) Apply(cfg llm.CallConfig) llm.CallConfig {
	if o.Tier != nil {
		cfg.Tier = *o.Tier
	}
	if o.Temperature != nil {
		cfg.Temperature = *o.Temperature
	}
	if o.MaxOutputTokens != nil {
		cfg.MaxOutputTokens = *o.MaxOutputTokens
	}
	if o.Timeout != nil {
		cfg.Timeout = *o.Timeout
	}
	if o.Retries != nil && *o.Retries >= 0 {
		cfg.Retries = *o.Retries
	}
	return cfg
}

// DefaultCallConfig returns the built-in call configuration for a unit.
func DefaultCallConfig(unit types.UnitType) llm.CallConfig {
	if cfg, ok := defaultCallConfigs[unit]; ok {
		return cfg
	}
	return llm.CallConfig{Tier: llm.TierStandard, Temperature: 0.7, MaxOutputTokens: 1536, Timeout: 30 * time.Second, Retries: 1}
}

// CallConfigFor returns the configuration for unit with any override applied.
func CallConfigFor(unit types.UnitType, overrides map[types.UnitType]Override) llm.CallConfig {
	cfg := DefaultCallConfig(unit)
	if o, ok := overrides[unit]; ok {
		cfg = o.Apply(cfg)
	}
	return cfg
}
