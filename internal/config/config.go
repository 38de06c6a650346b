// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/JonDMorrison/brandsinblooms-platform-sub005/internal/generation"
	"github.com/JonDMorrison/brandsinblooms-platform-sub005/internal/llm"
	"github.com/JonDMorrison/brandsinblooms-platform-sub005/internal/pipeline"
	"github.com/JonDMorrison/brandsinblooms-platform-sub005/internal/types"
)

// Defaults applied by MergeWithDefaults when a value is not set.
const (
	DefaultLogMode           = "dev"
	DefaultRequestsPerMinute = 60
)

// PricingConfig holds model prices in USD per million tokens.
type PricingConfig struct {
	PromptPerMTok     float64 `json:"prompt_per_mtok,omitempty" validate:"gte=0"`
	CompletionPerMTok float64 `json:"completion_per_mtok,omitempty" validate:"gte=0"`
}

// UnitOverride replaces parts of one unit's call configuration.
// Nil fields keep the built-in value.
type UnitOverride struct {
	Tier            string   `json:"tier,omitempty" validate:"omitempty,oneof=lite standard advanced"`
	Temperature     *float32 `json:"temperature,omitempty" validate:"omitempty,gte=0,lte=2"`
	MaxOutputTokens *int32   `json:"max_output_tokens,omitempty" validate:"omitempty,gt=0"`
	TimeoutMS       *int     `json:"timeout_ms,omitempty" validate:"omitempty,gt=0"`
	Retries         *int     `json:"retries,omitempty" validate:"omitempty,gte=0,lte=10"`
}

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Model
	APIKey            string            `json:"api_key,omitempty"`             // Gemini API key (falls back to GEMINI_API_KEY)
	Model             string            `json:"model,omitempty"`               // Model for the standard tier, used by every unit by default
	Models            map[string]string `json:"models,omitempty"`              // Model per tier name (lite, standard, advanced)
	RequestsPerMinute int               `json:"requests_per_minute,omitempty"` // Client-side rate limit, 0 uses default

	// Behavior
	LogMode     string `json:"log_mode,omitempty"`     // "dev" or "prod"
	UseBrowser  bool   `json:"use_browser,omitempty"`  // Use headless browser for SPA prior sites
	Verbose     bool   `json:"verbose,omitempty"`      // Print detailed progress information
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL

	Pricing       *PricingConfig          `json:"pricing,omitempty"`
	UnitOverrides map[string]UnitOverride `json:"unit_overrides,omitempty"`
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

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	switch c.LogMode {
	case "", "dev", "development", "prod", "production":
	default:
		return fmt.Errorf("config error: 'log_mode' must be dev or prod, got %q", c.LogMode)
	}

	if c.RequestsPerMinute < 0 {
		return fmt.Errorf("config error: 'requests_per_minute' must be non-negative")
	}

	for tier := range c.Models {
		if _, err := llm.ParseModelTier(tier); err != nil {
			return fmt.Errorf("config error: models: %w", err)
		}
	}

	validate := validator.New()
	if c.Pricing != nil {
		if err := validate.Struct(c.Pricing); err != nil {
			return fmt.Errorf("config error: invalid pricing: %w", err)
		}
	}

	for name, override := range c.UnitOverrides {
		if _, err := types.ParseUnitType(name); err != nil {
			return fmt.Errorf("config error: unit_overrides: %w", err)
		}
		if err := validate.Struct(override); err != nil {
			return fmt.Errorf("config error: invalid override for %s: %w", name, err)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.APIKey == "" {
		result.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if result.Model == "" {
		result.Model = defaults.Model
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.LogMode == "" {
		result.LogMode = defaults.LogMode
	}
	if result.LogMode == "" {
		result.LogMode = DefaultLogMode
	}

	// Int fields: use default if zero
	if result.RequestsPerMinute == 0 {
		result.RequestsPerMinute = defaults.RequestsPerMinute
	}
	if result.RequestsPerMinute == 0 {
		result.RequestsPerMinute = DefaultRequestsPerMinute
	}

	if result.Models == nil {
		result.Models = defaults.Models
	}
	if result.Pricing == nil {
		result.Pricing = defaults.Pricing
	}
	if result.UnitOverrides == nil {
		result.UnitOverrides = defaults.UnitOverrides
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// PipelinePricing returns the configured prices, or the pipeline default
// when none are configured. A zero price keeps the default for that side.
func (c *Config) PipelinePricing() pipeline.Pricing {
	pricing := pipeline.DefaultPricing()
	if c.Pricing == nil {
		return pricing
	}
	if c.Pricing.PromptPerMTok > 0 {
		pricing.PromptPerMTok = c.Pricing.PromptPerMTok
	}
	if c.Pricing.CompletionPerMTok > 0 {
		pricing.CompletionPerMTok = c.Pricing.CompletionPerMTok
	}
	return pricing
}

// GenerationOverrides converts unit_overrides into per-unit call overrides.
// Unknown unit names are rejected by Validate and skipped here.
func (c *Config) GenerationOverrides() map[types.UnitType]generation.Override {
	if len(c.UnitOverrides) == 0 {
		return nil
	}

	overrides := make(map[types.UnitType]generation.Override, len(c.UnitOverrides))
	for name, uo := range c.UnitOverrides {
		unit, err := types.ParseUnitType(name)
		if err != nil {
			continue
		}
		o := generation.Override{
			Temperature:     uo.Temperature,
			MaxOutputTokens: uo.MaxOutputTokens,
			Retries:         uo.Retries,
		}
		if tier, err := llm.ParseModelTier(uo.Tier); err == nil {
			o.Tier = &tier
		}
		if uo.TimeoutMS != nil {
			timeout := time.Duration(*uo.TimeoutMS) * time.Millisecond
			o.Timeout = &timeout
		}
		overrides[unit] = o
	}
	return overrides
}

// ModelConfig returns the Gemini models per tier: the defaults, then models,
// then model for the standard tier.
func (c *Config) ModelConfig() *llm.Config {
	cfg := llm.DefaultConfig()
	for name, model := range c.Models {
		tier, err := llm.ParseModelTier(name)
		if err != nil || model == "" {
			continue
		}
		cfg = cfg.WithModel(tier, model)
	}
	if c.Model != "" {
		cfg = cfg.WithModel(llm.TierStandard, c.Model)
	}
	return cfg
}
