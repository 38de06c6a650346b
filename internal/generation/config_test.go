package generation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/JonDMorrison/brandsinblooms-platform-sub005/internal/llm"
	"github.com/JonDMorrison/brandsinblooms-platform-sub005/internal/types"
)

func TestDefaultCallConfig_Profiles(t *testing.T) {
	foundation := DefaultCallConfig(types.UnitFoundation)
	contact := DefaultCallConfig(types.UnitContact)
	testimonials := DefaultCallConfig(types.UnitTestimonials)

	for _, unit := range types.SectionUnits() {
		cfg := DefaultCallConfig(unit)
		assert.Greater(t, foundation.Timeout, cfg.Timeout, unit)
		assert.Greater(t, foundation.MaxOutputTokens, cfg.MaxOutputTokens, unit)
		assert.LessOrEqual(t, contact.Temperature, cfg.Temperature, unit)
		assert.GreaterOrEqual(t, testimonials.Temperature, cfg.Temperature, unit)
		assert.GreaterOrEqual(t, cfg.Retries, 1, unit)
	}
	assert.Greater(t, testimonials.MaxOutputTokens, contact.MaxOutputTokens)
}

func TestDefaultCallConfig_Table(t *testing.T) {
	tests := []struct {
		unit        types.UnitType
		temperature float32
		maxTokens   int32
		timeout     time.Duration
		retries     int
	}{
		{types.UnitFoundation, 0.7, 4096, 60 * time.Second, 2},
		{types.UnitAbout, 0.7, 1536, 30 * time.Second, 2},
		{types.UnitServices, 0.5, 2048, 30 * time.Second, 1},
		{types.UnitTestimonials, 0.9, 2048, 30 * time.Second, 2},
		{types.UnitContact, 0.2, 768, 20 * time.Second, 2},
	}

	for _, tt := range tests {
		t.Run(tt.unit.String(), func(t *testing.T) {
			cfg := DefaultCallConfig(tt.unit)
			assert.Equal(t, tt.temperature, cfg.Temperature)
			assert.Equal(t, tt.maxTokens, cfg.MaxOutputTokens)
			assert.Equal(t, tt.timeout, cfg.Timeout)
			assert.Equal(t, tt.retries, cfg.Retries)
		})
	}
}

func TestOverride_Apply(t *testing.T) {
	tier := llm.TierAdvanced
	temperature := float32(0.3)
	maxTokens := int32(999)
	timeout := 5 * time.Second
	retries := 0

	base := DefaultCallConfig(types.UnitAbout)
	got := Override{
		Tier:            &tier,
		Temperature:     &temperature,
		MaxOutputTokens: &maxTokens,
		Timeout:         &timeout,
		Retries:         &retries,
	}.Apply(base)

	assert.Equal(t, llm.CallConfig{
		Tier:            llm.TierAdvanced,
		Temperature:     0.3,
		MaxOutputTokens: 999,
		Timeout:         5 * time.Second,
		Retries:         0,
	}, got)

	assert.Equal(t, base, Override{}.Apply(base))

	negative := -1
	assert.Equal(t, base.Retries, Override{Retries: &negative}.Apply(base).Retries)
}

func TestCallConfigFor(t *testing.T) {
	retries := 5
	overrides := map[types.UnitType]Override{types.UnitTeam: {Retries: &retries}}

	assert.Equal(t, 5, CallConfigFor(types.UnitTeam, overrides).Retries)
	assert.Equal(t, DefaultCallConfig(types.UnitValues), CallConfigFor(types.UnitValues, overrides))
	assert.Equal(t, DefaultCallConfig(types.UnitValues), CallConfigFor(types.UnitValues, nil))
}
