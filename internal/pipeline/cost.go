package pipeline

import (
	"math"

	"github.com/JonDMorrison/brandsinblooms-platform-sub005/internal/types"
)

// Default rates in USD per million tokens.
const (
	DefaultPromptPerMTok     = 0.30
	DefaultCompletionPerMTok = 2.50
)

// rateScale converts USD per million tokens into integer rate units so cost
// arithmetic stays exact. One cent is rateScale*1e6/100 rate-unit tokens.
const (
	rateScale    = 10_000
	unitsPerCent = rateScale * 1_000_000 / 100
)

// Pricing is the per-million-token rate table used to derive job cost.
type Pricing struct {
	PromptPerMTok     float64 `json:"prompt_per_mtok" validate:"gte=0"`
	CompletionPerMTok float64 `json:"completion_per_mtok" validate:"gte=0"`
}

// DefaultPricing returns the rates for the default model.
func DefaultPricing() Pricing {
	return Pricing{
		PromptPerMTok:     DefaultPromptPerMTok,
		CompletionPerMTok: DefaultCompletionPerMTok,
	}
}

// CostCents returns the cost of usage in whole cents, rounded up.
func (p Pricing) CostCents(usage types.UsageRecord) int64 {
	units := usage.PromptTokens*rateUnits(p.PromptPerMTok) +
		usage.CompletionTokens*rateUnits(p.CompletionPerMTok)
	if units <= 0 {
		return 0
	}
	return (units + unitsPerCent - 1) / unitsPerCent
}

func rateUnits(usdPerMTok float64) int64 {
	if usdPerMTok <= 0 {
		return 0
	}
	return int64(math.Round(usdPerMTok * rateScale))
}
