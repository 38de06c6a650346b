package llm

import (
	"context"
	"time"

	"github.com/JonDMorrison/brandsinblooms-platform-sub005/internal/types"
)

// CallConfig holds the per-call generation settings for one unit.
type CallConfig struct {
	Tier            ModelTier
	Temperature     float32
	MaxOutputTokens int32
	// Timeout bounds a single attempt. Zero means no per-attempt deadline.
	Timeout time.Duration
	// Retries is the number of extra attempts after a failed first call.
	Retries int
}

// Response is the raw model output of one successful call.
type Response struct {
	Text  string
	Usage types.UsageRecord
	// Truncated is set when the provider stopped at the output token limit.
	Truncated bool
	Model     string
}

// Transport sends one prompt to a generative model. Implementations return a
// *TransportError for every failure so callers can decide whether to retry.
type Transport interface {
	Call(ctx context.Context, system, user string, cfg CallConfig) (*Response, error)
}
