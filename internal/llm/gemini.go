package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/JonDMorrison/brandsinblooms-platform-sub005/internal/types"
)

// NewTransport creates the Gemini transport for config, or DefaultConfig when nil.
func NewTransport(ctx context.Context, config *Config, apiKey string) (*GeminiTransport, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid model config: %w", err)
	}
	return NewGeminiTransport(ctx, config, apiKey)
}

// GeminiTransport implements Transport for Google Gemini
type GeminiTransport struct {
	client *genai.Client
	config *Config
}

// NewGeminiTransport creates a new Gemini transport
func NewGeminiTransport(ctx context.Context, config *Config, apiKey string) (*GeminiTransport, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiTransport{
		client: client,
		config: config,
	}, nil
}

// Call sends one generation request. The model is asked for JSON output;
// the response text is returned unmodified for the extractor.
func (t *GeminiTransport) Call(ctx context.Context, system, user string, cfg CallConfig) (*Response, error) {
	modelName := t.config.GetModel(cfg.Tier)
	if modelName == "" {
		return nil, &TransportError{
			Kind:    KindUpstream,
			Message: fmt.Sprintf("no model configured for tier %s", cfg.Tier),
		}
	}

	model := t.client.GenerativeModel(modelName)
	model.SystemInstruction = genai.NewUserContent(genai.Text(system))
	model.SetTemperature(cfg.Temperature)
	if cfg.MaxOutputTokens > 0 {
		model.SetMaxOutputTokens(cfg.MaxOutputTokens)
	}
	model.ResponseMIMEType = "application/json"

	resp, err := model.GenerateContent(ctx, genai.Text(user))
	if err != nil {
		return nil, classifyError(ctx, err)
	}

	text, truncated, err := extractTextFromResponse(resp)
	usage := usageFromResponse(resp, system+"\n"+user, text)
	if err != nil {
		return nil, &TransportError{
			Kind:    KindUpstream,
			Message: "empty response",
			Usage:   usage,
			Cause:   err,
		}
	}

	return &Response{
		Text:      text,
		Usage:     usage,
		Truncated: truncated,
		Model:     modelName,
	}, nil
}

// GetModel returns the model name for a tier
func (t *GeminiTransport) GetModel(tier ModelTier) string {
	return t.config.GetModel(tier)
}

// Close releases resources held by the transport
func (t *GeminiTransport) Close() error {
	if t.client != nil {
		return t.client.Close()
	}
	return nil
}

// extractTextFromResponse extracts text from Gemini API response
func extractTextFromResponse(resp *genai.GenerateContentResponse) (string, bool, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", false, fmt.Errorf("no candidates in response")
	}

	candidate := resp.Candidates[0]
	truncated := candidate.FinishReason == genai.FinishReasonMaxTokens
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", truncated, fmt.Errorf("no content in response")
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}

	if len(parts) == 0 {
		return "", truncated, fmt.Errorf("no text parts in response")
	}

	return strings.Join(parts, ""), truncated, nil
}

// usageFromResponse reads billed token counts, estimating them when the
// provider omitted usage metadata.
func usageFromResponse(resp *genai.GenerateContentResponse, prompt, completion string) types.UsageRecord {
	if resp != nil && resp.UsageMetadata != nil {
		return types.UsageRecord{
			PromptTokens:     int64(resp.UsageMetadata.PromptTokenCount),
			CompletionTokens: int64(resp.UsageMetadata.CandidatesTokenCount),
		}
	}
	return types.UsageRecord{
		PromptTokens:     int64(EstimateTokens(prompt)),
		CompletionTokens: int64(EstimateTokens(completion)),
	}
}

// httpCoder is implemented by Google API errors that carry an HTTP status.
type httpCoder interface {
	HTTPCode() int
}

// classifyError maps a provider error onto the transport failure taxonomy.
func classifyError(ctx context.Context, err error) *TransportError {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &TransportError{Kind: KindTimeout, Message: "call deadline exceeded", Cause: err}
	}
	if errors.Is(err, context.Canceled) {
		return &TransportError{Kind: KindNetwork, Message: "call canceled", Cause: err}
	}

	var blocked *genai.BlockedError
	if errors.As(err, &blocked) {
		return &TransportError{Kind: KindUpstream, Message: "response blocked by provider", Cause: err}
	}

	status := 0
	var gerr *googleapi.Error
	var coder httpCoder
	switch {
	case errors.As(err, &gerr):
		status = gerr.Code
	case errors.As(err, &coder):
		status = coder.HTTPCode()
	}
	if status > 0 {
		return statusError(status, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return &TransportError{Kind: KindTimeout, Message: "network timeout", Cause: err}
		}
		return &TransportError{Kind: KindNetwork, Message: "network error", Cause: err}
	}

	return &TransportError{Kind: KindNetwork, Message: "request failed", Cause: err}
}

func statusError(status int, cause error) *TransportError {
	e := &TransportError{HTTPStatus: status, Cause: cause}
	switch {
	case status == http.StatusTooManyRequests:
		e.Kind, e.Message = KindRateLimited, "rate limited"
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		e.Kind, e.Message = KindTimeout, "upstream timeout"
	case status >= 500:
		e.Kind, e.Message = KindUpstream, "upstream error"
	default:
		e.Kind, e.Message = KindUpstream, fmt.Sprintf("request rejected with status %d", status)
	}
	return e
}
