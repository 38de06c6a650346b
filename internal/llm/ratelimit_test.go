package llm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingTransport struct {
	calls int
}

func (c *countingTransport) Call(_ context.Context, _, _ string, _ CallConfig) (*Response, error) {
	c.calls++
	return &Response{Text: "{}"}, nil
}

func TestNewRateLimitedTransport_Disabled(t *testing.T) {
	next := &countingTransport{}
	assert.Same(t, next, NewRateLimitedTransport(next, 0))
}

func TestRateLimitedTransport_ForwardsCall(t *testing.T) {
	next := &countingTransport{}
	transport := NewRateLimitedTransport(next, 600)

	resp, err := transport.Call(context.Background(), "s", "u", CallConfig{})
	require.NoError(t, err)
	assert.Equal(t, "{}", resp.Text)
	assert.Equal(t, 1, next.calls)
}

func TestRateLimitedTransport_WaitExceedsDeadline(t *testing.T) {
	next := &countingTransport{}
	transport := NewRateLimitedTransport(next, 1)

	// The first call takes the only token.
	_, err := transport.Call(context.Background(), "s", "u", CallConfig{})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = transport.Call(ctx, "s", "u", CallConfig{})

	te := AsTransportError(err)
	require.NotNil(t, te)
	assert.Equal(t, KindTimeout, te.Kind)
	assert.Equal(t, 1, next.calls)
}
