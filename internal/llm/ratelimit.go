package llm

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitedTransport paces outbound calls to stay under a provider quota.
type RateLimitedTransport struct {
	next    Transport
	limiter *rate.Limiter
}

// NewRateLimitedTransport wraps next so that at most requestsPerMinute calls
// start per minute. A non-positive rate returns next unchanged.
func NewRateLimitedTransport(next Transport, requestsPerMinute int) Transport {
	if requestsPerMinute <= 0 {
		return next
	}
	return &RateLimitedTransport{
		next:    next,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), 1),
	}
}

// Call waits for a slot and forwards the call. A wait that cannot finish
// within the call's deadline is reported as a timeout.
func (t *RateLimitedTransport) Call(ctx context.Context, system, user string, cfg CallConfig) (*Response, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, &TransportError{
			Kind:    KindTimeout,
			Message: "rate limiter wait exceeded call deadline",
			Cause:   err,
		}
	}
	return t.next.Call(ctx, system, user, cfg)
}
