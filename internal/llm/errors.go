package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/JonDMorrison/brandsinblooms-platform-sub005/internal/types"
)

// ErrorKind classifies a transport failure.
type ErrorKind string

// Transport failure kinds.
const (
	KindTimeout     ErrorKind = "timeout"
	KindRateLimited ErrorKind = "rate_limited"
	KindUpstream    ErrorKind = "upstream_failure"
	KindNetwork     ErrorKind = "network_failure"
)

// TransportError is returned by a Transport when a call produced no usable
// response. Usage carries any tokens the provider billed before failing.
type TransportError struct {
	Kind       ErrorKind
	Message    string
	HTTPStatus int
	Usage      types.UsageRecord
	Cause      error
}

func (e *TransportError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("transport %s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("transport %s: %s", e.Kind, e.Message)
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}

// AsTransportError returns err as a *TransportError. Errors of any other
// type are wrapped as timeouts or network failures.
func AsTransportError(err error) *TransportError {
	if err == nil {
		return nil
	}
	var te *TransportError
	if errors.As(err, &te) {
		return te
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &TransportError{Kind: KindTimeout, Message: "call deadline exceeded", Cause: err}
	}
	return &TransportError{
		Kind:    KindNetwork,
		Message: "unclassified transport failure",
		Cause:   err,
	}
}
