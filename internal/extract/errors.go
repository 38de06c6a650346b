package extract

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when raw text contains no candidate structure.
var ErrNotFound = errors.New("no JSON object found in model output")

// ErrUnrecoverable is returned when the repair sequence cannot produce a parseable object.
var ErrUnrecoverable = errors.New("model output could not be repaired")

// ParseError represents a candidate that could not be turned into an object.
type ParseError struct {
	Stage   Stage
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("parse error at %s: %s: %v", e.Stage, e.Message, e.Cause)
	}
	return fmt.Sprintf("parse error at %s: %s", e.Stage, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}
