package types

import "time"

// OutcomeStatus is the tag of a UnitOutcome.
type OutcomeStatus string

// Outcome status constants.
const (
	// StatusSuccess means the output parsed and validated on the first pass.
	StatusSuccess OutcomeStatus = "success"
	// StatusRecovered means structural repair or schema recovery was needed.
	StatusRecovered OutcomeStatus = "recovered"
	// StatusFailed means no validated record could be produced.
	StatusFailed OutcomeStatus = "failed"
)

// FailureReason classifies why a unit failed.
type FailureReason string

// Failure reason constants.
const (
	ReasonTransportExhausted FailureReason = "transport_exhausted"
	ReasonMalformedOutput    FailureReason = "malformed_output"
	ReasonSchemaInvalid      FailureReason = "schema_invalid"
)

// RepairStep names one structural repair applied to truncated model output.
type RepairStep string

// Repair steps, in the order they are applied.
const (
	RepairQuoteBalancing RepairStep = "quote_balancing"
	RepairDanglingField  RepairStep = "dangling_field_removal"
	RepairBracketClosing RepairStep = "bracket_closing"
	RepairTrailingCommas RepairStep = "trailing_comma_removal"
)

// FieldError is a single validation error at a specific field path.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FixKind names a recovery correction.
type FixKind string

// Fix kinds.
const (
	FixTruncatedString FixKind = "truncated_string"
	FixTrimmedArray    FixKind = "trimmed_array"
)

// Fix records one correction applied by schema recovery.
type Fix struct {
	Field string  `json:"field"`
	Kind  FixKind `json:"kind"`
	From  int     `json:"from"`
	To    int     `json:"to"`
}

// Failure describes why a unit produced no record.
type Failure struct {
	Reason      FailureReason `json:"reason"`
	Message     string        `json:"message"`
	FieldErrors []FieldError  `json:"field_errors,omitempty"`
}

// UnitOutcome is the result of exactly one Unit Generator invocation.
type UnitOutcome struct {
	Unit    UnitType      `json:"unit"`
	Status  OutcomeStatus `json:"status"`
	Content Content       `json:"content,omitempty"`
	Failure *Failure      `json:"failure,omitempty"`

	Repairs   []RepairStep `json:"repairs,omitempty"`
	Fixes     []Fix        `json:"fixes,omitempty"`
	Truncated bool         `json:"truncated,omitempty"`

	Usage    UsageRecord   `json:"usage"`
	Attempts int           `json:"attempts"`
	Duration time.Duration `json:"duration"`
}

// Succeeded reports whether the outcome carries a validated record.
func (o *UnitOutcome) Succeeded() bool {
	return o != nil && (o.Status == StatusSuccess || o.Status == StatusRecovered) && o.Content != nil
}
