package observability

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/JonDMorrison/brandsinblooms-platform-sub005/internal/pipeline"
	"github.com/JonDMorrison/brandsinblooms-platform-sub005/internal/types"
)

func TestPrintResult(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	result := &types.GenerationResult{
		Foundation: &types.Foundation{SiteName: "Bloom & Root", Tagline: "Plants for every windowsill"},
		Theme: types.Theme{
			Colors: types.ThemeColors{Primary: "#2F6B3A", Secondary: "#F4EDE1", Accent: "#E07A5F"},
			Fonts:  types.ThemeFonts{Heading: "Playfair Display", Body: "Inter"},
		},
		Statuses: map[types.UnitType]types.OutcomeStatus{
			types.UnitFoundation: types.StatusSuccess,
			types.UnitAbout:      types.StatusSuccess,
			types.UnitContact:    types.StatusRecovered,
		},
		FailedSections:  []types.UnitType{types.UnitValues},
		SkippedSections: []types.UnitType{types.UnitTeam},
		Usage:           types.UsageRecord{PromptTokens: 1200, CompletionTokens: 800},
		CostCents:       125,
		Calls:           9,
	}

	p.PrintResult(result)
	output := buf.String()

	assert.Contains(t, output, "GENERATED SITE")
	assert.Contains(t, output, "Bloom & Root")
	assert.Contains(t, output, "#2F6B3A")
	assert.Contains(t, output, "contact       (recovered)")
	assert.Contains(t, output, "values        (unavailable)")
	assert.Contains(t, output, "team          (skipped)")
	assert.Contains(t, output, "1200 prompt, 800 completion")
	assert.Contains(t, output, "$1.25")
	assert.NotContains(t, output, "features")
}

func TestPrintResult_Nil(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintResult(nil)

	assert.Empty(t, buf.String())
}

func TestPrintFatal(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	fieldErrors := make([]types.FieldError, 7)
	for i := range fieldErrors {
		fieldErrors[i] = types.FieldError{Field: "items", Message: "too short"}
	}
	p.PrintFatal(&pipeline.FatalJobError{
		Unit:        types.UnitTestimonials,
		Reason:      types.ReasonSchemaInvalid,
		Message:     "schema validation failed",
		FieldErrors: fieldErrors,
		Calls:       8,
		CostCents:   3,
	})
	output := buf.String()

	assert.Contains(t, output, "GENERATION FAILED")
	assert.Contains(t, output, "testimonials")
	assert.Contains(t, output, "schema_invalid")
	assert.Contains(t, output, "... and 2 more")
	assert.Contains(t, output, "$0.03")
}

func TestPrintOutcome(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintOutcome(&types.UnitOutcome{
		Unit:      types.UnitFoundation,
		Status:    types.StatusRecovered,
		Truncated: true,
		Repairs:   []types.RepairStep{types.RepairQuoteBalancing, types.RepairBracketClosing},
		Fixes:     []types.Fix{{Field: "seo.description", Kind: types.FixTruncatedString, From: 210, To: 160}},
	})
	output := buf.String()

	assert.Contains(t, output, "UNIT OUTCOME")
	assert.Contains(t, output, "recovered")
	assert.Contains(t, output, "cut off")
	assert.Contains(t, output, "quote_balancing")
	assert.Contains(t, output, "seo.description truncated_string 210 → 160")
}

func TestPrintOutcome_Failure(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintOutcome(&types.UnitOutcome{
		Unit:   types.UnitContact,
		Status: types.StatusFailed,
		Failure: &types.Failure{
			Reason:      types.ReasonSchemaInvalid,
			Message:     "schema validation failed",
			FieldErrors: []types.FieldError{{Field: "email", Message: "email is required"}},
		},
	})

	assert.Contains(t, buf.String(), "email: email is required")
}

func TestPrintProgress(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintProgress(pipeline.ProgressEvent{Step: pipeline.StepSections, State: pipeline.StateFailed, Unit: types.UnitTeam, Message: "team failed"})
	p.PrintProgress(pipeline.ProgressEvent{Step: pipeline.StepAggregate, State: pipeline.StateCompleted, Message: "done"})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, []string{
		"[sections] team failed: team failed",
		"[aggregate] completed: done",
	}, lines)
}

func TestPrintBox_ClipsLongLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.printBox("TITLE", strings.Repeat("é", 100))

	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		assert.Equal(t, boxWidth, len([]rune(line)), "line %q", line)
	}
	assert.Contains(t, buf.String(), "...")
}

func TestFormatCents(t *testing.T) {
	assert.Equal(t, "$0.00", formatCents(0))
	assert.Equal(t, "$0.07", formatCents(7))
	assert.Equal(t, "$12.30", formatCents(1230))
}
