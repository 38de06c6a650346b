// Package observability provides logging, metrics, tracing, and formatted
// output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/JonDMorrison/brandsinblooms-platform-sub005/internal/pipeline"
	"github.com/JonDMorrison/brandsinblooms-platform-sub005/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode. It is safe for
// concurrent use so it can serve as a progress callback.
type Printer struct {
	mu  sync.Mutex
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, clip(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// clip shortens s to at most n runes, ending in "..." when cut.
func clip(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}

// PrintResult outputs a summary of a completed generation job.
func (p *Printer) PrintResult(result *types.GenerationResult) {
	if result == nil {
		return
	}

	var sb strings.Builder
	if result.Foundation != nil {
		sb.WriteString(fmt.Sprintf("Site:     %s\n", result.Foundation.SiteName))
		sb.WriteString(fmt.Sprintf("Tagline:  %s\n", result.Foundation.Tagline))
	}
	sb.WriteString(fmt.Sprintf("Theme:    %s / %s / %s\n",
		result.Theme.Colors.Primary, result.Theme.Colors.Secondary, result.Theme.Colors.Accent))
	sb.WriteString(fmt.Sprintf("Fonts:    %s, %s\n", result.Theme.Fonts.Heading, result.Theme.Fonts.Body))
	sb.WriteString("\n")

	sb.WriteString("Units:\n")
	for _, unit := range types.AllUnits() {
		status, ok := result.Statuses[unit]
		switch {
		case ok && status == types.StatusRecovered:
			sb.WriteString(fmt.Sprintf("  ✓ %-13s (recovered)\n", unit))
		case ok:
			sb.WriteString(fmt.Sprintf("  ✓ %s\n", unit))
		case contains(result.SkippedSections, unit):
			sb.WriteString(fmt.Sprintf("  - %-13s (skipped)\n", unit))
		case contains(result.FailedSections, unit):
			sb.WriteString(fmt.Sprintf("  ✗ %-13s (unavailable)\n", unit))
		}
	}
	sb.WriteString("\n")

	sb.WriteString(fmt.Sprintf("Calls:    %d\n", result.Calls))
	sb.WriteString(fmt.Sprintf("Tokens:   %d prompt, %d completion\n", result.Usage.PromptTokens, result.Usage.CompletionTokens))
	sb.WriteString(fmt.Sprintf("Cost:     %s", formatCents(result.CostCents)))

	p.printBox("GENERATED SITE", sb.String())
}

// PrintFatal outputs why a generation job failed.
func (p *Printer) PrintFatal(err *pipeline.FatalJobError) {
	if err == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Unit:     %s\n", err.Unit))
	sb.WriteString(fmt.Sprintf("Reason:   %s\n", err.Reason))
	sb.WriteString(fmt.Sprintf("Message:  %s\n", err.Message))

	if len(err.FieldErrors) > 0 {
		sb.WriteString("\nField errors:\n")
		count := min(len(err.FieldErrors), maxItemsToShow)
		for i := 0; i < count; i++ {
			fe := err.FieldErrors[i]
			sb.WriteString(fmt.Sprintf("  • %s: %s\n", fe.Field, fe.Message))
		}
		if len(err.FieldErrors) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(err.FieldErrors)-maxItemsToShow))
		}
	}
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Calls:    %d\n", err.Calls))
	sb.WriteString(fmt.Sprintf("Cost:     %s", formatCents(err.CostCents)))

	p.printBox("❌ GENERATION FAILED", sb.String())
}

// PrintOutcome outputs the result of processing one unit.
func (p *Printer) PrintOutcome(outcome *types.UnitOutcome) {
	if outcome == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Unit:     %s\n", outcome.Unit))
	sb.WriteString(fmt.Sprintf("Status:   %s\n", outcome.Status))
	if outcome.Truncated {
		sb.WriteString("Output was cut off at the token limit\n")
	}

	if len(outcome.Repairs) > 0 {
		sb.WriteString("\nRepairs:\n")
		for _, step := range outcome.Repairs {
			sb.WriteString(fmt.Sprintf("  • %s\n", step))
		}
	}

	if len(outcome.Fixes) > 0 {
		sb.WriteString("\nFixes:\n")
		count := min(len(outcome.Fixes), maxItemsToShow)
		for i := 0; i < count; i++ {
			fix := outcome.Fixes[i]
			sb.WriteString(fmt.Sprintf("  • %s %s %d → %d\n", fix.Field, fix.Kind, fix.From, fix.To))
		}
		if len(outcome.Fixes) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(outcome.Fixes)-maxItemsToShow))
		}
	}

	if outcome.Failure != nil {
		sb.WriteString(fmt.Sprintf("\nReason:   %s\n", outcome.Failure.Reason))
		sb.WriteString(fmt.Sprintf("Message:  %s\n", outcome.Failure.Message))
		for i, fe := range outcome.Failure.FieldErrors {
			if i == maxItemsToShow {
				sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(outcome.Failure.FieldErrors)-maxItemsToShow))
				break
			}
			sb.WriteString(fmt.Sprintf("  ⚠ %s: %s\n", fe.Field, fe.Message))
		}
	}

	p.printBox("UNIT OUTCOME", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintProgress outputs one pipeline progress event on a single line.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintProgress(event pipeline.ProgressEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if event.Unit != "" {
		fmt.Fprintf(p.out, "[%s] %s %s: %s\n", event.Step, event.Unit, event.State, event.Message)
		return
	}
	fmt.Fprintf(p.out, "[%s] %s: %s\n", event.Step, event.State, event.Message)
}

func formatCents(cents int64) string {
	return fmt.Sprintf("$%d.%02d", cents/100, cents%100)
}

func contains(units []types.UnitType, u types.UnitType) bool {
	for _, x := range units {
		if x == u {
			return true
		}
	}
	return false
}
