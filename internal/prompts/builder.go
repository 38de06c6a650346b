package prompts

import (
	"strings"

	"github.com/JonDMorrison/brandsinblooms-platform-sub005/internal/schemas"
	"github.com/JonDMorrison/brandsinblooms-platform-sub005/internal/types"
)

const (
	// FoundationExcerptBudget is the prior-site excerpt length, in runes, kept for the Foundation prompt.
	FoundationExcerptBudget = 4000
	// SectionExcerptBudget is the prior-site excerpt length, in runes, kept for section prompts.
	SectionExcerptBudget = 1500

	// TruncationMarker is appended to an excerpt that was cut to its budget.
	TruncationMarker = "... [truncated]"
)

// Prompt is the system and user text for one generation call.
type Prompt struct {
	System string
	User   string
}

// ExcerptBudget returns the prior-site excerpt budget for a unit type.
func ExcerptBudget(unit types.UnitType) int {
	if unit == types.UnitFoundation {
		return FoundationExcerptBudget
	}
	return SectionExcerptBudget
}

// TruncateExcerpt cuts text to budget runes and appends TruncationMarker when
// anything was removed.
func TruncateExcerpt(text string, budget int) string {
	runes := []rune(text)
	if len(runes) <= budget {
		return text
	}
	return string(runes[:budget]) + TruncationMarker
}

// Build returns the prompt for one unit. theme is ignored for Foundation;
// section prompts embed it so every section matches Foundation's output.
// When theme is nil for a section, the request's theme is used if present.
func Build(unit types.UnitType, req *types.GenerationRequest, theme *types.Theme) Prompt {
	return Prompt{
		System: buildSystem(unit),
		User:   buildUser(unit, req, theme),
	}
}

func buildSystem(unit types.UnitType) string {
	schemaText := "{}"
	if s, err := schemas.For(unit); err == nil {
		schemaText = s.JSONSchemaText()
	}

	return Format(SystemTemplate(unit), map[string]string{
		"Unit":   unit.String(),
		"Schema": schemaText,
	})
}

// buildUser writes caller-supplied fields directly rather than through Format
// so that placeholder-like text in a business description is never expanded.
func buildUser(unit types.UnitType, req *types.GenerationRequest, theme *types.Theme) string {
	var sb strings.Builder

	sb.WriteString("Business profile\n")
	writeField(&sb, "Name", req.BusinessName)
	writeField(&sb, "Industry", req.Industry)
	writeField(&sb, "Location", req.Location)
	writeField(&sb, "Description", req.Description)

	c := req.Contact
	if c.Email != "" || c.Phone != "" || c.Address != "" || c.Website != "" || c.Hours != "" {
		sb.WriteString("\nContact details\n")
		writeField(&sb, "Email", c.Email)
		writeField(&sb, "Phone", c.Phone)
		writeField(&sb, "Address", c.Address)
		writeField(&sb, "Website", c.Website)
		writeField(&sb, "Hours", c.Hours)
	}

	if unit == types.UnitFoundation {
		if req.Theme != nil {
			sb.WriteString("\n")
			sb.WriteString(mustTemplate(KeyKeepTheme))
			sb.WriteString("\n")
			writeTheme(&sb, req.Theme)
		}
	} else {
		if theme == nil {
			theme = req.Theme
		}
		if theme != nil {
			sb.WriteString("\nSite theme\n")
			writeTheme(&sb, theme)
		}
	}

	if excerpt := strings.TrimSpace(req.PriorSiteExcerpt); excerpt != "" {
		sb.WriteString("\nText from the business's current website")
		if req.PriorSiteURL != "" {
			sb.WriteString(" (")
			sb.WriteString(req.PriorSiteURL)
			sb.WriteString(")")
		}
		sb.WriteString(":\n")
		sb.WriteString(TruncateExcerpt(excerpt, ExcerptBudget(unit)))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(Instruction(unit))
	return sb.String()
}

func writeField(sb *strings.Builder, label, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	sb.WriteString("- ")
	sb.WriteString(label)
	sb.WriteString(": ")
	sb.WriteString(value)
	sb.WriteString("\n")
}

func writeTheme(sb *strings.Builder, theme *types.Theme) {
	writeField(sb, "Primary color", theme.Colors.Primary)
	writeField(sb, "Secondary color", theme.Colors.Secondary)
	writeField(sb, "Accent color", theme.Colors.Accent)
	writeField(sb, "Heading font", theme.Fonts.Heading)
	writeField(sb, "Body font", theme.Fonts.Body)
}
