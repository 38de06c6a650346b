// Package extract recovers JSON objects from free-form model output.
// Extraction looks for the most likely object region in noisy text; when that
// region does not parse, Repair closes the structure left open by truncation.
package extract

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/JonDMorrison/brandsinblooms-platform-sub005/internal/types"
)

// Stage names where in the extraction sequence a candidate was found.
type Stage string

// Extraction stages, in the order they are attempted.
const (
	StageFenced    Stage = "fenced_block"
	StageBraceSpan Stage = "brace_span"
	StageWholeText Stage = "whole_text"
	StageTruncated Stage = "truncation_candidate"
	StageRepaired  Stage = "repaired"
)

const (
	fenceMarker = "```"
	// maxLanguageTagLen bounds what counts as a language identifier after an opening fence
	maxLanguageTagLen = 20
)

// Candidate is an object recovered from model text. Value is nil until the
// text has been parsed successfully.
type Candidate struct {
	Text    string
	Value   map[string]any
	Stage   Stage
	Repairs []types.RepairStep
}

// Parsed reports whether the candidate holds a decoded object.
func (c *Candidate) Parsed() bool {
	return c != nil && c.Value != nil
}

// Extract finds the best candidate object in raw. The first stage whose text
// parses wins. When nothing parses but an object-like region exists, the
// region is returned unparsed so the caller can hand it to Repair.
func Extract(raw string) (*Candidate, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil, ErrNotFound
	}

	var pending *Candidate

	// 1. Fenced blocks. The first fence that is unclosed or holds a brace
	// becomes the region for later stages; fences without one are skipped.
	region := ""
	for _, fence := range fencedBlocks(text) {
		if fence.closed {
			if v, err := parseObject(fence.inner); err == nil {
				return &Candidate{Text: fence.inner, Value: v, Stage: StageFenced}, nil
			}
		}
		if region == "" && (!fence.closed || strings.Contains(fence.inner, "{")) {
			region = fence.inner
		}
	}
	if region != "" {
		text = region
	}

	// 2. First balanced brace span that parses.
	for _, span := range balancedSpans(text) {
		if v, err := parseObject(span); err == nil {
			return &Candidate{Text: span, Value: v, Stage: StageBraceSpan}, nil
		}
		if pending == nil {
			pending = &Candidate{Text: span, Stage: StageBraceSpan}
		}
	}

	// 3. Whole text bracketed as an object.
	if strings.HasPrefix(text, "{") && strings.HasSuffix(text, "}") {
		if v, err := parseObject(text); err == nil {
			return &Candidate{Text: text, Value: v, Stage: StageWholeText}, nil
		}
		if pending == nil {
			pending = &Candidate{Text: text, Stage: StageWholeText}
		}
	}

	// 4. Opened but never closed: a truncation candidate for the repairer.
	if start := strings.Index(text, "{"); start >= 0 {
		region := text[start:]
		if !strings.HasSuffix(region, "}") {
			return &Candidate{Text: region, Stage: StageTruncated}, nil
		}
	}

	if pending != nil {
		return pending, nil
	}
	return nil, ErrNotFound
}

// Parse runs Extract and, when the candidate does not parse directly, Repair.
func Parse(raw string) (*Candidate, error) {
	candidate, err := Extract(raw)
	if err != nil {
		return nil, err
	}
	if candidate.Parsed() {
		return candidate, nil
	}
	return Repair(candidate.Text)
}

type fence struct {
	inner  string
	closed bool
}

// fencedBlocks returns the interior of every markdown code fence in text, in
// order. Only the last fence can be unclosed.
func fencedBlocks(text string) []fence {
	var fences []fence
	for {
		open := strings.Index(text, fenceMarker)
		if open < 0 {
			return fences
		}

		rest := text[open+len(fenceMarker):]
		// Skip potential language identifier on first line
		if idx := strings.Index(rest, "\n"); idx >= 0 {
			firstLine := strings.TrimSpace(rest[:idx])
			if len(firstLine) < maxLanguageTagLen && !strings.Contains(firstLine, " ") && !strings.Contains(firstLine, "{") {
				rest = rest[idx+1:]
			}
		}

		end := strings.Index(rest, fenceMarker)
		if end < 0 {
			return append(fences, fence{inner: strings.TrimSpace(rest)})
		}
		fences = append(fences, fence{inner: strings.TrimSpace(rest[:end]), closed: true})
		text = rest[end+len(fenceMarker):]
	}
}

// balancedSpans returns every complete top-level {...} span in text, in order.
// Quotes are only tracked inside a span so prose before an object cannot
// desynchronize the scan.
func balancedSpans(text string) []string {
	var spans []string
	depth, start := 0, -1
	inString, escaped := false, false

	for i := 0; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			if depth > 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth > 0 {
				depth--
				if depth == 0 {
					spans = append(spans, text[start:i+1])
				}
			}
		}
	}
	return spans
}

// parseObject decodes text as a JSON object.
func parseObject(text string) (map[string]any, error) {
	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return nil, err
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("top-level JSON value is %T, not an object", v)
	}
	return obj, nil
}
