package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/JonDMorrison/brandsinblooms-platform-sub005/internal/types"
)

// jsonNumber matches a complete JSON number literal.
var jsonNumber = regexp.MustCompile(`^-?(0|[1-9][0-9]*)(\.[0-9]+)?([eE][+-]?[0-9]+)?$`)

type memberState int

const (
	stateOpened memberState = iota // just after '{' or '['
	stateKey                       // inside an object key
	stateAfterKey                  // key closed, ':' not seen yet
	stateAfterColon                // ':' seen, value not started
	stateValue                     // inside a scalar value
	stateAfterValue                // value complete
	stateAfterComma                // ',' seen, next member not started
)

type frame struct {
	open        byte
	memberStart int // index of the opening bracket or of the last ','
	state       memberState
}

// scanResult describes where a scan of truncated text stopped.
type scanResult struct {
	stack     []frame
	inString  bool
	escapeAt  int // start of an incomplete escape sequence at end of text, or -1
	literal   string
	inLiteral bool
}

// Repair applies the ordered structural repairs to text and parses the result.
// Parsing is attempted after quote balancing, dangling field removal, and
// bracket closing combined, and once more after trailing comma removal.
func Repair(text string) (*Candidate, error) {
	fixed, steps := repairStructure(text)
	if v, err := parseObject(fixed); err == nil {
		return &Candidate{Text: fixed, Value: v, Stage: StageRepaired, Repairs: steps}, nil
	}

	cleaned := removeTrailingCommas(fixed)
	if cleaned != fixed {
		steps = append(steps, types.RepairTrailingCommas)
	}
	v, err := parseObject(cleaned)
	if err != nil {
		return nil, &ParseError{
			Stage:   StageRepaired,
			Message: "repair sequence exhausted",
			Cause:   fmt.Errorf("%w: %w", ErrUnrecoverable, err),
		}
	}
	return &Candidate{Text: cleaned, Value: v, Stage: StageRepaired, Repairs: steps}, nil
}

// RepairText applies every repair step to text without parsing it.
// The result is a fixed point: RepairText on its own output changes nothing.
func RepairText(text string) (string, []types.RepairStep) {
	fixed, steps := repairStructure(text)
	cleaned := removeTrailingCommas(fixed)
	if cleaned != fixed {
		steps = append(steps, types.RepairTrailingCommas)
	}
	return cleaned, steps
}

// repairStructure runs quote balancing, dangling field removal and bracket closing.
func repairStructure(text string) (string, []types.RepairStep) {
	var steps []types.RepairStep
	scan := scanStructure(text)
	out := text

	// 1. Quote balancing
	if scan.inString {
		if scan.escapeAt >= 0 {
			out = out[:scan.escapeAt]
		}
		out += `"`
		steps = append(steps, types.RepairQuoteBalancing)
	}

	// 2. Dangling field removal
	if len(scan.stack) > 0 {
		top := scan.stack[len(scan.stack)-1]
		if isDangling(top, scan) {
			if out[top.memberStart] == ',' {
				out = out[:top.memberStart]
			} else {
				out = out[:top.memberStart+1]
			}
			out = strings.TrimRight(out, " \t\r\n")
			steps = append(steps, types.RepairDanglingField)
		}
	}

	// 3. Bracket/brace closing
	if len(scan.stack) > 0 {
		var closers strings.Builder
		for i := len(scan.stack) - 1; i >= 0; i-- {
			if scan.stack[i].open == '[' {
				closers.WriteByte(']')
			} else {
				closers.WriteByte('}')
			}
		}
		out += closers.String()
		steps = append(steps, types.RepairBracketClosing)
	}

	return out, steps
}

// isDangling reports whether the last member of the innermost open container
// was cut off before it became a complete field.
func isDangling(top frame, scan scanResult) bool {
	if scan.inString {
		// A partial string is kept only as an array element.
		return top.open == '{'
	}
	if scan.inLiteral && !isCompleteLiteral(scan.literal) {
		return true
	}
	if top.open == '{' {
		return top.state == stateAfterKey || top.state == stateAfterColon
	}
	return false
}

// scanStructure walks text tracking open containers, string state, and the
// position of the member currently being written in the innermost container.
func scanStructure(text string) scanResult {
	res := scanResult{escapeAt: -1}
	escaped := false
	unicodeLeft := 0
	escapeStart := -1
	literalStart := -1

	endLiteral := func() {
		if literalStart >= 0 {
			literalStart = -1
			res.inLiteral = false
			res.literal = ""
		}
	}

	for i := 0; i < len(text); i++ {
		c := text[i]

		if res.inString {
			switch {
			case unicodeLeft > 0:
				unicodeLeft--
				if unicodeLeft == 0 {
					escapeStart = -1
				}
			case escaped:
				escaped = false
				if c == 'u' {
					unicodeLeft = 4
				} else {
					escapeStart = -1
				}
			case c == '\\':
				escaped = true
				escapeStart = i
			case c == '"':
				res.inString = false
				if n := len(res.stack); n > 0 {
					top := &res.stack[n-1]
					if top.state == stateKey {
						top.state = stateAfterKey
					} else {
						top.state = stateAfterValue
					}
				}
			}
			continue
		}

		if literalStart >= 0 {
			if isLiteralByte(c) {
				res.literal = text[literalStart : i+1]
				continue
			}
			endLiteral()
			if n := len(res.stack); n > 0 {
				res.stack[n-1].state = stateAfterValue
			}
		}

		n := len(res.stack)
		switch c {
		case '{', '[':
			if n > 0 {
				res.stack[n-1].state = stateAfterValue
			}
			res.stack = append(res.stack, frame{open: c, memberStart: i, state: stateOpened})
		case '}', ']':
			if n > 0 && matches(res.stack[n-1].open, c) {
				res.stack = res.stack[:n-1]
			}
		case ',':
			if n > 0 {
				res.stack[n-1].memberStart = i
				res.stack[n-1].state = stateAfterComma
			}
		case ':':
			if n > 0 && res.stack[n-1].state == stateAfterKey {
				res.stack[n-1].state = stateAfterColon
			}
		case '"':
			res.inString = true
			if n > 0 {
				top := &res.stack[n-1]
				if top.open == '{' && (top.state == stateOpened || top.state == stateAfterComma) {
					top.state = stateKey
				} else {
					top.state = stateValue
				}
			}
		case ' ', '\t', '\r', '\n':
		default:
			if isLiteralByte(c) && n > 0 {
				literalStart = i
				res.inLiteral = true
				res.literal = text[i : i+1]
				res.stack[n-1].state = stateValue
			}
		}
	}

	if res.inString && (escaped || unicodeLeft > 0) {
		res.escapeAt = escapeStart
	}
	return res
}

// removeTrailingCommas strips any comma that is followed only by whitespace before a closing marker.
func removeTrailingCommas(text string) string {
	var sb strings.Builder
	sb.Grow(len(text))
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
			sb.WriteByte(c)
			continue
		}

		if c == '"' {
			inString = true
		}
		if c == ',' && closesNext(text[i+1:]) {
			continue
		}
		sb.WriteByte(c)
	}
	return sb.String()
}

func closesNext(rest string) bool {
	trimmed := strings.TrimLeft(rest, " \t\r\n")
	return trimmed != "" && (trimmed[0] == '}' || trimmed[0] == ']')
}

func matches(open, closer byte) bool {
	return (open == '{' && closer == '}') || (open == '[' && closer == ']')
}

func isLiteralByte(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || c == '-' || c == '+' || c == '.' || c == 'E'
}

func isCompleteLiteral(lit string) bool {
	switch lit {
	case "true", "false", "null":
		return true
	}
	return jsonNumber.MatchString(lit)
}
