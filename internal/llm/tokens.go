package llm

import (
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

// tokenEncoding approximates Gemini tokenization; providers report exact
// counts, so this only backs responses without usage metadata.
const tokenEncoding = "cl100k_base"

var (
	encOnce sync.Once
	enc     *tiktoken.Tiktoken
)

// EstimateTokens returns an approximate token count for text. It uses a
// tiktoken encoding when one can be loaded and a rune-based heuristic otherwise.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	encOnce.Do(func() {
		if e, err := tiktoken.GetEncoding(tokenEncoding); err == nil {
			enc = e
		}
	})
	if enc != nil {
		return len(enc.Encode(text, nil, nil))
	}
	return heuristicTokens(text)
}

// heuristicTokens assumes about four runes per token, rounding up.
func heuristicTokens(text string) int {
	n := utf8.RuneCountInString(text)
	return (n + 3) / 4
}
