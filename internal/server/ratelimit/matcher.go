package ratelimit

import "strings"

// MatchRule returns the rule for a request, or nil when none applies.
//
// Patterns use the server mux form "METHOD /path". A {name} segment matches
// any single path segment and a trailing "/" matches everything below it.
// When several rules match, the one with the most literal segments wins.
func MatchRule(method, path string, rules []Rule) *Rule {
	var best *Rule
	bestScore := -1
	for i := range rules {
		score, ok := matchPattern(rules[i].Pattern, method, path)
		if ok && score > bestScore {
			best, bestScore = &rules[i], score
		}
	}
	return best
}

// matchPattern reports whether pattern matches the request and how many
// literal segments it matched.
func matchPattern(pattern, method, path string) (int, bool) {
	pMethod, pPath, ok := strings.Cut(pattern, " ")
	if !ok || pMethod != method {
		return 0, false
	}

	subtree := strings.HasSuffix(pPath, "/") && pPath != "/"
	want := splitPath(pPath)
	got := splitPath(path)
	if (subtree && len(got) <= len(want)) || (!subtree && len(got) != len(want)) {
		return 0, false
	}

	literal := 0
	for i, seg := range want {
		if strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") {
			continue
		}
		if seg != got[i] {
			return 0, false
		}
		literal++
	}
	if !subtree {
		// Exact routes outrank subtrees with the same literals.
		literal++
	}
	return literal, true
}

func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}
