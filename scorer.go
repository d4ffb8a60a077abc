package regextrie

import (
	"net/url"
	"strings"
)

// Scorer assigns a priority to a pattern; lower scores win in
// FindBestMatch. isRegex is false for plain patterns, which contain no
// unescaped regex meta-character.
//
// A Scorer is called exactly once per inserted pattern and its result is
// cached, so it must be a pure function of its arguments.
type Scorer func(pattern string, isRegex bool) int

// DefaultScorer scores regex patterns by their length in bytes and plain
// patterns 0, so an exact plain match always wins and shorter regexes
// beat longer ones.
func DefaultScorer(pattern string, isRegex bool) int {
	if isRegex {
		return len(pattern)
	}
	return 0
}

// LengthScorer scores every pattern by its length in bytes, plain or not.
func LengthScorer(pattern string, _ bool) int {
	return len(pattern)
}

// URLPathScorer scores a pattern by the number of path segments it has once
// read as an absolute URL, so "https://x.com/a/.*" (2) beats
// "https://x.com/.*/b/.*" (3). Backslashes are dropped before parsing, so
// `https://x\.com/a` reads as a URL too. Patterns that are not absolute URLs
// score their length.
func URLPathScorer(pattern string, _ bool) int {
	u, err := url.Parse(strings.ReplaceAll(pattern, `\`, ""))
	if err != nil || u.Scheme == "" || u.Opaque != "" {
		return len(pattern)
	}
	return len(strings.Split(strings.TrimPrefix(u.Path, "/"), "/"))
}
