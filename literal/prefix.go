package literal

import (
	"strings"
	"unicode/utf8"
)

// Meta lists the characters that start regex syntax. An unescaped
// occurrence ends the literal prefix of a pattern.
const Meta = ".?*+()[]{}"

// IsMeta reports whether r is one of the Meta characters.
func IsMeta(r rune) bool {
	return r < utf8.RuneSelf && strings.IndexByte(Meta, byte(r)) >= 0
}

// Symbol is one literal character of a prefix.
type Symbol struct {
	// Rune is the character matched in the input.
	Rune rune

	// Escaped is true when the pattern spelled Rune as a backslash escape of
	// a Meta character, e.g. `\[`.
	Escaped bool
}

// Prefix is the literal start of a pattern.
type Prefix struct {
	// Symbols holds the literal characters in pattern order.
	Symbols []Symbol

	// IsRegex is true when the scan stopped on an unescaped Meta character.
	// When false, Symbols spell the whole pattern and the pattern is a plain
	// string.
	IsRegex bool
}

// Split scans pattern left to right and returns its literal prefix.
//
// Scanning rules:
//   - a backslash followed by a Meta character is dropped, and that Meta
//     character becomes an escaped literal symbol;
//   - an unescaped Meta character stops the scan and marks the pattern as a
//     regex;
//   - every other rune, including a backslash not followed by a Meta
//     character, is a literal symbol.
//
// Examples:
//
//	"https://x.com/.*" → "https://x" (regex)
//	`a\[b\]`           → "a[b]" with '[' and ']' escaped (plain)
//	".*"               → "" (regex)
//	""                 → "" (plain)
func Split(pattern string) Prefix {
	var p Prefix
	escapeNext := false

	for i := 0; i < len(pattern); {
		r, size := utf8.DecodeRuneInString(pattern[i:])
		i += size

		if r == '\\' && !escapeNext && i < len(pattern) && IsMeta(rune(pattern[i])) {
			escapeNext = true
			continue
		}

		if IsMeta(r) && !escapeNext {
			p.IsRegex = true
			return p
		}

		p.Symbols = append(p.Symbols, Symbol{Rune: r, Escaped: escapeNext})
		escapeNext = false
	}

	return p
}

// Len returns the number of symbols in the prefix.
func (p Prefix) Len() int {
	return len(p.Symbols)
}

// Text returns the characters the prefix matches, without escapes.
func (p Prefix) Text() string {
	var b strings.Builder
	b.Grow(len(p.Symbols))
	for _, s := range p.Symbols {
		b.WriteRune(s.Rune)
	}
	return b.String()
}

// String returns the prefix as it is spelled in pattern syntax, with a
// backslash in front of every escaped symbol. For a plain pattern this gives
// back the original pattern text.
func (p Prefix) String() string {
	var b strings.Builder
	b.Grow(len(p.Symbols))
	for _, s := range p.Symbols {
		if s.Escaped {
			b.WriteByte('\\')
		}
		b.WriteRune(s.Rune)
	}
	return b.String()
}

// Clamp truncates the prefix to its longest common prefix with guaranteed,
// the text every match of the compiled regex is known to start with.
//
// The scan in Split reads some regex syntax as literal text: class escapes
// like `\d`, anchors like `^`, and a top-level `|` that makes the prefix
// optional. Clamping against the parser's view keeps the trie key a true
// prefix of every match.
func (p Prefix) Clamp(guaranteed string) Prefix {
	n := 0
	for _, r := range guaranteed {
		if n >= len(p.Symbols) || p.Symbols[n].Rune != r {
			break
		}
		n++
	}
	p.Symbols = p.Symbols[:n]
	return p
}
