// Package prefilter rejects trie candidates before the regex engine runs.
//
// Every compiled pattern may carry a set of required literals (see
// literal.Analyze): at least one of them occurs in any string the pattern
// matches. If none occurs in the input, the pattern cannot match it and its
// automaton is never evaluated.
//
// The builder selects a strategy from the literal set:
//   - Single byte → MemchrPrefilter (byte search)
//   - Single substring → MemmemPrefilter (substring search)
//   - Several single bytes → ByteSetPrefilter (byte table)
//   - Several literals → AhoCorasickPrefilter (one pass over the input)
//   - No literals → nil (no prefilter)
//
// Example usage:
//
//	a, _ := literal.Analyze(".*(test|toto).*", 64)
//	pf, err := prefilter.NewBuilder(a.Required).Build()
//	if err != nil {
//	    return err
//	}
//	if pf != nil && !pf.IsMatch([]byte("hello world")) {
//	    // skip the automaton
//	}
package prefilter

import (
	"bytes"
	"strings"

	"github.com/coregx/ahocorasick"

	"github.com/axelberardino/regextrie/literal"
)

// Prefilter decides whether an input may contain a match.
//
// A Prefilter is immutable after Build and safe for concurrent use.
type Prefilter interface {
	// IsMatch reports whether haystack contains at least one of the
	// prefilter literals. A false result proves the pattern cannot match;
	// a true result means the regex engine must still verify.
	IsMatch(haystack []byte) bool

	// Len returns the number of literals the prefilter looks for.
	Len() int

	// String describes the strategy, for logs and debugging.
	String() string
}

// Builder constructs the prefilter for one literal set.
//
// Example:
//
//	builder := prefilter.NewBuilder(required)
//	pf, err := builder.Build()
type Builder struct {
	literals *literal.Seq
}

// NewBuilder creates a new prefilter builder. literals may be nil, meaning
// the pattern has no known required literal.
func NewBuilder(literals *literal.Seq) *Builder {
	return &Builder{literals: literals}
}

// Build constructs the best prefilter for the literal set.
// Returns (nil, nil) when there is nothing to filter on.
func (b *Builder) Build() (Prefilter, error) {
	seq := b.literals
	if seq.IsEmpty() || seq.MinLen() == 0 {
		return nil, nil
	}

	if seq.Len() == 1 {
		lit := seq.Get(0).Bytes
		if len(lit) == 1 {
			return newMemchrPrefilter(lit[0]), nil
		}
		return newMemmemPrefilter(lit), nil
	}

	if isByteSet(seq) {
		return newByteSetPrefilter(seq), nil
	}

	return newAhoCorasickPrefilter(seq)
}

// MemchrPrefilter looks for a single byte.
type MemchrPrefilter struct {
	needle byte
}

func newMemchrPrefilter(needle byte) *MemchrPrefilter {
	return &MemchrPrefilter{needle: needle}
}

// IsMatch implements Prefilter.
func (p *MemchrPrefilter) IsMatch(haystack []byte) bool {
	return bytes.IndexByte(haystack, p.needle) >= 0
}

// Len implements Prefilter.
func (p *MemchrPrefilter) Len() int { return 1 }

// String implements Prefilter.
func (p *MemchrPrefilter) String() string {
	return "memchr{" + string(p.needle) + "}"
}

// MemmemPrefilter looks for a single substring.
type MemmemPrefilter struct {
	needle []byte
}

func newMemmemPrefilter(needle []byte) *MemmemPrefilter {
	return &MemmemPrefilter{needle: needle}
}

// IsMatch implements Prefilter.
func (p *MemmemPrefilter) IsMatch(haystack []byte) bool {
	return bytes.Contains(haystack, p.needle)
}

// Len implements Prefilter.
func (p *MemmemPrefilter) Len() int { return 1 }

// String implements Prefilter.
func (p *MemmemPrefilter) String() string {
	return "memmem{" + string(p.needle) + "}"
}

// AhoCorasickPrefilter looks for any of several literals in one pass.
type AhoCorasickPrefilter struct {
	auto     *ahocorasick.Automaton
	literals []string
}

func newAhoCorasickPrefilter(seq *literal.Seq) (*AhoCorasickPrefilter, error) {
	builder := ahocorasick.NewBuilder()
	for i := 0; i < seq.Len(); i++ {
		builder.AddPattern(seq.Get(i).Bytes)
	}
	auto, err := builder.Build()
	if err != nil {
		return nil, err
	}
	return &AhoCorasickPrefilter{auto: auto, literals: seq.Strings()}, nil
}

// IsMatch implements Prefilter.
func (p *AhoCorasickPrefilter) IsMatch(haystack []byte) bool {
	return p.auto.IsMatch(haystack)
}

// Len implements Prefilter.
func (p *AhoCorasickPrefilter) Len() int { return len(p.literals) }

// String implements Prefilter.
func (p *AhoCorasickPrefilter) String() string {
	return "ahocorasick{" + strings.Join(p.literals, "|") + "}"
}
