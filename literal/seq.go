// Package literal analyzes pattern text for the trie index.
//
// It answers two questions about a pattern:
//   - which characters does it start with, before any regex syntax kicks in
//     (the literal prefix, see Split), used as the trie key;
//   - which literal strings must appear somewhere in every match
//     (the required set, see Analyze), used to reject candidates cheaply.
//
// Key concepts:
//   - A Prefix is the run of literal symbols at the start of a pattern,
//     remembering which of them were written with a backslash escape
//   - A Literal is a concrete byte sequence
//   - A Seq is a set of alternative literals, at least one of which must
//     occur in the input (e.g., from alternations like /foo|bar/)
package literal

import (
	"bytes"
	"sort"
)

// Literal is a concrete byte sequence extracted from a pattern.
//
// Example:
//
//	lit := literal.NewLiteral([]byte("hello"))
//	fmt.Println(lit.Len()) // Output: 5
type Literal struct {
	// Bytes contains the literal byte sequence, UTF-8 encoded.
	Bytes []byte
}

// NewLiteral creates a new Literal from the given byte sequence.
func NewLiteral(b []byte) Literal {
	return Literal{Bytes: b}
}

// Len returns the length of the literal in bytes.
func (l Literal) Len() int {
	return len(l.Bytes)
}

// String returns a string representation of the literal for debugging purposes.
// Format: "literal{bytes}"
func (l Literal) String() string {
	return "literal{" + string(l.Bytes) + "}"
}

// Seq is a set of alternative literals. A Seq extracted by Analyze reads as
// "every match contains at least one of these".
//
// Example:
//
//	seq := literal.NewSeq(
//	    literal.NewLiteral([]byte("foo")),
//	    literal.NewLiteral([]byte("bar")),
//	)
//	fmt.Printf("Sequence has %d literals\n", seq.Len()) // Output: Sequence has 2 literals
type Seq struct {
	literals []Literal
}

// NewSeq creates a new sequence from the given literals.
//
// Example:
//
//	seq := literal.NewSeq()
//	fmt.Println(seq.IsEmpty()) // Output: true
func NewSeq(lits ...Literal) *Seq {
	return &Seq{literals: lits}
}

// Len returns the number of literals in the sequence.
func (s *Seq) Len() int {
	if s == nil {
		return 0
	}
	return len(s.literals)
}

// Get returns the literal at the specified index.
// Panics if index is out of bounds.
func (s *Seq) Get(i int) Literal {
	return s.literals[i]
}

// IsEmpty returns true if the sequence has no literals.
// A nil Seq is empty.
func (s *Seq) IsEmpty() bool {
	return s.Len() == 0
}

// Union appends every literal of other to s.
// Duplicates are kept until Minimize is called.
func (s *Seq) Union(other *Seq) {
	if other == nil {
		return
	}
	s.literals = append(s.literals, other.literals...)
}

// MinLen returns the length of the shortest literal, or 0 for an empty Seq.
//
// The shortest literal bounds how selective the whole set is: a set
// containing "a" rejects far fewer inputs than one whose shortest member is
// "https://".
func (s *Seq) MinLen() int {
	if s.IsEmpty() {
		return 0
	}
	m := s.literals[0].Len()
	for _, lit := range s.literals[1:] {
		if lit.Len() < m {
			m = lit.Len()
		}
	}
	return m
}

// Minimize removes redundant literals for substring containment.
//
// If literal A occurs inside literal B, any input containing B also contains
// A, so B adds nothing to "contains at least one of". Exact duplicates are
// collapsed. The result is sorted by length, then bytes.
//
// Example:
//
//	seq := literal.NewSeq(
//	    literal.NewLiteral([]byte("xfooy")),
//	    literal.NewLiteral([]byte("foo")),
//	)
//	seq.Minimize()
//	// seq = ["foo"]
func (s *Seq) Minimize() {
	if s.Len() <= 1 {
		return
	}

	sort.Slice(s.literals, func(i, j int) bool {
		a, b := s.literals[i].Bytes, s.literals[j].Bytes
		if len(a) != len(b) {
			return len(a) < len(b)
		}
		return bytes.Compare(a, b) < 0
	})

	kept := s.literals[:0]
	for _, lit := range s.literals {
		redundant := false
		for _, k := range kept {
			if bytes.Contains(lit.Bytes, k.Bytes) {
				redundant = true
				break
			}
		}
		if !redundant {
			kept = append(kept, lit)
		}
	}
	s.literals = kept
}

// Strings returns the literals as strings, in Seq order.
func (s *Seq) Strings() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.literals))
	for i, lit := range s.literals {
		out[i] = string(lit.Bytes)
	}
	return out
}
