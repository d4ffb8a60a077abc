// Package regextrie tests one input string against a large pool of regular
// expressions without running every one of them.
//
// Patterns are indexed in a trie by their literal prefix: the characters
// they start with before any regex syntax. A query walks the trie along the
// input, and only patterns whose literal prefix is a prefix of the input
// (the candidates) are evaluated by the regex engine. Evaluation cost is
// bounded by the number of patterns sharing the input's prefix, not by the
// size of the pool.
//
// Basic usage:
//
//	trie := regextrie.New()
//	if err := trie.InsertMany(
//	    "https://www.google.com/.*",
//	    "https://www.google.com/.*/toto/.*",
//	); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Every pattern matching the whole input
//	matches := trie.FindMatches("https://www.google.com/test/toto/")
//
//	// The single best one according to the scorer
//	best, ok := trie.FindBestMatch("https://www.google.com/test/toto/")
//
// A pattern is a regex as soon as it contains one of the unescaped
// meta-characters . ? * + ( ) [ ] { } and is compiled by
// github.com/coregx/coregex (Go regexp syntax). Any other pattern is a plain
// string matched literally; a backslash in front of a meta-character makes
// it literal, so `\[` matches "[".
//
// Matches are anchored: a pattern matches an input only if one of its
// matches spans the whole input.
//
// A RegexTrie is built by a single goroutine and is read-only afterwards:
// once insertion is done, FindMatches and FindBestMatch may be called
// concurrently. Each compiled pattern hands its automaton to one query at a
// time and compiles spare copies for concurrent ones. Mixing Insert with
// queries requires external locking.
package regextrie

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/axelberardino/regextrie/internal/conv"
	"github.com/axelberardino/regextrie/literal"
	"github.com/axelberardino/regextrie/prefilter"
)

// rootID is the arena index of the trie root.
const rootID uint32 = 0

// node is one literal character position of the trie, stored in the arena.
type node struct {
	// children maps the next character to its node ID.
	children map[rune]uint32

	// patterns holds the table index of every regex whose literal prefix
	// ends at this node, in insertion order.
	patterns []uint32

	// plain is set when a plain pattern ends at this node.
	plain bool

	// plainScore is the cached score of that plain pattern.
	plainScore int

	// escaped is set when the edge into this node is an escaped
	// meta-character.
	escaped bool
}

// compiledPattern is one entry of the compiled-pattern table.
type compiledPattern struct {
	pattern string
	m       *matcher
	score   int
	filter  prefilter.Prefilter // nil: always run the matcher
}

// RegexTrie indexes regex and plain patterns by literal prefix.
//
// The zero value is not usable; create one with New, NewWithScorer,
// NewWithConfig or NewFrom.
type RegexTrie struct {
	nodes    []node
	patterns []compiledPattern
	indices  map[string]uint32 // regex text → table index

	config Config
	scorer Scorer
	logger *slog.Logger

	states sync.Pool // *searchState
}

// New creates an empty RegexTrie with the default configuration.
//
// Example:
//
//	trie := regextrie.New()
//	_ = trie.Insert("hello.*")
func New() *RegexTrie {
	return newTrie(DefaultConfig())
}

// NewWithScorer creates an empty RegexTrie ranking matches with scorer.
//
// Example:
//
//	trie := regextrie.NewWithScorer(regextrie.LengthScorer)
func NewWithScorer(scorer Scorer) *RegexTrie {
	config := DefaultConfig()
	config.Scorer = scorer
	return newTrie(config)
}

// NewWithConfig creates an empty RegexTrie with a custom configuration.
// Returns a *ConfigError if the configuration is invalid.
//
// Example:
//
//	config := regextrie.DefaultConfig()
//	config.Engine.MaxDFAStates = 50000
//	trie, err := regextrie.NewWithConfig(config)
func NewWithConfig(config Config) (*RegexTrie, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return newTrie(config), nil
}

// NewFrom creates a RegexTrie with the default configuration and inserts
// every pattern, as InsertMany does.
//
// The returned trie is never nil: patterns that failed to compile are
// reported in the error and left out, all others are indexed.
func NewFrom(patterns []string) (*RegexTrie, error) {
	trie := New()
	return trie, trie.InsertMany(patterns...)
}

// NewFromWithScorer is NewFrom with a custom scorer.
func NewFromWithScorer(patterns []string, scorer Scorer) (*RegexTrie, error) {
	trie := NewWithScorer(scorer)
	return trie, trie.InsertMany(patterns...)
}

func newTrie(config Config) *RegexTrie {
	if config.Scorer == nil {
		config.Scorer = DefaultScorer
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &RegexTrie{
		nodes:   []node{{}},
		indices: make(map[string]uint32),
		config:  config,
		scorer: config.Scorer,
		logger: logger,
	}
}

// Insert indexes one pattern.
//
// A regex pattern is compiled once, here. If compilation fails Insert
// returns a *PatternError and the trie is left exactly as it was: the
// pattern is simply absent. Inserting a pattern already present is a
// no-op.
//
// Example:
//
//	if err := trie.Insert(`something[0-9]+`); err != nil {
//	    log.Printf("skipping: %v", err)
//	}
func (t *RegexTrie) Insert(pattern string) error {
	prefix := literal.Split(pattern)

	if !prefix.IsRegex {
		id := t.descend(prefix)
		if n := &t.nodes[id]; !n.plain {
			n.plain = true
			n.plainScore = t.scorer(pattern, false)
		}
		t.logger.Debug("plain pattern indexed", "pattern", pattern)
		return nil
	}

	if _, ok := t.indices[pattern]; ok {
		t.logger.Debug("duplicate pattern ignored", "pattern", pattern)
		return nil
	}

	cp, prefix, err := t.compile(pattern, prefix)
	if err != nil {
		t.logger.Debug("pattern rejected", "pattern", pattern, "error", err)
		return err
	}

	// Nothing is mutated before this point, so a failed compile leaves no
	// trace in the trie.
	index := conv.Index(len(t.patterns))
	t.patterns = append(t.patterns, cp)
	t.indices[pattern] = index
	id := t.descend(prefix)
	t.nodes[id].patterns = append(t.nodes[id].patterns, index)

	t.logger.Debug("regex pattern indexed",
		"pattern", pattern,
		"index", index,
		"prefix", prefix.String(),
		"score", cp.score,
		"prefilter", cp.filter,
	)
	return nil
}

// InsertMany inserts every pattern in order.
//
// Insertion is best-effort: a pattern that fails to compile does not stop
// the ones after it. The returned error joins every *PatternError (see
// errors.Join), or is nil if all patterns were indexed.
func (t *RegexTrie) InsertMany(patterns ...string) error {
	var errs []error
	for _, pattern := range patterns {
		if err := t.Insert(pattern); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// compile builds the table entry for a regex pattern and returns the trie
// key to store it under.
func (t *RegexTrie) compile(pattern string, prefix literal.Prefix) (compiledPattern, literal.Prefix, error) {
	m, err := newMatcher(pattern, t.config.Engine)
	if err != nil {
		return compiledPattern{}, prefix, &PatternError{Pattern: pattern, Err: err}
	}

	analysis, err := literal.Analyze(pattern, t.config.MaxLiterals)
	if err != nil {
		return compiledPattern{}, prefix, &PatternError{Pattern: pattern, Err: err}
	}

	cp := compiledPattern{
		pattern: pattern,
		m:       m,
		score:   t.scorer(pattern, true),
	}

	if t.config.EnablePrefilter {
		pf, err := prefilter.NewBuilder(analysis.Required).Build()
		switch {
		case err != nil:
			t.logger.Debug("prefilter disabled for pattern", "pattern", pattern, "error", err)
		case pf != nil:
			// Retired automatically if it stops rejecting candidates.
			cp.filter = prefilter.NewTracker(pf)
		}
	}

	return cp, prefix.Clamp(analysis.Prefix), nil
}

// descend walks the trie along prefix, creating missing nodes, and returns
// the ID of the last node.
func (t *RegexTrie) descend(prefix literal.Prefix) uint32 {
	id := rootID
	for _, sym := range prefix.Symbols {
		child, ok := t.nodes[id].children[sym.Rune]
		if !ok {
			child = conv.Index(len(t.nodes))
			t.nodes = append(t.nodes, node{escaped: sym.Escaped})
			if t.nodes[id].children == nil {
				t.nodes[id].children = make(map[rune]uint32)
			}
			t.nodes[id].children[sym.Rune] = child
		}
		id = child
	}
	return id
}
