package regextrie

import "github.com/axelberardino/regextrie/prefilter"

// Stats describes the size of a RegexTrie.
type Stats struct {
	// NumNodes counts trie nodes, root included.
	NumNodes int

	// NumPatterns counts compiled regex patterns.
	NumPatterns int

	// NumPlain counts distinct plain patterns.
	NumPlain int

	// NumPrefiltered counts regex patterns carrying a literal prefilter.
	NumPrefiltered int

	// NumRetired counts prefilters switched off because they stopped
	// rejecting inputs. It grows as queries run.
	NumRetired int

	// NumRootPatterns counts regex patterns with an empty literal prefix.
	// Every query evaluates them.
	NumRootPatterns int
}

// Stats returns size counters for the trie.
func (t *RegexTrie) Stats() Stats {
	s := Stats{
		NumNodes:        len(t.nodes),
		NumPatterns:     len(t.patterns),
		NumRootPatterns: len(t.nodes[rootID].patterns),
	}
	for i := range t.nodes {
		if t.nodes[i].plain {
			s.NumPlain++
		}
	}
	for i := range t.patterns {
		filter := t.patterns[i].filter
		if filter == nil {
			continue
		}
		s.NumPrefiltered++
		if tr, ok := filter.(*prefilter.Tracker); ok && !tr.IsActive() {
			s.NumRetired++
		}
	}
	return s
}

// Len returns the number of compiled regex patterns.
func (t *RegexTrie) Len() int {
	return len(t.patterns)
}

// Patterns returns the compiled regex patterns in insertion order.
func (t *RegexTrie) Patterns() []string {
	out := make([]string, len(t.patterns))
	for i := range t.patterns {
		out[i] = t.patterns[i].pattern
	}
	return out
}
