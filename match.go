package regextrie

import (
	"slices"
	"unicode/utf8"
)

// searchState holds per-query scratch buffers. It is obtained from the
// trie's pool so concurrent queries never share one.
type searchState struct {
	// candidates collects the table indices met along the walk.
	candidates []uint32

	// text is the walked path spelled in pattern syntax.
	text []byte

	// input is the query as bytes, for prefilters.
	input []byte
}

func (t *RegexTrie) getSearchState() *searchState {
	if st, ok := t.states.Get().(*searchState); ok {
		return st
	}
	return &searchState{}
}

func (t *RegexTrie) putSearchState(st *searchState) {
	t.states.Put(st)
}

// collect walks the trie along input and fills st.candidates with the
// table index of every regex whose literal prefix is a prefix of input,
// sorted by insertion order.
//
// It reports whether input, read literally, is itself one of the inserted
// plain patterns; st.text then holds that pattern and plainScore its score.
//
// Each index is stored on exactly one node and the walk visits a node at
// most once, so candidates never repeat.
func (t *RegexTrie) collect(input string, st *searchState) (plain bool, plainScore int) {
	st.candidates = append(st.candidates[:0], t.nodes[rootID].patterns...)
	st.text = st.text[:0]

	id := rootID
	consumed := true
	for _, r := range input {
		child, ok := t.nodes[id].children[r]
		if !ok {
			consumed = false
			break
		}
		id = child

		n := &t.nodes[id]
		if n.escaped {
			st.text = append(st.text, '\\')
		}
		st.text = utf8.AppendRune(st.text, r)
		st.candidates = append(st.candidates, n.patterns...)
	}

	// Root patterns may be younger than deeper ones.
	slices.Sort(st.candidates)

	if n := &t.nodes[id]; consumed && n.plain {
		return true, n.plainScore
	}
	return false, 0
}

// matchesWhole reports whether the compiled pattern cp matches all of input.
func (t *RegexTrie) matchesWhole(cp *compiledPattern, input string, st *searchState) bool {
	if cp.filter != nil {
		if len(st.input) != len(input) {
			st.input = append(st.input[:0], input...)
		}
		if !cp.filter.IsMatch(st.input) {
			return false
		}
	}

	return cp.m.fullMatch(input)
}

// FindMatches returns every inserted pattern that matches the whole input,
// as originally written.
//
// The plain pattern equal to input, if any, comes first, followed by the
// matching regex patterns in insertion order. Returns nil when nothing
// matches.
//
// Example:
//
//	trie, _ := regextrie.NewFrom([]string{"test[0-9]?", "test[0-9]+", "test[0-9]{2,4}"})
//	trie.FindMatches("test55") // ["test[0-9]+", "test[0-9]{2,4}"]
func (t *RegexTrie) FindMatches(input string) []string {
	st := t.getSearchState()
	defer t.putSearchState(st)
	st.input = st.input[:0]

	var matches []string
	if plain, _ := t.collect(input, st); plain {
		matches = append(matches, string(st.text))
	}

	for _, index := range st.candidates {
		cp := &t.patterns[index]
		if t.matchesWhole(cp, input, st) {
			matches = append(matches, cp.pattern)
		}
	}

	return matches
}

// FindBestMatch returns the matching pattern with the lowest score, and
// false if no pattern matches the whole input.
//
// Ties go to the plain pattern, then to the regex inserted first. With
// DefaultScorer a plain pattern therefore always wins, and otherwise the
// shortest regex does.
//
// Example:
//
//	trie, _ := regextrie.NewFrom([]string{"a.*", "a[0-9]+b.*"})
//	best, _ := trie.FindBestMatch("a123bbb") // "a.*"
func (t *RegexTrie) FindBestMatch(input string) (string, bool) {
	st := t.getSearchState()
	defer t.putSearchState(st)
	st.input = st.input[:0]

	var (
		best      string
		bestScore int
		found     bool
	)

	if plain, score := t.collect(input, st); plain {
		best, bestScore, found = string(st.text), score, true
	}

	for _, index := range st.candidates {
		cp := &t.patterns[index]
		// Only a strictly better score can replace the current best, so
		// skip the automaton when it cannot.
		if found && cp.score >= bestScore {
			continue
		}
		if t.matchesWhole(cp, input, st) {
			best, bestScore, found = cp.pattern, cp.score, true
		}
	}

	return best, found
}
