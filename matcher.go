package regextrie

import (
	"sync"

	"github.com/coregx/coregex"
	"github.com/coregx/coregex/meta"
)

// matcher runs the automaton of one compiled pattern.
//
// A coregex.Regexp keeps search state between calls, so one instance serves
// one query at a time. The primary instance is taken with TryLock; a query
// that finds it busy uses a spare instance from the pool, compiled on first
// need. Uncontended queries never compile twice.
type matcher struct {
	mu sync.Mutex
	re *coregex.Regexp

	pattern string
	config  meta.Config
	spares  sync.Pool // *coregex.Regexp
}

// compileLongest compiles pattern with leftmost-longest semantics: if any
// match of the pattern spans the whole input, the reported one does.
func compileLongest(pattern string, config meta.Config) (*coregex.Regexp, error) {
	re, err := coregex.CompileWithConfig(pattern, config)
	if err != nil {
		return nil, err
	}
	re.Longest()
	return re, nil
}

func newMatcher(pattern string, config meta.Config) (*matcher, error) {
	re, err := compileLongest(pattern, config)
	if err != nil {
		return nil, err
	}
	return &matcher{re: re, pattern: pattern, config: config}, nil
}

// fullMatch reports whether the pattern matches all of input.
func (m *matcher) fullMatch(input string) bool {
	if !m.mu.TryLock() {
		if re := m.spare(); re != nil {
			defer m.spares.Put(re)
			return spans(re.FindStringIndex(input), input)
		}
		m.mu.Lock()
	}
	defer m.mu.Unlock()
	return spans(m.re.FindStringIndex(input), input)
}

// spare returns an instance for exclusive use, or nil if none could be
// built, in which case the caller waits for the primary one.
func (m *matcher) spare() *coregex.Regexp {
	if re, ok := m.spares.Get().(*coregex.Regexp); ok {
		return re
	}
	re, err := compileLongest(m.pattern, m.config)
	if err != nil {
		return nil
	}
	return re
}

func spans(loc []int, input string) bool {
	return loc != nil && loc[0] == 0 && loc[1] == len(input)
}
