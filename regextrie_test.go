package regextrie

import (
	"bufio"
	"bytes"
	"errors"
	"log/slog"
	"os"
	"regexp"
	"regexp/syntax"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axelberardino/regextrie/literal"
)

// loadPatterns reads a pattern file, skipping blank lines and # comments.
func loadPatterns(t testing.TB, path string) []string {
	t.Helper()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var patterns []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	require.NoError(t, scanner.Err())
	return patterns
}

func mustNewFrom(t *testing.T, patterns ...string) *RegexTrie {
	t.Helper()
	trie, err := NewFrom(patterns)
	require.NoError(t, err, "can't init regex trie")
	return trie
}

func TestBasicPatterns(t *testing.T) {
	patterns := []string{
		"https://www.google.com/.*",
		"https://www.google.com/.*/toto/.*",
	}
	trie := mustNewFrom(t, patterns...)

	assert.ElementsMatch(t, patterns, trie.FindMatches("https://www.google.com/test/toto/"))
}

func TestCharacterClass(t *testing.T) {
	patterns := []string{"test[0-9]+", "test[^a-z]*"}
	trie := mustNewFrom(t, patterns...)

	assert.ElementsMatch(t, patterns, trie.FindMatches("test123"))
	assert.Empty(t, trie.FindMatches("testa123"))
}

func TestDisjunction(t *testing.T) {
	patterns := []string{"test(abc|def)"}
	trie := mustNewFrom(t, patterns...)

	assert.Equal(t, patterns, trie.FindMatches("testabc"))
	assert.Equal(t, patterns, trie.FindMatches("testdef"))
	assert.Empty(t, trie.FindMatches("testxyz"))
}

func TestQuantifiers(t *testing.T) {
	patterns := []string{"test[0-9]?", "test[0-9]+", "test[0-9]{2,4}"}
	trie := mustNewFrom(t, patterns...)

	tests := []struct {
		input string
		want  []string
	}{
		{"test", []string{patterns[0]}},
		{"test5", []string{patterns[0], patterns[1]}},
		{"test55", []string{patterns[1], patterns[2]}},
		{"test55555", []string{patterns[1]}},
		{"tes", nil},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.ElementsMatch(t, tt.want, trie.FindMatches(tt.input))
		})
	}
}

func TestNoRegexMatch(t *testing.T) {
	patterns := []string{"test", "test.*"}
	trie := mustNewFrom(t, patterns...)

	assert.Equal(t, patterns, trie.FindMatches("test"))
	assert.Equal(t, []string{"test.*"}, trie.FindMatches("testing"))
	assert.Empty(t, trie.FindMatches("tes"))
}

func TestBasicEscapedCharacters(t *testing.T) {
	trie := mustNewFrom(t, `\[`)

	assert.Equal(t, []string{`\[`}, trie.FindMatches("["))
	assert.Empty(t, trie.FindMatches(`\[`))
	// Escaped patterns stay plain: nothing was compiled.
	assert.Zero(t, trie.Len())
}

func TestEscapedCharacters(t *testing.T) {
	patterns := []string{`test\[bracket\]`, `\.\*toto`}
	trie := mustNewFrom(t, patterns...)

	assert.Equal(t, []string{patterns[0]}, trie.FindMatches("test[bracket]"))
	assert.Equal(t, []string{patterns[1]}, trie.FindMatches(".*toto"))
	assert.Empty(t, trie.FindMatches("xxtoto"))
}

func TestEscapedPrefixOfRegex(t *testing.T) {
	patterns := []string{`https://www\.google\.com/.*`, `https://www\.google\.com/about`}
	trie := mustNewFrom(t, patterns...)

	assert.Equal(t, patterns, trie.FindMatches("https://www.google.com/about"))
	assert.Equal(t, []string{patterns[0]}, trie.FindMatches("https://www.google.com/maps"))
	// The escaped dot is literal.
	assert.Empty(t, trie.FindMatches("https://wwwxgoogle.com/maps"))
}

func TestShortestMatchPriority(t *testing.T) {
	patterns := []string{"a.*", "a[0-9]+b.*"}
	trie := mustNewFrom(t, patterns...)

	assert.ElementsMatch(t, patterns, trie.FindMatches("a123bbb"))

	best, ok := trie.FindBestMatch("a123bbb")
	require.True(t, ok)
	assert.Equal(t, patterns[0], best)
}

func TestPlainMatchPriorityOverRegex(t *testing.T) {
	patterns := []string{"a.*", "a123bbb"}
	trie := mustNewFrom(t, patterns...)

	assert.ElementsMatch(t, patterns, trie.FindMatches("a123bbb"))

	best, ok := trie.FindBestMatch("a123bbb")
	require.True(t, ok)
	assert.Equal(t, patterns[1], best, "should not match the shortest, but the plain match")
}

func TestCustomMatchPriority(t *testing.T) {
	patterns := []string{"a.*", "a123bbb"}
	trie, err := NewFromWithScorer(patterns, LengthScorer)
	require.NoError(t, err)

	assert.ElementsMatch(t, patterns, trie.FindMatches("a123bbb"))

	best, ok := trie.FindBestMatch("a123bbb")
	require.True(t, ok)
	assert.Equal(t, patterns[0], best, "length only: the shorter regex wins over the plain match")
}

func TestCustomURLPriority(t *testing.T) {
	patterns := []string{
		"https://www.google.com/[a-zA-Z0-9/-]+",
		"https://www.google.com/.*/test/.*",
	}
	trie, err := NewFromWithScorer(patterns, URLPathScorer)
	require.NoError(t, err)

	assert.ElementsMatch(t, patterns, trie.FindMatches("https://www.google.com/foo/test/bar"))

	best, ok := trie.FindBestMatch("https://www.google.com/foo/test/bar")
	require.True(t, ok)
	assert.Equal(t, patterns[0], best, "fewer path segments wins")
}

func TestTieKeepsFirstInserted(t *testing.T) {
	patterns := []string{"a.c", "ab."}
	trie := mustNewFrom(t, patterns...)

	// Both score 3 with the default scorer.
	for i := 0; i < 10; i++ {
		best, ok := trie.FindBestMatch("abc")
		require.True(t, ok)
		assert.Equal(t, "a.c", best)
	}

	// A root pattern inserted later still loses the tie.
	require.NoError(t, trie.Insert(".bc"))
	best, _ := trie.FindBestMatch("abc")
	assert.Equal(t, "a.c", best)
}

func TestInvalidPattern(t *testing.T) {
	trie, err := NewFrom([]string{"https://www.google.com/["})
	require.Error(t, err)
	require.NotNil(t, trie)

	assert.ErrorIs(t, err, ErrPatternCompilation)

	var patErr *PatternError
	require.ErrorAs(t, err, &patErr)
	assert.Equal(t, "https://www.google.com/[", patErr.Pattern)

	var synErr *syntax.Error
	assert.ErrorAs(t, err, &synErr)

	assert.Zero(t, trie.Len())
	assert.Equal(t, Stats{NumNodes: 1}, trie.Stats(), "a rejected pattern leaves no node behind")
	assert.Empty(t, trie.FindMatches("https://www.google.com/["))
}

func TestFailureIsolation(t *testing.T) {
	trie := New()

	err := trie.Insert("a[0-9")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPatternCompilation)

	require.NoError(t, trie.Insert("a[0-9]+"))
	assert.Equal(t, []string{"a[0-9]+"}, trie.FindMatches("a42"))
	assert.Equal(t, []string{"a[0-9]+"}, trie.Patterns())
}

func TestInsertManyBestEffort(t *testing.T) {
	trie := New()
	err := trie.InsertMany("a.*", "b[", "c.*", "d(", "plain")
	require.Error(t, err)

	var patErr *PatternError
	require.ErrorAs(t, err, &patErr)
	assert.Equal(t, "b[", patErr.Pattern, "first failure is reachable")
	assert.Contains(t, err.Error(), "d(")

	assert.Equal(t, []string{"a.*"}, trie.FindMatches("abc"))
	assert.Equal(t, []string{"c.*"}, trie.FindMatches("cde"))
	assert.Equal(t, []string{"plain"}, trie.FindMatches("plain"))
	assert.Equal(t, 2, trie.Len())
}

func TestRootPatterns(t *testing.T) {
	patterns := []string{
		".*",
		".*test",
		"test",
		"test.*",
		".*test.*",
		".*(test).*",
		".*(test|toto).*",
	}
	trie := mustNewFrom(t, patterns...)

	assert.ElementsMatch(t, patterns, trie.FindMatches("test"))
	assert.ElementsMatch(t, []string{".*", ".*test.*", ".*(test).*", ".*(test|toto).*"}, trie.FindMatches("atestb"))
	assert.ElementsMatch(t, []string{".*", ".*(test|toto).*"}, trie.FindMatches("xtotox"))
	assert.Equal(t, []string{".*"}, trie.FindMatches("https://google.com/user/1234"))

	best, ok := trie.FindBestMatch("test")
	require.True(t, ok)
	assert.Equal(t, "test", best)

	best, ok = trie.FindBestMatch("nothing")
	require.True(t, ok)
	assert.Equal(t, ".*", best)
}

func TestEmptyInputAndPattern(t *testing.T) {
	trie := mustNewFrom(t, "", ".*", "a.*")

	assert.Equal(t, []string{"", ".*"}, trie.FindMatches(""))

	best, ok := trie.FindBestMatch("")
	require.True(t, ok)
	assert.Equal(t, "", best)
}

func TestNoMatch(t *testing.T) {
	trie := New()
	assert.Nil(t, trie.FindMatches("anything"))

	best, ok := trie.FindBestMatch("anything")
	assert.False(t, ok)
	assert.Empty(t, best)

	trie = mustNewFrom(t, "hello.*", "world")
	assert.Nil(t, trie.FindMatches("help"))
	_, ok = trie.FindBestMatch("worl")
	assert.False(t, ok)
}

func TestDuplicateInsert(t *testing.T) {
	calls := 0
	trie := NewWithScorer(func(pattern string, isRegex bool) int {
		calls++
		return DefaultScorer(pattern, isRegex)
	})
	require.NoError(t, trie.InsertMany("a.*", "a.*", "abc", "abc", "a.*"))

	assert.Equal(t, []string{"abc", "a.*"}, trie.FindMatches("abc"))
	assert.Equal(t, 1, trie.Len(), "a regex is compiled once")
	assert.Equal(t, []string{"a.*"}, trie.Patterns())
	assert.Equal(t, 1, trie.Stats().NumPlain)
	assert.Equal(t, 2, calls)
}

// TestManySharedPrefixMatches reports each of many matching patterns once,
// in insertion order.
func TestManySharedPrefixMatches(t *testing.T) {
	var patterns []string
	for i := 1; i <= 200; i++ {
		patterns = append(patterns, "item/"+strings.Repeat(".", i%7+1)+".*")
	}
	trie := New()
	require.NoError(t, trie.InsertMany(patterns...))
	require.NoError(t, trie.InsertMany(patterns...))

	got := trie.FindMatches("item/abcdefgh")
	assert.Equal(t, 7, trie.Len())
	assert.Len(t, got, 7)
	assert.Equal(t, trie.Patterns(), got)
}

func TestIdempotentRead(t *testing.T) {
	trie := mustNewFrom(t, "a.*", "a[0-9]+b.*", "a123bbb", ".*b")

	first := trie.FindMatches("a123bbb")
	firstBest, _ := trie.FindBestMatch("a123bbb")
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, trie.FindMatches("a123bbb"))
		best, _ := trie.FindBestMatch("a123bbb")
		assert.Equal(t, firstBest, best)
	}
}

// TestExactAnchor checks a regex pattern is reported exactly when it
// matches the whole input, using the stdlib engine as reference.
func TestExactAnchor(t *testing.T) {
	patterns := []string{
		"a.*",
		"a[0-9]+b.*",
		`\d+`,
		"ab|cd.*",
		"^abc.*",
		"abc.*$",
		"a|ab+",
		"test(abc|def)",
		".*test",
		"(?i)hello.*",
		`https://www\.google\.com/.*`,
		"x{2,3}y",
		`a\w+`,
		"tes[t]",
		"a{0}b",
		"[a-c]+x",
		"(ab|cd)x",
		"[ab]{2}[cd]{2}z",
		"(?i)abc",
	}
	inputs := []string{
		"", "a", "ab", "abb", "cd", "cdx", "abc", "abcd", "55", "a123bbb",
		"testabc", "mytest", "HELLO world", "https://www.google.com/",
		"xxy", "xxxxy", "a_b", "test",
		"b", "bb", "a.b", "x", "abx", "ccx", "abcx", "abcz", "abcdz", "bacdz", "ABC", "aBc",
	}

	for _, enablePrefilter := range []bool{true, false} {
		config := DefaultConfig()
		config.EnablePrefilter = enablePrefilter
		trie, err := NewWithConfig(config)
		require.NoError(t, err)
		require.NoError(t, trie.InsertMany(patterns...))
		require.Equal(t, len(patterns), trie.Len(), "every pattern is a regex")

		for _, input := range inputs {
			got := trie.FindMatches(input)
			for _, pattern := range patterns {
				want := regexp.MustCompile(`^(?:` + pattern + `)$`).MatchString(input)
				assert.Equal(t, want, contains(got, pattern),
					"pattern %q on input %q (prefilter %v)", pattern, input, enablePrefilter)
			}
		}
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// TestPrefilterEquivalence checks prefiltering never changes results.
func TestPrefilterEquivalence(t *testing.T) {
	patterns := loadPatterns(t, "testdata/small_set.txt")
	inputs := []string{
		"https://www.google.com/b4a/test/mqgzumi/another/yh936/again/kk839gym/abc123",
		"https://www.google.com/search?q=regex",
		"https://github.com/coregx/coregex/issues/42",
		"https://sub.example.net/login",
		"https://example.org/logout/",
		"http://localhost:8080/health",
		"http://127.0.0.1:8080/api/v2/users",
		"https://en.wikipedia.org/wiki/Special:Random",
		"nothing at all",
	}

	with := mustNewFrom(t, patterns...)

	config := DefaultConfig()
	config.EnablePrefilter = false
	without, err := NewWithConfig(config)
	require.NoError(t, err)
	require.NoError(t, without.InsertMany(patterns...))

	assert.Positive(t, with.Stats().NumPrefiltered)
	assert.Zero(t, without.Stats().NumPrefiltered)

	for _, input := range inputs {
		assert.Equal(t, without.FindMatches(input), with.FindMatches(input), input)

		a, okA := with.FindBestMatch(input)
		b, okB := without.FindBestMatch(input)
		assert.Equal(t, okB, okA, input)
		assert.Equal(t, b, a, input)
	}
}

func TestAssets(t *testing.T) {
	trie := mustNewFrom(t, loadPatterns(t, "testdata/small_set.txt")...)

	best, ok := trie.FindBestMatch(
		"https://www.google.com/b4a/test/mqgzumi/another/yh936/again/kk839gym/abc123",
	)
	require.True(t, ok)
	assert.Equal(t,
		`https://www\.google\.com/b4a/.*/mqgzumi/.*/yh936/.*/kk839gym/[a-z0-9]+`,
		best,
	)

	best, ok = trie.FindBestMatch("http://localhost:8080/health")
	require.True(t, ok)
	assert.Equal(t, "http://localhost:8080/health", best)

	assert.ElementsMatch(t, []string{
		`https://mail\.google\.com/mail/u/[0-9]+/`,
		`https://mail\.google\.com/mail/u/0/`,
	}, trie.FindMatches("https://mail.google.com/mail/u/0/"))
}

func TestStats(t *testing.T) {
	trie := mustNewFrom(t, "ab", "ab.*", ".*", ".*(foo|bar)")

	s := trie.Stats()
	assert.Equal(t, 3, s.NumNodes, "root, a, b")
	assert.Equal(t, 3, s.NumPatterns)
	assert.Equal(t, 1, s.NumPlain)
	assert.Equal(t, 2, s.NumRootPatterns)
	assert.Equal(t, 2, s.NumPrefiltered, "ab.* and .*(foo|bar)")
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	config := DefaultConfig()
	config.MaxLiterals = 0
	_, err := NewWithConfig(config)

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "MaxLiterals", cfgErr.Field)

	config.EnablePrefilter = false
	assert.NoError(t, config.Validate(), "MaxLiterals is ignored without prefilter")

	config = DefaultConfig()
	config.Engine.MaxDFAStates = 0
	require.ErrorAs(t, config.Validate(), &cfgErr)
	assert.Equal(t, "Engine", cfgErr.Field)

	assert.False(t, DefaultConfig().Engine.EnablePrefilter)

	config = DefaultConfig()
	config.Engine.EnablePrefilter = true
	_, err = NewWithConfig(config)
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "Engine.EnablePrefilter", cfgErr.Field)
}

func TestNilScorerDefaults(t *testing.T) {
	config := DefaultConfig()
	config.Scorer = nil
	trie, err := NewWithConfig(config)
	require.NoError(t, err)
	require.NoError(t, trie.InsertMany("a.*", "abc"))

	best, _ := trie.FindBestMatch("abc")
	assert.Equal(t, "abc", best)
}

func TestScorerCalledOncePerPattern(t *testing.T) {
	calls := map[string]int{}
	trie := NewWithScorer(func(pattern string, isRegex bool) int {
		calls[pattern]++
		return DefaultScorer(pattern, isRegex)
	})
	require.NoError(t, trie.InsertMany("a.*", "abc", "a[0-9]+"))

	for i := 0; i < 5; i++ {
		trie.FindBestMatch("abc")
		trie.FindBestMatch("a12")
	}
	assert.Equal(t, map[string]int{"a.*": 1, "abc": 1, "a[0-9]+": 1}, calls)
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	config := DefaultConfig()
	config.Logger = slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	trie, err := NewWithConfig(config)
	require.NoError(t, err)

	require.NoError(t, trie.Insert("hello.*"))
	require.NoError(t, trie.Insert("hello"))
	require.Error(t, trie.Insert("hello["))

	out := buf.String()
	assert.Contains(t, out, "regex pattern indexed")
	assert.Contains(t, out, "plain pattern indexed")
	assert.Contains(t, out, "pattern rejected")
}

func TestConcurrentQueries(t *testing.T) {
	trie := mustNewFrom(t, loadPatterns(t, "testdata/small_set.txt")...)
	input := "https://www.google.com/b4a/test/mqgzumi/another/yh936/again/kk839gym/abc123"
	want, _ := trie.FindBestMatch(input)
	wantAll := trie.FindMatches(input)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				if got, _ := trie.FindBestMatch(input); got != want {
					errs <- errors.New("best match changed: " + got)
					return
				}
				if got := trie.FindMatches(input); len(got) != len(wantAll) {
					errs <- errors.New("match count changed")
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}

// TestConcurrentSamePattern runs many goroutines through a handful of
// patterns so that every automaton is used by several queries at once.
func TestConcurrentSamePattern(t *testing.T) {
	patterns := []string{"a[0-9]+b.*", "a.*", "[a-c]+x", "(ab|cd)x"}
	trie := mustNewFrom(t, patterns...)

	inputs := []string{"a123bbb", "a1", "abcx", "cdx", "ccx", "zz"}
	want := make(map[string][]string, len(inputs))
	for _, in := range inputs {
		want[in] = trie.FindMatches(in)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for g := 0; g < 16; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				in := inputs[(g+i)%len(inputs)]
				if got := trie.FindMatches(in); !slicesEqual(got, want[in]) {
					errs <- errors.New("matches changed for " + in + ": " + strings.Join(got, ","))
					return
				}
			}
		}(g)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}

func slicesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestMatcherSpareWhenBusy(t *testing.T) {
	m, err := newMatcher("a[0-9]+b.*", DefaultConfig().Engine)
	require.NoError(t, err)

	// Hold the primary instance: queries must go through spares.
	m.mu.Lock()
	assert.True(t, m.fullMatch("a123bbb"))
	assert.False(t, m.fullMatch("a123"))
	assert.False(t, m.fullMatch("xa1b"))
	m.mu.Unlock()

	assert.True(t, m.fullMatch("a1b"))
	assert.True(t, m.mu.TryLock(), "primary instance released")
	m.mu.Unlock()
}

func TestStatsRetiredPrefilter(t *testing.T) {
	trie := mustNewFrom(t, "a.*", "b[0-9]+x")
	require.Equal(t, 2, trie.Stats().NumPrefiltered)

	// "a" occurs in every query: the a.* prefilter never rejects.
	for i := 0; i < 512; i++ {
		require.Equal(t, []string{"a.*"}, trie.FindMatches("abc"))
	}

	s := trie.Stats()
	assert.Equal(t, 1, s.NumRetired)
	assert.Equal(t, 2, s.NumPrefiltered)
	assert.Equal(t, []string{"a.*"}, trie.FindMatches("abc"), "retirement keeps results")
}

func TestLiteralPrefixIndexing(t *testing.T) {
	trie := mustNewFrom(t, "hello.*", "hello[a-z]+test", "something[0-9]+", `\d+`)

	// Patterns land on the node where their literal prefix ends.
	id := rootID
	for _, r := range "hello" {
		child, ok := trie.nodes[id].children[r]
		require.True(t, ok, "missing node for %q", r)
		id = child
	}
	assert.Equal(t, []uint32{0, 1}, trie.nodes[id].patterns)
	assert.Equal(t, []uint32{3}, trie.nodes[rootID].patterns, `\d+ has no usable literal prefix`)

	assert.Equal(t, "hello", literal.Split("hello.*").Text())
}
