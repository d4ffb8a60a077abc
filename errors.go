package regextrie

import "errors"

// ErrPatternCompilation is matched by every error returned when a pattern
// cannot be compiled.
//
// Example:
//
//	if err := trie.Insert(`https://x.com/[`); errors.Is(err, regextrie.ErrPatternCompilation) {
//	    // skip the pattern
//	}
var ErrPatternCompilation = errors.New("regextrie: pattern compilation failed")

// PatternError reports a pattern rejected by the regex engine.
//
// It unwraps to both ErrPatternCompilation and the engine error, so the
// syntax details stay reachable with errors.As:
//
//	var synErr *syntax.Error
//	if errors.As(err, &synErr) {
//	    fmt.Println(synErr.Code)
//	}
type PatternError struct {
	// Pattern is the rejected pattern text.
	Pattern string

	// Err is the error returned by the regex engine.
	Err error
}

// Error implements the error interface.
func (e *PatternError) Error() string {
	return "regextrie: cannot compile pattern `" + e.Pattern + "`: " + e.Err.Error()
}

// Unwrap returns ErrPatternCompilation and the engine error.
func (e *PatternError) Unwrap() []error {
	return []error{ErrPatternCompilation, e.Err}
}
