package literal

import (
	"regexp/syntax"
)

// maxDepth guards the recursive walk against pathologically nested patterns.
const maxDepth = 100

// Analysis is what the parser can prove about every match of a regex.
type Analysis struct {
	// Prefix is the literal text every match starts with. Empty when nothing
	// is guaranteed (leading class, anchor, top-level alternation...).
	Prefix string

	// Required holds literals such that every match contains at least one of
	// them. Nil when no such set could be extracted.
	Required *Seq
}

// Analyze parses pattern with Perl syntax, the flavor the regex engine
// compiles, and extracts its guaranteed prefix and required literals.
// maxLiterals caps the size of the required set; larger sets are dropped.
//
// Example:
//
//	a, _ := literal.Analyze(`https://x\.com/.*(foo|bar)`, 64)
//	// a.Prefix   = "https://x.com/"
//	// a.Required = ["https://x.com/"]
func Analyze(pattern string, maxLiterals int) (Analysis, error) {
	re, err := syntax.Parse(pattern, syntax.Perl)
	if err != nil {
		return Analysis{}, err
	}

	a := Analysis{Prefix: guaranteedPrefix(re)}
	if seq := required(re, maxLiterals, 0); seq != nil {
		seq.Minimize()
		a.Required = seq
	}
	return a, nil
}

// guaranteedPrefix returns the literal string all matches of re start with.
func guaranteedPrefix(re *syntax.Regexp) string {
	prog, err := syntax.Compile(re.Simplify())
	if err != nil {
		return ""
	}
	prefix, _ := prog.Prefix()
	return prefix
}

// required returns a set of literals at least one of which occurs in every
// match of re, or nil if none is known.
//
// Handles these syntax.Op types:
//   - OpCapture, OpPlus, OpRepeat{Min >= 1}: the sub-expression's set
//   - OpConcat: the most selective set among its children and among runs of
//     adjacent children that match a finite set of strings
//   - OpAlternate: union of every alternative's set, if all have one
//   - anything else: its exact set (see exact), when it has no empty string
//
// Stars, optional parts, large classes and case folding yield nil.
func required(re *syntax.Regexp, maxLiterals, depth int) *Seq {
	if depth > maxDepth {
		return nil
	}

	switch re.Op {
	case syntax.OpCapture, syntax.OpPlus:
		return required(re.Sub[0], maxLiterals, depth+1)

	case syntax.OpRepeat:
		if re.Min < 1 {
			return nil
		}
		return required(re.Sub[0], maxLiterals, depth+1)

	case syntax.OpConcat:
		var best *Seq
		consider := func(seq *Seq) {
			if seq.MinLen() > 0 && (best == nil || seq.MinLen() > best.MinLen()) {
				best = seq
			}
		}

		// run is the exact set of the current run of finite children.
		var run *Seq
		for _, sub := range re.Sub {
			if ex := exact(sub, maxLiterals, depth+1); ex != nil {
				if next := product(run, ex, maxLiterals); next != nil {
					run = next
				} else {
					run = ex
				}
				consider(run)
				continue
			}
			run = nil
			consider(required(sub, maxLiterals, depth+1))
		}
		return best

	case syntax.OpAlternate:
		union := NewSeq()
		for _, sub := range re.Sub {
			seq := required(sub, maxLiterals, depth+1)
			if seq == nil {
				return nil
			}
			union.Union(seq)
			if union.Len() > maxLiterals {
				return nil
			}
		}
		return union

	default:
		seq := exact(re, maxLiterals, depth+1)
		if seq.MinLen() == 0 {
			return nil
		}
		return seq
	}
}

// maxClassSize is the largest character class expanded into literals.
const maxClassSize = 10

// exact returns every string re can match when that set is finite and
// small, or nil.
func exact(re *syntax.Regexp, maxLiterals, depth int) *Seq {
	if depth > maxDepth {
		return nil
	}

	switch re.Op {
	case syntax.OpLiteral:
		if re.Flags&syntax.FoldCase != 0 {
			return nil
		}
		return NewSeq(NewLiteral([]byte(string(re.Rune))))

	case syntax.OpEmptyMatch:
		return NewSeq(NewLiteral(nil))

	case syntax.OpCharClass:
		n := 0
		for i := 0; i+1 < len(re.Rune); i += 2 {
			n += int(re.Rune[i+1]-re.Rune[i]) + 1
			if n > maxClassSize || n > maxLiterals {
				return nil
			}
		}
		if n == 0 {
			return nil
		}
		seq := NewSeq()
		for i := 0; i+1 < len(re.Rune); i += 2 {
			for r := re.Rune[i]; r <= re.Rune[i+1]; r++ {
				seq.literals = append(seq.literals, NewLiteral([]byte(string(r))))
			}
		}
		return seq

	case syntax.OpCapture:
		return exact(re.Sub[0], maxLiterals, depth+1)

	case syntax.OpConcat:
		var seq *Seq
		for _, sub := range re.Sub {
			ex := exact(sub, maxLiterals, depth+1)
			if ex == nil {
				return nil
			}
			if seq = product(seq, ex, maxLiterals); seq == nil {
				return nil
			}
		}
		return seq

	case syntax.OpAlternate:
		union := NewSeq()
		for _, sub := range re.Sub {
			ex := exact(sub, maxLiterals, depth+1)
			if ex == nil {
				return nil
			}
			union.Union(ex)
			if union.Len() > maxLiterals {
				return nil
			}
		}
		return union

	default:
		return nil
	}
}

// product returns every concatenation of a literal of a with a literal of b.
// A nil a is the identity. Returns nil when the result would exceed
// maxLiterals.
func product(a, b *Seq, maxLiterals int) *Seq {
	if a == nil {
		return b
	}
	if a.Len()*b.Len() > maxLiterals {
		return nil
	}
	out := &Seq{literals: make([]Literal, 0, a.Len()*b.Len())}
	for _, x := range a.literals {
		for _, y := range b.literals {
			lit := make([]byte, 0, x.Len()+y.Len())
			lit = append(lit, x.Bytes...)
			lit = append(lit, y.Bytes...)
			out.literals = append(out.literals, NewLiteral(lit))
		}
	}
	return out
}
