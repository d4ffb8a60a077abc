package prefilter

import "github.com/axelberardino/regextrie/literal"

// ByteSetPrefilter looks for any byte of a small set.
//
// The builder picks it when every required literal is a single byte, which
// is what a short character class like [0-9] or [abc] expands to. One table
// lookup per input byte replaces an Aho-Corasick pass.
//
// This is particularly effective for:
//   - Numeric segments: `/user/[0-9]+`
//   - Separators: `.*[-_.].*`
type ByteSetPrefilter struct {
	set [256]bool
	n   int
}

func isByteSet(seq *literal.Seq) bool {
	for i := 0; i < seq.Len(); i++ {
		if seq.Get(i).Len() != 1 {
			return false
		}
	}
	return true
}

func newByteSetPrefilter(seq *literal.Seq) *ByteSetPrefilter {
	p := &ByteSetPrefilter{}
	for i := 0; i < seq.Len(); i++ {
		b := seq.Get(i).Bytes[0]
		if !p.set[b] {
			p.set[b] = true
			p.n++
		}
	}
	return p
}

// IsMatch implements Prefilter.
func (p *ByteSetPrefilter) IsMatch(haystack []byte) bool {
	for _, b := range haystack {
		if p.set[b] {
			return true
		}
	}
	return false
}

// Len implements Prefilter.
func (p *ByteSetPrefilter) Len() int { return p.n }

// String implements Prefilter. Bytes are listed in ascending order.
func (p *ByteSetPrefilter) String() string {
	buf := make([]byte, 0, p.n)
	for b := 0; b < len(p.set); b++ {
		if p.set[b] {
			buf = append(buf, byte(b))
		}
	}
	return "byteset{" + string(buf) + "}"
}
