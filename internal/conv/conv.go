// Package conv provides checked integer narrowing for trie node IDs and
// compiled-pattern table indices.
//
// Both are stored as uint32 to keep trie nodes small. Overflowing that range
// means more than four billion nodes or patterns, which is a programming
// error, so these helpers panic rather than return an error.
package conv

import "math"

// Index converts a slice length or position into a uint32 identifier.
// Panics if n < 0 or n > math.MaxUint32.
//
//go:inline
func Index(n int) uint32 {
	// Compare as uint so 32-bit platforms never overflow the constant.
	if n < 0 || uint(n) > math.MaxUint32 {
		panic("regextrie: index out of uint32 range")
	}
	return uint32(n)
}
