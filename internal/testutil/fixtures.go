package testutil

import (
	"fmt"
	"strings"
)

const (
	// AbLeaf is 32 bytes of 0xab
	AbLeaf = "0xabababababababababababababababababababababababababababababababab"

	// ZeroLeaf is 32 zero bytes
	ZeroLeaf = "0x0000000000000000000000000000000000000000000000000000000000000000"
)

// RepeatedDigest returns a 32 byte digest whose 64 hex digits all equal digit (0..15),
// i.e. digit * 0x1111...1, upper case and 0x prefixed.
func RepeatedDigest(digit int) string {
	if digit < 0 || digit > 15 {
		panic(fmt.Sprintf("digit %d out of range", digit))
	}
	return "0x" + strings.Repeat(fmt.Sprintf("%X", digit), 64)
}

// DistinctLeaves returns n distinct digests: leaf i is RepeatedDigest(i), so leaf 0 is all zero.
func DistinctLeaves(n int) []string {
	leaves := make([]string, n)
	for i := range leaves {
		leaves[i] = RepeatedDigest(i)
	}
	return leaves
}
