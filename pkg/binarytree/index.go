package binarytree

import (
	"math/bits"

	"github.com/pkg/errors"
)

// ErrReservedIndex is returned when index 0 is used as a node address.
// Slot 0 is reserved so that parent/child arithmetic holds without offset correction.
var ErrReservedIndex = errors.New("index 0 is reserved, the binary tree uses one based indexing")

// NodeIndex returns the one-based array index of the node at the given depth and offset.
//
// The caller must ensure 0 <= offset < 2^depth; an out of range offset produces
// an index that belongs to a deeper level.
func NodeIndex(depth, offset uint64) uint64 {
	return (uint64(1) << depth) + offset
}

// DepthAndOffset is the inverse of NodeIndex.
func DepthAndOffset(index uint64) (depth uint64, offset uint64, err error) {
	if index == 0 {
		return 0, 0, ErrReservedIndex
	}
	depth = Log2(index)
	return depth, index - (uint64(1) << depth), nil
}

// Parent returns the index of the parent node. The parent of the root is 0,
// the reserved sentinel meaning "no parent".
func Parent(index uint64) uint64 {
	return index / 2
}

// LeftChild returns the index of the left child.
func LeftChild(index uint64) uint64 {
	return 2 * index
}

// RightChild returns the index of the right child.
func RightChild(index uint64) uint64 {
	return 2*index + 1
}

// Sibling returns the other child of index's parent. Undefined for the root.
func Sibling(index uint64) uint64 {
	return index ^ 1
}

// IsLeftChild reports whether index is the left child of its parent.
func IsLeftChild(index uint64) bool {
	return index%2 == 0
}

// Height returns the depth of a fully populated complete tree holding
// nodeCount nodes (the reserved slot excluded).
func Height(nodeCount uint64) uint64 {
	return Log2(nodeCount + 1)
}

// Log2 efficiently computes floor(log2(num)). Log2(0) is defined as 0.
func Log2(num uint64) uint64 {
	if num == 0 {
		return 0
	}
	return uint64(bits.Len64(num) - 1)
}
