package merkle

import "github.com/pkg/errors"

var (
	// ErrNotLeaf is returned when a mutation or proof targets a position outside the leaf range
	ErrNotLeaf = errors.New("index does not correspond to a leaf")

	// ErrIndexOutOfRange is returned for array indices that address no node
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrDepthTooLarge is returned when the node array for a depth cannot be allocated
	ErrDepthTooLarge = errors.New("depth too large")

	// ErrInvariant is returned when an internal node differs from the hash of its children
	ErrInvariant = errors.New("node invariant violated")

	// ErrCorruptSnapshot is returned when a snapshot cannot be restored into a valid tree
	ErrCorruptSnapshot = errors.New("corrupt snapshot")
)
