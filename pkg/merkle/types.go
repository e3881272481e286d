package merkle

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Layr-Labs/merkletree-go/pkg/hashing"
)

// ArrayIndex is an absolute, one-based position in the node array. Slot 0 is reserved.
// Set and Rebalance take an ArrayIndex.
type ArrayIndex uint64

// LeafOffset is a zero-based position within the leaf range. Proof takes a LeafOffset.
type LeafOffset uint64

// MerkleTree is a fixed-depth, array-indexed merkle tree.
// It is not safe for concurrent use; see SyncedTree.
type MerkleTree struct {
	depth uint32

	// nodes holds one digest per slot, nodes[1] is the root and nodes[0] is never used.
	// Slices are never written in place, so slots may share backing arrays.
	nodes [][]byte

	hasher hashing.Hasher
	logger *zap.Logger
}

// Option configures a MerkleTree at construction
type Option func(*MerkleTree)

// WithHasher sets the hash function H. Defaults to hashing.Default().
func WithHasher(h hashing.Hasher) Option {
	return func(mt *MerkleTree) {
		if h != nil {
			mt.hasher = h
		}
	}
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(mt *MerkleTree) {
		if l != nil {
			mt.logger = l
		}
	}
}

// Handedness records whether the node under proof is the left or the right child at a level.
type Handedness uint8

const (
	Left Handedness = iota
	Right
)

func (h Handedness) String() string {
	switch h {
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return fmt.Sprintf("handedness(%d)", uint8(h))
	}
}

func (h Handedness) MarshalText() ([]byte, error) {
	if h != Left && h != Right {
		return nil, fmt.Errorf("invalid handedness %d", uint8(h))
	}
	return []byte(h.String()), nil
}

func (h *Handedness) UnmarshalText(text []byte) error {
	switch string(text) {
	case "left":
		*h = Left
	case "right":
		*h = Right
	default:
		return fmt.Errorf("invalid handedness %q", string(text))
	}
	return nil
}

// ProofStep is one level of an inclusion proof.
type ProofStep struct {
	// Side is the handedness of the current node, not of the sibling
	Side Handedness `json:"side"`

	// Sibling is the 0x prefixed digest of the other child of the current node's parent
	Sibling string `json:"sibling"`
}

// ProofPath is an inclusion proof ordered leaf to root.
type ProofPath []ProofStep
