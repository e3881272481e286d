package merkle

import (
	"bytes"
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/Layr-Labs/merkletree-go/pkg/binarytree"
	"github.com/Layr-Labs/merkletree-go/pkg/hashing"
	"github.com/Layr-Labs/merkletree-go/pkg/hexcodec"
)

// Snapshot is the exported state of a tree.
type Snapshot struct {
	Depth uint32 `json:"depth"`

	// Hash is the registered name of the hash function
	Hash string `json:"hash"`

	// Nodes holds the 0x prefixed digests of slots 1..n-1, the reserved slot is omitted
	Nodes []string `json:"nodes"`
}

// slotCount returns the length of the node array, slot 0 included, for a depth.
func slotCount(depth uint32) int {
	switch depth {
	case 0:
		return 2
	case 1:
		return 4
	default:
		return 1 << depth
	}
}

// Snapshot exports the tree.
func (mt *MerkleTree) Snapshot() *Snapshot {
	nodes := make([]string, len(mt.nodes)-1)
	for i := 1; i < len(mt.nodes); i++ {
		nodes[i-1] = hexcodec.Encode(mt.nodes[i])
	}
	return &Snapshot{
		Depth: mt.depth,
		Hash:  mt.hasher.Name(),
		Nodes: nodes,
	}
}

// RestoreMerkleTree rebuilds a tree from a snapshot. The hash function named by the snapshot
// takes precedence over WithHasher. The node invariant is re-checked before returning.
func RestoreMerkleTree(snapshot *Snapshot, opts ...Option) (*MerkleTree, error) {
	if snapshot == nil {
		return nil, errors.Wrap(ErrCorruptSnapshot, "nil snapshot")
	}
	if snapshot.Depth > MaxDepth {
		return nil, fmt.Errorf("%w: %w: %d exceeds maximum %d", ErrCorruptSnapshot, ErrDepthTooLarge, snapshot.Depth, MaxDepth)
	}

	mt := newEmptyTree(snapshot.Depth, opts...)
	if snapshot.Hash != "" {
		h, err := hashing.ByName(snapshot.Hash)
		if err != nil {
			return nil, errors.Wrapf(ErrCorruptSnapshot, "%v", err)
		}
		mt.hasher = h
	}

	expected := slotCount(snapshot.Depth)
	if len(snapshot.Nodes) != expected-1 {
		return nil, errors.Wrapf(ErrCorruptSnapshot, "depth %d requires %d nodes, got %d", snapshot.Depth, expected-1, len(snapshot.Nodes))
	}

	mt.nodes = make([][]byte, expected)
	for i, node := range snapshot.Nodes {
		digest, err := hexcodec.Decode(node)
		if err != nil {
			return nil, errors.Wrapf(ErrCorruptSnapshot, "node %d: %v", i+1, err)
		}
		mt.nodes[i+1] = digest
	}

	if err := mt.CheckInvariant(); err != nil {
		return nil, errors.Wrapf(ErrCorruptSnapshot, "%v", err)
	}
	return mt, nil
}

// CheckInvariant verifies nodes[i] == H(nodes[2i] ++ nodes[2i+1]) for every internal node.
func (mt *MerkleTree) CheckInvariant() error {
	low, _ := mt.LeafRange()
	for i := uint64(1); i < uint64(low); i++ {
		if !bytes.Equal(mt.nodes[i], mt.hashChildren(i)) {
			depth, offset, _ := binarytree.DepthAndOffset(i)
			return errors.Wrapf(ErrInvariant, "node %d (depth %d, offset %d)", i, depth, offset)
		}
	}
	return nil
}

// Dump writes every slot, the reserved one included, with its hex digest.
func (mt *MerkleTree) Dump(w io.Writer) error {
	for i, node := range mt.nodes {
		if _, err := fmt.Fprintf(w, "Index %d and value %s\n", i, hexcodec.Encode(node)); err != nil {
			return err
		}
	}
	return nil
}
