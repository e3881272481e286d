package merkle

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Layr-Labs/merkletree-go/pkg/binarytree"
	"github.com/Layr-Labs/merkletree-go/pkg/hashing"
	"github.com/Layr-Labs/merkletree-go/pkg/hexcodec"
)

// MaxDepth bounds the node array to 2^MaxDepth slots. At 24 the slot headers
// alone take 384 MiB; anything deeper cannot be allocated on common hosts.
const MaxDepth = 24

// NewMerkleTree creates a merkle tree of the given depth with every leaf set to initialLeaf,
// a hexadecimal digest optionally prefixed with 0x.
//
// Depth 0 is a root-only tree whose single node holds the leaf itself. Depth 1 is a root
// over two leaves. For depth >= 2 the leaves occupy [2^(depth-1), 2^depth).
func NewMerkleTree(depth uint32, initialLeaf string, opts ...Option) (*MerkleTree, error) {
	if depth > MaxDepth {
		return nil, errors.Wrapf(ErrDepthTooLarge, "%d exceeds maximum %d", depth, MaxDepth)
	}

	leaf, err := hexcodec.Decode(initialLeaf)
	if err != nil {
		return nil, errors.Wrap(err, "initial leaf should be a hexadecimal string")
	}

	mt := newEmptyTree(depth, opts...)

	switch depth {
	case 0:
		mt.nodes = [][]byte{nil, leaf}
	case 1:
		mt.nodes = [][]byte{nil, mt.hasher.Hash(leaf, leaf), leaf, leaf}
	default:
		mt.build(leaf)
	}

	mt.logger.Sugar().Debugw("Merkle tree created",
		"depth", depth,
		"hash", mt.hasher.Name(),
		"root", mt.Root(),
	)
	return mt, nil
}

func newEmptyTree(depth uint32, opts ...Option) *MerkleTree {
	mt := &MerkleTree{
		depth:  depth,
		hasher: hashing.Default(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(mt)
	}
	return mt
}

// build fills the leaf level with leaf and aggregates bottom-up.
//
// Levels depth-2 down to 1 go through a cache keyed by the concatenated children, so a
// uniformly initialized tree costs O(depth) hash calls rather than O(2^depth). The cache
// lives only for this call: after the first mutation subtrees are no longer uniform.
func (mt *MerkleTree) build(leaf []byte) {
	size := uint64(1) << mt.depth
	mt.nodes = make([][]byte, size)

	for i := size / 2; i < size; i++ {
		mt.nodes[i] = leaf
	}

	seen := make(map[string][]byte)
	hashed, reused := 0, 0
	for currentDepth := int(mt.depth) - 2; currentDepth > 0; currentDepth-- {
		start := uint64(1) << currentDepth
		end := uint64(1) << (currentDepth + 1)

		for i := start; i < end; i++ {
			concat := concatenate(mt.nodes[binarytree.LeftChild(i)], mt.nodes[binarytree.RightChild(i)])

			if h, ok := seen[string(concat)]; ok {
				mt.nodes[i] = h
				reused++
				continue
			}
			h := mt.hasher.Hash(concat)
			seen[string(concat)] = h
			mt.nodes[i] = h
			hashed++
		}
	}

	// The root is computed outside the loop
	mt.nodes[1] = mt.hashChildren(1)

	mt.logger.Debug("Merkle tree levels aggregated",
		zap.Uint32("depth", mt.depth),
		zap.Int("hashed", hashed+1),
		zap.Int("reused", reused),
	)
}

func (mt *MerkleTree) hashChildren(index uint64) []byte {
	return mt.hasher.Hash(mt.nodes[binarytree.LeftChild(index)], mt.nodes[binarytree.RightChild(index)])
}

func concatenate(left, right []byte) []byte {
	concat := make([]byte, 0, len(left)+len(right))
	concat = append(concat, left...)
	return append(concat, right...)
}

// Root returns the root digest, 0x prefixed.
func (mt *MerkleTree) Root() string {
	return hexcodec.Encode(mt.nodes[1])
}

// Depth returns the depth fixed at construction
func (mt *MerkleTree) Depth() uint32 {
	return mt.depth
}

// Hasher returns the hash function the tree aggregates with
func (mt *MerkleTree) Hasher() hashing.Hasher {
	return mt.hasher
}

// Len returns the number of node slots, the reserved slot 0 included.
func (mt *MerkleTree) Len() int {
	return len(mt.nodes)
}

// LeafRange returns the half-open interval [low, high) of leaf slots.
// For depth 0 the root is the only leaf.
func (mt *MerkleTree) LeafRange() (low ArrayIndex, high ArrayIndex) {
	n := ArrayIndex(len(mt.nodes))
	return n / 2, n
}

// LeafCount returns the number of leaves
func (mt *MerkleTree) LeafCount() uint64 {
	low, high := mt.LeafRange()
	return uint64(high - low)
}

// IsLeaf reports whether index lies within the leaf range
func (mt *MerkleTree) IsLeaf(index ArrayIndex) bool {
	low, high := mt.LeafRange()
	return index >= low && index < high
}

// LeafIndex translates a leaf offset into its absolute array index.
func (mt *MerkleTree) LeafIndex(offset LeafOffset) (ArrayIndex, error) {
	low, _ := mt.LeafRange()
	if uint64(offset) >= mt.LeafCount() {
		return 0, errors.Wrapf(ErrNotLeaf, "leaf offset %d out of bounds (tree has %d leaves)", offset, mt.LeafCount())
	}
	return low + ArrayIndex(offset), nil
}

// Node returns the digest stored at index, 0x prefixed.
func (mt *MerkleTree) Node(index ArrayIndex) (string, error) {
	if index == 0 || uint64(index) >= uint64(len(mt.nodes)) {
		return "", errors.Wrapf(ErrIndexOutOfRange, "node index %d (tree has slots 1..%d)", index, len(mt.nodes)-1)
	}
	return hexcodec.Encode(mt.nodes[index]), nil
}
