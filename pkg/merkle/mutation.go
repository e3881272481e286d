package merkle

import (
	"sort"

	"github.com/bits-and-blooms/bitset"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Layr-Labs/merkletree-go/pkg/binarytree"
	"github.com/Layr-Labs/merkletree-go/pkg/hexcodec"
)

// Set stores a new digest at the leaf slot index and rebalances the path to the root.
// Nothing is written if index is not a leaf or value is not hexadecimal.
func (mt *MerkleTree) Set(index ArrayIndex, value string) error {
	if !mt.IsLeaf(index) {
		low, high := mt.LeafRange()
		return errors.Wrapf(ErrNotLeaf, "attempt to mutate non-leaf index %d (leaf range [%d, %d))", index, low, high)
	}

	digest, err := hexcodec.Decode(value)
	if err != nil {
		return errors.Wrapf(err, "invalid value for leaf %d", index)
	}

	mt.nodes[index] = digest
	return mt.Rebalance(index)
}

// Rebalance recomputes every ancestor of index from its two children, walking up to and
// including the root. Slot 0 is never written.
func (mt *MerkleTree) Rebalance(index ArrayIndex) error {
	if index == 0 || uint64(index) >= uint64(len(mt.nodes)) {
		return errors.Wrapf(ErrIndexOutOfRange, "cannot rebalance from index %d", index)
	}

	for current := binarytree.Parent(uint64(index)); current > 0; current = binarytree.Parent(current) {
		mt.nodes[current] = mt.hashChildren(current)
	}
	return nil
}

// SetBatch applies several leaf writes and recomputes each affected ancestor exactly once.
// Every index and value is validated before the first write; the resulting tree is identical
// to calling Set for each entry.
func (mt *MerkleTree) SetBatch(updates map[ArrayIndex]string) error {
	if len(updates) == 0 {
		return nil
	}

	indices := make([]ArrayIndex, 0, len(updates))
	for index := range updates {
		indices = append(indices, index)
	}
	sort.Slice(indices, func(i, j int) bool { return indices[i] < indices[j] })

	decoded := make([][]byte, len(indices))
	for i, index := range indices {
		if !mt.IsLeaf(index) {
			low, high := mt.LeafRange()
			return errors.Wrapf(ErrNotLeaf, "attempt to mutate non-leaf index %d (leaf range [%d, %d))", index, low, high)
		}
		digest, err := hexcodec.Decode(updates[index])
		if err != nil {
			return errors.Wrapf(err, "invalid value for leaf %d", index)
		}
		decoded[i] = digest
	}

	dirty := bitset.New(uint(len(mt.nodes)))
	for i, index := range indices {
		mt.nodes[index] = decoded[i]
		if p := binarytree.Parent(uint64(index)); p > 0 {
			dirty.Set(uint(p))
		}
	}

	// Children always sit one level below their parent, so sweeping level by level
	// from the bottom sees every dirty child before its parent.
	low, _ := mt.LeafRange()
	recomputed := 0
	for level := int(binarytree.Log2(uint64(low))) - 1; level >= 0; level-- {
		start := uint(1) << level
		end := uint(1) << (level + 1)
		for i, ok := dirty.NextSet(start); ok && i < end; i, ok = dirty.NextSet(i + 1) {
			mt.nodes[i] = mt.hashChildren(uint64(i))
			recomputed++
			if p := binarytree.Parent(uint64(i)); p > 0 {
				dirty.Set(uint(p))
			}
		}
	}

	mt.logger.Debug("Merkle tree batch applied",
		zap.Int("leaves", len(indices)),
		zap.Int("recomputed", recomputed),
	)
	return nil
}
