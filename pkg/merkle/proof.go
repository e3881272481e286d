package merkle

import (
	"github.com/bits-and-blooms/bitset"
	"github.com/pkg/errors"

	"github.com/Layr-Labs/merkletree-go/pkg/binarytree"
	"github.com/Layr-Labs/merkletree-go/pkg/hashing"
	"github.com/Layr-Labs/merkletree-go/pkg/hexcodec"
)

// Proof generates the inclusion path for the leaf at the given offset within the leaf range.
// The path is ordered leaf to root and has one step per level below the root.
func (mt *MerkleTree) Proof(leaf LeafOffset) (ProofPath, error) {
	index, err := mt.LeafIndex(leaf)
	if err != nil {
		return nil, err
	}

	path := make(ProofPath, 0, binarytree.Log2(uint64(index)))
	for current := uint64(index); current > 1; current = binarytree.Parent(current) {
		side := Right
		if binarytree.IsLeftChild(current) {
			side = Left
		}
		path = append(path, ProofStep{
			Side:    side,
			Sibling: hexcodec.Encode(mt.nodes[binarytree.Sibling(current)]),
		})
	}
	return path, nil
}

// Verify folds path over leafDigest with the tree's hash function and returns the
// candidate root. The caller compares it against a published root.
func (mt *MerkleTree) Verify(path ProofPath, leafDigest string) (string, error) {
	return Verify(mt.hasher, path, leafDigest)
}

// Verify recomputes a root from a leaf digest and its proof path. At each step a Left
// side puts the accumulator first, a Right side puts the sibling first.
func Verify(hasher hashing.Hasher, path ProofPath, leafDigest string) (string, error) {
	acc, err := hexcodec.Decode(leafDigest)
	if err != nil {
		return "", errors.Wrap(err, "invalid leaf digest")
	}

	for level, step := range path {
		sibling, err := hexcodec.Decode(step.Sibling)
		if err != nil {
			return "", errors.Wrapf(err, "invalid sibling digest at level %d", level)
		}
		switch step.Side {
		case Left:
			acc = hasher.Hash(acc, sibling)
		case Right:
			acc = hasher.Hash(sibling, acc)
		default:
			return "", errors.Errorf("invalid handedness %d at level %d", step.Side, level)
		}
	}
	return hexcodec.Encode(acc), nil
}

// VerifyAgainst reports whether path and leafDigest reproduce root.
func VerifyAgainst(hasher hashing.Hasher, path ProofPath, leafDigest string, root string) (bool, error) {
	computed, err := Verify(hasher, path, leafDigest)
	if err != nil {
		return false, err
	}
	expected, err := hexcodec.Normalize(root)
	if err != nil {
		return false, errors.Wrap(err, "invalid root")
	}
	return computed == expected, nil
}

// Sides returns a bitset with bit j set when the node at step j is a right child.
// Read leaf to root, the bits are the binary representation of the leaf offset.
func (p ProofPath) Sides() *bitset.BitSet {
	sides := bitset.New(uint(len(p)))
	for j, step := range p {
		if step.Side == Right {
			sides.Set(uint(j))
		}
	}
	return sides
}

// Offset reconstructs the leaf offset the path was generated for.
func (p ProofPath) Offset() LeafOffset {
	var offset LeafOffset
	for j, step := range p {
		if step.Side == Right {
			offset |= 1 << j
		}
	}
	return offset
}
