package merkle

import (
	"fmt"
	"testing"

	"github.com/Layr-Labs/merkletree-go/internal/testutil"
)

// BenchmarkMerkleTreeBuild benchmarks construction of uniformly initialized trees
func BenchmarkMerkleTreeBuild(b *testing.B) {
	depths := []uint32{8, 12, 16, 20}

	for _, depth := range depths {
		b.Run(fmt.Sprintf("Depth_%d", depth), func(b *testing.B) {
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				_, _ = NewMerkleTree(depth, testutil.AbLeaf)
			}
		})
	}
}

// BenchmarkMerkleTreeSet benchmarks single leaf mutation with rebalancing
func BenchmarkMerkleTreeSet(b *testing.B) {
	depths := []uint32{8, 12, 16, 20}

	for _, depth := range depths {
		mt, _ := NewMerkleTree(depth, testutil.AbLeaf)
		low, _ := mt.LeafRange()
		count := mt.LeafCount()

		b.Run(fmt.Sprintf("Depth_%d", depth), func(b *testing.B) {
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				_ = mt.Set(low+ArrayIndex(uint64(i)%count), testutil.ZeroLeaf)
			}
		})
	}
}

// BenchmarkMerkleProofGeneration benchmarks proof generation
func BenchmarkMerkleProofGeneration(b *testing.B) {
	depths := []uint32{8, 12, 16, 20}

	for _, depth := range depths {
		mt, _ := NewMerkleTree(depth, testutil.AbLeaf)
		count := mt.LeafCount()

		b.Run(fmt.Sprintf("Depth_%d", depth), func(b *testing.B) {
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				_, _ = mt.Proof(LeafOffset(uint64(i) % count))
			}
		})
	}
}

// BenchmarkMerkleProofVerification benchmarks proof verification
func BenchmarkMerkleProofVerification(b *testing.B) {
	depths := []uint32{8, 12, 16, 20}

	for _, depth := range depths {
		mt, _ := NewMerkleTree(depth, testutil.AbLeaf)
		proof, _ := mt.Proof(0)

		b.Run(fmt.Sprintf("Depth_%d", depth), func(b *testing.B) {
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				_, _ = mt.Verify(proof, testutil.AbLeaf)
			}
		})
	}
}
