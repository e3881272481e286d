package merkle

import (
	"io"
	"sync"

	"github.com/Layr-Labs/merkletree-go/pkg/hashing"
)

// SyncedTree serializes access to a MerkleTree with one lock per instance.
// Mutations take the write lock, queries the read lock.
type SyncedTree struct {
	mu   sync.RWMutex
	tree *MerkleTree
}

// NewSyncedTree wraps tree. The caller must not use tree directly afterwards.
func NewSyncedTree(tree *MerkleTree) *SyncedTree {
	return &SyncedTree{tree: tree}
}

func (s *SyncedTree) Root() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree.Root()
}

func (s *SyncedTree) Depth() uint32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree.Depth()
}

func (s *SyncedTree) Hasher() hashing.Hasher {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree.Hasher()
}

func (s *SyncedTree) LeafRange() (ArrayIndex, ArrayIndex) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree.LeafRange()
}

func (s *SyncedTree) Node(index ArrayIndex) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree.Node(index)
}

func (s *SyncedTree) Set(index ArrayIndex, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree.Set(index, value)
}

func (s *SyncedTree) SetBatch(updates map[ArrayIndex]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree.SetBatch(updates)
}

func (s *SyncedTree) Rebalance(index ArrayIndex) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree.Rebalance(index)
}

func (s *SyncedTree) Proof(leaf LeafOffset) (ProofPath, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree.Proof(leaf)
}

func (s *SyncedTree) Verify(path ProofPath, leafDigest string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree.Verify(path, leafDigest)
}

func (s *SyncedTree) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree.Snapshot()
}

func (s *SyncedTree) Dump(w io.Writer) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree.Dump(w)
}

// Update runs fn with exclusive access to the tree, for read-modify-write sequences.
func (s *SyncedTree) Update(fn func(tree *MerkleTree) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.tree)
}

// View runs fn with shared access to the tree, for reads that must see one consistent state.
// fn must not mutate the tree.
func (s *SyncedTree) View(fn func(tree *MerkleTree) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.tree)
}
