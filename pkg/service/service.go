package service

import (
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/Layr-Labs/merkletree-go/pkg/config"
	"github.com/Layr-Labs/merkletree-go/pkg/hashing"
	"github.com/Layr-Labs/merkletree-go/pkg/merkle"
	"github.com/Layr-Labs/merkletree-go/pkg/persistence"
)

// TreeService owns one named tree and keeps its store in step with it.
// Every successful mutation is followed by a save of the full snapshot; a
// failed save puts the tree back the way it was before returning the error.
//
// A save writes all 2^depth-1 nodes as one record, so the cost of Set is
// O(2^depth) in encoding and store I/O even though the in-memory update only
// touches depth nodes. Backends hold whole records and have no per-leaf
// update. Callers writing many leaves should use SetBatch, which saves once.
type TreeService struct {
	name   string
	tree   *merkle.SyncedTree
	store  persistence.ITreeStore
	logger *zap.Logger
}

// NewTreeService loads the tree named in cfg from the store, or builds and
// saves a fresh one when the store has none. A stored tree keeps its own depth
// and hash even when cfg asks for different ones.
func NewTreeService(cfg *config.TreeServiceConfig, store persistence.ITreeStore, logger *zap.Logger) (*TreeService, error) {
	if cfg == nil {
		return nil, fmt.Errorf("tree service config cannot be nil")
	}
	if store == nil {
		return nil, fmt.Errorf("tree store cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	hasher, err := hashing.ByName(cfg.Hash)
	if err != nil {
		return nil, err
	}

	s := &TreeService{
		name:   cfg.TreeName,
		store:  store,
		logger: logger.With(zap.String("tree", cfg.TreeName)),
	}

	record, err := store.LoadTree(cfg.TreeName)
	if err != nil {
		return nil, fmt.Errorf("failed to load tree %s: %w", cfg.TreeName, err)
	}

	opts := []merkle.Option{merkle.WithHasher(hasher), merkle.WithLogger(s.logger)}

	if record != nil {
		mt, err := merkle.RestoreMerkleTree(record.Snapshot, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to restore tree %s: %w", cfg.TreeName, err)
		}
		if mt.Depth() != cfg.Depth || mt.Hasher().Name() != hasher.Name() {
			s.logger.Sugar().Warnw("Stored tree differs from configuration, using stored tree",
				"stored_depth", mt.Depth(), "stored_hash", mt.Hasher().Name(),
				"config_depth", cfg.Depth, "config_hash", hasher.Name())
		}
		s.tree = merkle.NewSyncedTree(mt)
		s.logger.Sugar().Infow("Restored tree from store", "depth", mt.Depth(), "root", mt.Root())
		return s, nil
	}

	mt, err := merkle.NewMerkleTree(cfg.Depth, cfg.InitialLeaf, opts...)
	if err != nil {
		return nil, err
	}
	if err := s.save(mt); err != nil {
		return nil, err
	}
	s.tree = merkle.NewSyncedTree(mt)
	s.logger.Sugar().Infow("Created new tree", "depth", mt.Depth(), "hash", hasher.Name(), "root", mt.Root())

	return s, nil
}

// save replaces the stored record with a snapshot of every node in mt
func (s *TreeService) save(mt *merkle.MerkleTree) error {
	if err := s.store.SaveTree(persistence.NewTreeRecord(s.name, mt.Snapshot())); err != nil {
		return fmt.Errorf("failed to save tree %s: %w", s.name, err)
	}
	return nil
}

// Name returns the tree's storage name
func (s *TreeService) Name() string {
	return s.name
}

func (s *TreeService) Root() string {
	return s.tree.Root()
}

func (s *TreeService) Depth() uint32 {
	return s.tree.Depth()
}

func (s *TreeService) HashName() string {
	return s.tree.Hasher().Name()
}

func (s *TreeService) LeafRange() (merkle.ArrayIndex, merkle.ArrayIndex) {
	return s.tree.LeafRange()
}

// Node returns the digest stored at index
func (s *TreeService) Node(index merkle.ArrayIndex) (string, error) {
	return s.tree.Node(index)
}

// Set writes one leaf and persists the tree
func (s *TreeService) Set(index merkle.ArrayIndex, value string) error {
	return s.tree.Update(func(mt *merkle.MerkleTree) error {
		// Empty when index is not a slot; Set rejects it below
		previous, _ := mt.Node(index)

		if err := mt.Set(index, value); err != nil {
			return err
		}

		if err := s.save(mt); err != nil {
			if revertErr := mt.Set(index, previous); revertErr != nil {
				s.logger.Sugar().Errorw("Failed to revert leaf after save failure", "index", index, "error", revertErr)
			}
			return err
		}

		s.logger.Debug("Leaf set", zap.Uint64("index", uint64(index)), zap.String("root", mt.Root()))
		return nil
	})
}

// SetBatch writes several leaves at once and persists the tree a single time
func (s *TreeService) SetBatch(updates map[merkle.ArrayIndex]string) error {
	return s.tree.Update(func(mt *merkle.MerkleTree) error {
		previous := make(map[merkle.ArrayIndex]string, len(updates))
		for index := range updates {
			if value, err := mt.Node(index); err == nil {
				previous[index] = value
			}
		}

		if err := mt.SetBatch(updates); err != nil {
			return err
		}

		if err := s.save(mt); err != nil {
			if revertErr := mt.SetBatch(previous); revertErr != nil {
				s.logger.Sugar().Errorw("Failed to revert batch after save failure", "count", len(updates), "error", revertErr)
			}
			return err
		}

		s.logger.Debug("Leaf batch set", zap.Int("count", len(updates)), zap.String("root", mt.Root()))
		return nil
	})
}

func (s *TreeService) Proof(leaf merkle.LeafOffset) (merkle.ProofPath, error) {
	return s.tree.Proof(leaf)
}

// ProofWithRoot returns the path for leaf together with the root it proves against,
// both read from the same tree state.
func (s *TreeService) ProofWithRoot(leaf merkle.LeafOffset) (merkle.ProofPath, string, error) {
	var (
		path merkle.ProofPath
		root string
	)
	err := s.tree.View(func(mt *merkle.MerkleTree) error {
		var err error
		path, err = mt.Proof(leaf)
		root = mt.Root()
		return err
	})
	if err != nil {
		return nil, "", err
	}
	return path, root, nil
}

// Leaves returns up to limit leaves starting at offset within the leaf range, with
// the total leaf count.
func (s *TreeService) Leaves(offset, limit uint64) ([]string, uint64, error) {
	var (
		values []string
		total  uint64
	)
	err := s.tree.View(func(mt *merkle.MerkleTree) error {
		total = mt.LeafCount()
		if offset >= total {
			return nil
		}
		end := offset + limit
		if end > total || end < offset {
			end = total
		}
		values = make([]string, 0, end-offset)
		for o := offset; o < end; o++ {
			index, err := mt.LeafIndex(merkle.LeafOffset(o))
			if err != nil {
				return err
			}
			value, err := mt.Node(index)
			if err != nil {
				return err
			}
			values = append(values, value)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return values, total, nil
}

// Verify folds path over leaf and returns the computed root
func (s *TreeService) Verify(path merkle.ProofPath, leaf string) (string, error) {
	return s.tree.Verify(path, leaf)
}

// VerifyAgainstRoot reports whether path proves leaf under the current root
func (s *TreeService) VerifyAgainstRoot(path merkle.ProofPath, leaf string) (bool, error) {
	return merkle.VerifyAgainst(s.tree.Hasher(), path, leaf, s.tree.Root())
}

func (s *TreeService) Snapshot() *merkle.Snapshot {
	return s.tree.Snapshot()
}

func (s *TreeService) Dump(w io.Writer) error {
	return s.tree.Dump(w)
}

// HealthCheck reports the store's health
func (s *TreeService) HealthCheck() error {
	return s.store.HealthCheck()
}

// Close closes the underlying store
func (s *TreeService) Close() error {
	return s.store.Close()
}
