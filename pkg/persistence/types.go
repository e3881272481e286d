package persistence

import (
	"fmt"
	"time"

	"github.com/Layr-Labs/merkletree-go/pkg/merkle"
)

// TreeRecord is the persisted form of a named Merkle tree.
type TreeRecord struct {
	// Name identifies the tree and serves as the primary key for storage.
	Name string `json:"name"`

	// Root is the 0x-prefixed root digest at the time of the save.
	// Stored alongside the snapshot so listings don't need to decode nodes.
	Root string `json:"root"`

	// UpdatedAt is the Unix timestamp of the save.
	UpdatedAt int64 `json:"updatedAt"`

	// Snapshot holds every node of the tree.
	Snapshot *merkle.Snapshot `json:"snapshot"`
}

// NewTreeRecord captures the current state of a tree under the given name.
func NewTreeRecord(name string, snapshot *merkle.Snapshot) *TreeRecord {
	record := &TreeRecord{
		Name:      name,
		UpdatedAt: time.Now().Unix(),
		Snapshot:  snapshot,
	}
	if snapshot != nil && len(snapshot.Nodes) > 0 {
		record.Root = snapshot.Nodes[0]
	}
	return record
}

// Validate checks that the record can be stored.
func (r *TreeRecord) Validate() error {
	if r == nil {
		return fmt.Errorf("cannot save nil TreeRecord")
	}
	if r.Name == "" {
		return fmt.Errorf("tree name cannot be empty")
	}
	if r.Snapshot == nil {
		return fmt.Errorf("tree %s has no snapshot", r.Name)
	}
	return nil
}
