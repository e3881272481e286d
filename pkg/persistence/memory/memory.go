package memory

import (
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/Layr-Labs/merkletree-go/pkg/persistence"
)

// MemoryPersistence is an in-memory implementation of ITreeStore.
// This implementation is intended for TESTING and one-shot CLI runs.
//
// All data is stored in memory and will be lost when the process exits.
// Thread-safe using sync.RWMutex for concurrent access.
// Records are kept in serialized form so callers never share memory with the store.
type MemoryPersistence struct {
	mu sync.RWMutex

	// Tree storage: name -> serialized TreeRecord
	trees map[string][]byte

	// Closed flag
	closed bool
}

// NewMemoryPersistence creates a new in-memory persistence layer.
// Prints a loud warning to stderr since nothing survives a restart.
func NewMemoryPersistence() *MemoryPersistence {
	fmt.Fprintln(os.Stderr, "WARNING: Using in-memory tree store - ALL TREES WILL BE LOST ON RESTART")

	return &MemoryPersistence{
		trees: make(map[string][]byte),
	}
}

// SaveTree persists a tree record.
func (m *MemoryPersistence) SaveTree(record *persistence.TreeRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}

	data, err := persistence.MarshalTreeRecord(record)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return persistence.ErrClosed
	}

	m.trees[record.Name] = data
	return nil
}

// LoadTree retrieves a tree record by name.
func (m *MemoryPersistence) LoadTree(name string) (*persistence.TreeRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, persistence.ErrClosed
	}

	data, exists := m.trees[name]
	if !exists {
		return nil, nil // Not found is not an error
	}

	return persistence.UnmarshalTreeRecord(data)
}

// ListTrees returns all tree names sorted ascending.
func (m *MemoryPersistence) ListTrees() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, persistence.ErrClosed
	}

	names := make([]string, 0, len(m.trees))
	for name := range m.trees {
		names = append(names, name)
	}
	sort.Strings(names)

	return names, nil
}

// DeleteTree removes a tree record.
func (m *MemoryPersistence) DeleteTree(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return persistence.ErrClosed
	}

	delete(m.trees, name)
	return nil
}

// Close marks the store as closed and drops all records.
func (m *MemoryPersistence) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil // Already closed, idempotent
	}

	m.closed = true
	m.trees = nil
	return nil
}

// HealthCheck verifies the store is operational.
func (m *MemoryPersistence) HealthCheck() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return persistence.ErrClosed
	}

	return nil
}
