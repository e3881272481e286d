package persistence

import "errors"

//go:generate mockgen -source interface.go -destination mocks/store_mocks.go -package mocks

// ErrClosed is returned by every store operation after Close.
var ErrClosed = errors.New("persistence layer is closed")

// ITreeStore defines the interface for persisting named Merkle trees across restarts.
// All implementations must be thread-safe as the tree service and HTTP handlers
// call into the store concurrently.
//
// The interface supports:
// - Tree record management (save, load, list, delete)
// - Lifecycle management (close, health check)
type ITreeStore interface {
	// Tree Record Management

	// SaveTree persists a tree record indexed by its name.
	// Overwrites any existing record with the same name.
	SaveTree(record *TreeRecord) error

	// LoadTree retrieves a tree record by name.
	// Returns nil if the tree doesn't exist, error only on storage failure.
	LoadTree(name string) (*TreeRecord, error)

	// ListTrees returns the names of all persisted trees sorted ascending.
	// Returns empty slice if no trees exist, error only on storage failure.
	ListTrees() ([]string, error)

	// DeleteTree removes a tree record by name.
	// Idempotent - returns nil if the tree doesn't exist.
	DeleteTree(name string) error

	// Lifecycle Management

	// Close cleanly shuts down the persistence layer.
	// Idempotent - safe to call multiple times.
	// After Close(), all other operations return ErrClosed.
	Close() error

	// HealthCheck verifies the persistence layer is operational.
	// Returns nil if healthy, error describing the problem if not.
	HealthCheck() error
}
