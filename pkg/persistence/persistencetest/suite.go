// Package persistencetest holds the behavior every ITreeStore backend must share.
package persistencetest

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Layr-Labs/merkletree-go/internal/testutil"
	"github.com/Layr-Labs/merkletree-go/pkg/merkle"
	"github.com/Layr-Labs/merkletree-go/pkg/persistence"
)

// StoreFactory opens a fresh, empty store for a single subtest.
type StoreFactory func(t *testing.T) persistence.ITreeStore

// NewRecord builds a record for a depth 4 tree whose first leaf is set to the given digit.
func NewRecord(t *testing.T, name string, digit int) *persistence.TreeRecord {
	t.Helper()

	mt, err := merkle.NewMerkleTree(4, testutil.ZeroLeaf)
	require.NoError(t, err)
	low, _ := mt.LeafRange()
	require.NoError(t, mt.Set(low, testutil.RepeatedDigest(digit)))

	return persistence.NewTreeRecord(name, mt.Snapshot())
}

// RunStoreSuite runs the shared ITreeStore behavior against a backend.
func RunStoreSuite(t *testing.T, newStore StoreFactory) {
	t.Run("SaveAndLoad", func(t *testing.T) {
		store := newStore(t)
		defer func() { _ = store.Close() }()

		record := NewRecord(t, "accounts", 1)
		require.NoError(t, store.SaveTree(record))

		loaded, err := store.LoadTree("accounts")
		require.NoError(t, err)
		require.NotNil(t, loaded)
		assert.Equal(t, record, loaded)

		mt, err := merkle.RestoreMerkleTree(loaded.Snapshot)
		require.NoError(t, err)
		assert.Equal(t, record.Root, mt.Root())
	})

	t.Run("LoadNotFound", func(t *testing.T) {
		store := newStore(t)
		defer func() { _ = store.Close() }()

		loaded, err := store.LoadTree("missing")
		require.NoError(t, err)
		assert.Nil(t, loaded)
	})

	t.Run("SaveInvalid", func(t *testing.T) {
		store := newStore(t)
		defer func() { _ = store.Close() }()

		err := store.SaveTree(nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "nil TreeRecord")

		require.Error(t, store.SaveTree(&persistence.TreeRecord{Name: "accounts"}))
	})

	t.Run("Overwrite", func(t *testing.T) {
		store := newStore(t)
		defer func() { _ = store.Close() }()

		require.NoError(t, store.SaveTree(NewRecord(t, "accounts", 1)))
		second := NewRecord(t, "accounts", 2)
		require.NoError(t, store.SaveTree(second))

		loaded, err := store.LoadTree("accounts")
		require.NoError(t, err)
		require.NotNil(t, loaded)
		assert.Equal(t, second.Root, loaded.Root)

		names, err := store.ListTrees()
		require.NoError(t, err)
		assert.Equal(t, []string{"accounts"}, names)
	})

	t.Run("ListSorted", func(t *testing.T) {
		store := newStore(t)
		defer func() { _ = store.Close() }()

		names, err := store.ListTrees()
		require.NoError(t, err)
		assert.Empty(t, names)

		for i, name := range []string{"zeta", "alpha", "mid"} {
			require.NoError(t, store.SaveTree(NewRecord(t, name, i)))
		}

		names, err = store.ListTrees()
		require.NoError(t, err)
		assert.Equal(t, []string{"alpha", "mid", "zeta"}, names)
	})

	t.Run("Delete", func(t *testing.T) {
		store := newStore(t)
		defer func() { _ = store.Close() }()

		require.NoError(t, store.SaveTree(NewRecord(t, "accounts", 1)))
		require.NoError(t, store.DeleteTree("accounts"))

		loaded, err := store.LoadTree("accounts")
		require.NoError(t, err)
		assert.Nil(t, loaded)

		names, err := store.ListTrees()
		require.NoError(t, err)
		assert.Empty(t, names)

		// Idempotent
		require.NoError(t, store.DeleteTree("accounts"))
	})

	t.Run("HealthCheck", func(t *testing.T) {
		store := newStore(t)
		defer func() { _ = store.Close() }()

		require.NoError(t, store.HealthCheck())
	})

	t.Run("Closed", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.Close())
		require.NoError(t, store.Close(), "Close should be idempotent")

		assert.True(t, errors.Is(store.SaveTree(NewRecord(t, "accounts", 1)), persistence.ErrClosed))
		_, err := store.LoadTree("accounts")
		assert.True(t, errors.Is(err, persistence.ErrClosed))
		_, err = store.ListTrees()
		assert.True(t, errors.Is(err, persistence.ErrClosed))
		assert.True(t, errors.Is(store.DeleteTree("accounts"), persistence.ErrClosed))
		assert.True(t, errors.Is(store.HealthCheck(), persistence.ErrClosed))
	})

	t.Run("ConcurrentAccess", func(t *testing.T) {
		store := newStore(t)
		defer func() { _ = store.Close() }()

		records := make([]*persistence.TreeRecord, 10)
		for i := range records {
			records[i] = NewRecord(t, fmt.Sprintf("tree-%02d", i), i)
		}

		var wg sync.WaitGroup
		for _, record := range records {
			wg.Add(1)
			go func(record *persistence.TreeRecord) {
				defer wg.Done()
				assert.NoError(t, store.SaveTree(record))
				_, err := store.LoadTree(record.Name)
				assert.NoError(t, err)
			}(record)
		}
		wg.Wait()

		names, err := store.ListTrees()
		require.NoError(t, err)
		assert.Len(t, names, 10)
	})
}
