package badger

import (
	"testing"

	badgerdb "github.com/dgraph-io/badger/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Layr-Labs/merkletree-go/pkg/logger"
	"github.com/Layr-Labs/merkletree-go/pkg/persistence"
	"github.com/Layr-Labs/merkletree-go/pkg/persistence/persistencetest"
)

var _ persistence.ITreeStore = (*BadgerPersistence)(nil)

func newTestLogger() *zap.Logger {
	l, _ := logger.NewLogger(&logger.LoggerConfig{Debug: false})
	return l
}

func TestBadgerPersistence(t *testing.T) {
	persistencetest.RunStoreSuite(t, func(t *testing.T) persistence.ITreeStore {
		bp, err := NewBadgerPersistence(t.TempDir(), newTestLogger())
		require.NoError(t, err)
		return bp
	})
}

func TestBadgerPersistence_SurvivesReopen(t *testing.T) {
	tmpDir := t.TempDir()
	testLogger := newTestLogger()

	bp, err := NewBadgerPersistence(tmpDir, testLogger)
	require.NoError(t, err)

	record := persistencetest.NewRecord(t, "accounts", 7)
	require.NoError(t, bp.SaveTree(record))
	require.NoError(t, bp.Close())

	reopened, err := NewBadgerPersistence(tmpDir, testLogger)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	loaded, err := reopened.LoadTree("accounts")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, record.Root, loaded.Root)
	assert.Equal(t, record.Snapshot, loaded.Snapshot)
}

func TestBadgerPersistence_SchemaMismatch(t *testing.T) {
	tmpDir := t.TempDir()
	testLogger := newTestLogger()

	bp, err := NewBadgerPersistence(tmpDir, testLogger)
	require.NoError(t, err)
	err = bp.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Set([]byte(keySchemaVersion), []byte("v0"))
	})
	require.NoError(t, err)
	require.NoError(t, bp.Close())

	_, err = NewBadgerPersistence(tmpDir, testLogger)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported schema version")
}
