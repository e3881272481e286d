package leveldb

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"
	"go.uber.org/zap"

	"github.com/Layr-Labs/merkletree-go/pkg/persistence"
)

// Key prefixes for namespacing
const (
	keyPrefixTree        = "tree:"
	keySchemaVersion     = "metadata:schema_version"
	currentSchemaVersion = "v1"
)

// LevelDBPersistence stores tree records in an embedded LevelDB database.
// Iteration is in key order, so listings come back sorted without extra work.
type LevelDBPersistence struct {
	db     *leveldb.DB
	logger *zap.Logger
	mu     sync.RWMutex
	closed bool
}

// syncWrites makes every put durable before returning
var syncWrites = &opt.WriteOptions{Sync: true}

// NewLevelDBPersistence opens (or creates) a LevelDB database at dataPath.
func NewLevelDBPersistence(dataPath string, logger *zap.Logger) (*LevelDBPersistence, error) {
	absPath, err := filepath.Abs(dataPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	db, err := leveldb.OpenFile(absPath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open leveldb database at %s: %w", absPath, err)
	}

	lp := &LevelDBPersistence{
		db:     db,
		logger: logger,
	}

	if err := lp.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Sugar().Infow("LevelDB persistence initialized", "path", absPath)

	return lp, nil
}

// initSchema initializes or validates the schema version
func (l *LevelDBPersistence) initSchema() error {
	existing, err := l.db.Get([]byte(keySchemaVersion), nil)
	if err == leveldb.ErrNotFound {
		return l.db.Put([]byte(keySchemaVersion), []byte(currentSchemaVersion), syncWrites)
	}
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	if string(existing) != currentSchemaVersion {
		return fmt.Errorf("unsupported schema version: %s (expected: %s)", existing, currentSchemaVersion)
	}

	return nil
}

func treeKey(name string) []byte {
	return []byte(keyPrefixTree + name)
}

// SaveTree persists a tree record
func (l *LevelDBPersistence) SaveTree(record *persistence.TreeRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.closed {
		return persistence.ErrClosed
	}

	data, err := persistence.MarshalTreeRecord(record)
	if err != nil {
		return fmt.Errorf("failed to marshal TreeRecord: %w", err)
	}

	if err := l.db.Put(treeKey(record.Name), data, syncWrites); err != nil {
		return fmt.Errorf("failed to save TreeRecord: %w", err)
	}

	return nil
}

// LoadTree retrieves a tree record
func (l *LevelDBPersistence) LoadTree(name string) (*persistence.TreeRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.closed {
		return nil, persistence.ErrClosed
	}

	data, err := l.db.Get(treeKey(name), nil)
	if err == leveldb.ErrNotFound {
		return nil, nil // Not found is not an error
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load TreeRecord: %w", err)
	}

	record, err := persistence.UnmarshalTreeRecord(data)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal TreeRecord: %w", err)
	}

	return record, nil
}

// ListTrees returns all tree names sorted ascending
func (l *LevelDBPersistence) ListTrees() ([]string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.closed {
		return nil, persistence.ErrClosed
	}

	iter := l.db.NewIterator(util.BytesPrefix([]byte(keyPrefixTree)), nil)
	defer iter.Release()

	names := []string{}
	for iter.Next() {
		names = append(names, string(iter.Key()[len(keyPrefixTree):]))
	}

	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("failed to list trees: %w", err)
	}

	return names, nil
}

// DeleteTree removes a tree record
func (l *LevelDBPersistence) DeleteTree(name string) error {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.closed {
		return persistence.ErrClosed
	}

	// Deleting a missing key is not an error in LevelDB
	return l.db.Delete(treeKey(name), syncWrites)
}

// Close shuts down the persistence layer
func (l *LevelDBPersistence) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil // Already closed, idempotent
	}
	l.closed = true

	if err := l.db.Close(); err != nil {
		return fmt.Errorf("failed to close leveldb database: %w", err)
	}

	l.logger.Sugar().Info("LevelDB persistence closed")
	return nil
}

// HealthCheck verifies the persistence layer is operational
func (l *LevelDBPersistence) HealthCheck() error {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.closed {
		return persistence.ErrClosed
	}

	_, err := l.db.Get([]byte(keySchemaVersion), nil)
	if err == leveldb.ErrNotFound {
		return fmt.Errorf("schema version not found - database may be corrupted")
	}
	return err
}
