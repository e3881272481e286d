package sqlite

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/Layr-Labs/merkletree-go/pkg/persistence"
)

var (
	// See https://www.sqlite.org/pragma.html
	kConfigureConnection = []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = FULL",
		"PRAGMA busy_timeout = 5000",
	}
)

const (
	kCreateTreeTable = "CREATE TABLE IF NOT EXISTS tree (name TEXT PRIMARY KEY, root TEXT NOT NULL, updated_at INT NOT NULL, record BLOB NOT NULL)"
	kSaveTreeStmt    = "INSERT INTO tree(name, root, updated_at, record) VALUES (?,?,?,?) ON CONFLICT(name) DO UPDATE SET root = excluded.root, updated_at = excluded.updated_at, record = excluded.record"
	kLoadTreeStmt    = "SELECT record FROM tree WHERE name = ?"
	kListTreesStmt   = "SELECT name FROM tree ORDER BY name ASC"
	kDeleteTreeStmt  = "DELETE FROM tree WHERE name = ?"
)

// SQLitePersistence stores tree records in a single SQLite file.
// The root and update time are kept in their own columns for ad hoc inspection.
type SQLitePersistence struct {
	db             *sql.DB
	saveTreeStmt   *sql.Stmt
	loadTreeStmt   *sql.Stmt
	listTreesStmt  *sql.Stmt
	deleteTreeStmt *sql.Stmt
	logger         *zap.Logger
	mu             sync.RWMutex
	closed         bool
}

// NewSQLitePersistence opens (or creates) the database file at path.
func NewSQLitePersistence(path string, logger *zap.Logger) (*SQLitePersistence, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	db, err := sql.Open("sqlite3", "file:"+absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite: %w", err)
	}
	// A single connection serializes writers and keeps the pragmas in effect
	db.SetMaxOpenConns(1)

	sp, err := initialize(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	sp.logger = logger

	logger.Sugar().Infow("SQLite persistence initialized", "path", absPath)

	return sp, nil
}

func initialize(db *sql.DB) (*SQLitePersistence, error) {
	for _, cmd := range kConfigureConnection {
		if _, err := db.Exec(cmd); err != nil {
			return nil, fmt.Errorf("failed to configure connection with %s: %w", cmd, err)
		}
	}
	if _, err := db.Exec(kCreateTreeTable); err != nil {
		return nil, fmt.Errorf("failed to create tree table: %w", err)
	}

	sp := &SQLitePersistence{db: db}
	statements := []struct {
		query string
		stmt  **sql.Stmt
	}{
		{kSaveTreeStmt, &sp.saveTreeStmt},
		{kLoadTreeStmt, &sp.loadTreeStmt},
		{kListTreesStmt, &sp.listTreesStmt},
		{kDeleteTreeStmt, &sp.deleteTreeStmt},
	}
	for _, s := range statements {
		stmt, err := db.Prepare(s.query)
		if err != nil {
			return nil, fmt.Errorf("failed to prepare %q: %w", s.query, err)
		}
		*s.stmt = stmt
	}

	return sp, nil
}

// SaveTree persists a tree record
func (s *SQLitePersistence) SaveTree(record *persistence.TreeRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return persistence.ErrClosed
	}

	data, err := persistence.MarshalTreeRecord(record)
	if err != nil {
		return fmt.Errorf("failed to marshal TreeRecord: %w", err)
	}

	if _, err := s.saveTreeStmt.Exec(record.Name, record.Root, record.UpdatedAt, data); err != nil {
		return fmt.Errorf("failed to save TreeRecord: %w", err)
	}

	return nil
}

// LoadTree retrieves a tree record
func (s *SQLitePersistence) LoadTree(name string) (*persistence.TreeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, persistence.ErrClosed
	}

	var data []byte
	err := s.loadTreeStmt.QueryRow(name).Scan(&data)
	if err == sql.ErrNoRows {
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
func (s *SQLitePersistence) ListTrees() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, persistence.ErrClosed
	}

	rows, err := s.listTreesStmt.Query()
	if err != nil {
		return nil, fmt.Errorf("failed to list trees: %w", err)
	}
	defer func() { _ = rows.Close() }()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan tree name: %w", err)
		}
		names = append(names, name)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list trees: %w", err)
	}

	return names, nil
}

// DeleteTree removes a tree record
func (s *SQLitePersistence) DeleteTree(name string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return persistence.ErrClosed
	}

	if _, err := s.deleteTreeStmt.Exec(name); err != nil {
		return fmt.Errorf("failed to delete TreeRecord: %w", err)
	}

	return nil
}

// Close shuts down the persistence layer
func (s *SQLitePersistence) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil // Already closed, idempotent
	}
	s.closed = true

	for _, stmt := range []*sql.Stmt{s.saveTreeStmt, s.loadTreeStmt, s.listTreesStmt, s.deleteTreeStmt} {
		_ = stmt.Close()
	}

	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close SQLite database: %w", err)
	}

	s.logger.Sugar().Info("SQLite persistence closed")
	return nil
}

// HealthCheck verifies the persistence layer is operational
func (s *SQLitePersistence) HealthCheck() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return persistence.ErrClosed
	}

	if err := s.db.Ping(); err != nil {
		return fmt.Errorf("sqlite health check failed: %w", err)
	}

	return nil
}
