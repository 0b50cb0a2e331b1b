package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Store wraps a RecordStore and provides access to typed repositories.
type Store struct {
	records RecordStore
}

// New wraps an existing RecordStore.
func New(records RecordStore) *Store {
	return &Store{records: records}
}

// Open creates a Store backed by the SQLite database at dsn.
// It applies recommended pragmas and runs auto-migration.
func Open(dsn string) (*Store, error) {
	rs, err := openSQLite(dsn)
	if err != nil {
		return nil, err
	}
	return New(rs), nil
}

// OpenPostgres creates a Store backed by a PostgreSQL connection pool and
// runs auto-migration.
func OpenPostgres(ctx context.Context, cfg PostgresConfig) (*Store, error) {
	rs, err := openPostgres(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return New(rs), nil
}

// NewMemory creates a Store that keeps everything in process memory.
func NewMemory() *Store {
	return New(newMemRecords())
}

// Backend names accepted by OpenBackend.
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// OpenBackend opens the named backend. dsn is a file path for sqlite and a
// connection URL for postgres; it is ignored for memory.
func OpenBackend(ctx context.Context, backend, dsn string) (*Store, error) {
	switch backend {
	case BackendSQLite, "":
		return Open(dsn)
	case BackendPostgres:
		cfg := DefaultPostgresConfig()
		cfg.URL = dsn
		return OpenPostgres(ctx, cfg)
	case BackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", backend)
	}
}

// Records returns the underlying record store.
func (s *Store) Records() RecordStore {
	return s.records
}

// Close closes the backend.
func (s *Store) Close() error {
	return s.records.Close()
}

// SessionRepo returns the session state repository.
func (s *Store) SessionRepo() SessionRepo {
	return &sessionRepo{records: s.records}
}

// EvidenceRepo returns the progress evidence repository.
func (s *Store) EvidenceRepo() EvidenceRepo {
	return &evidenceRepo{records: s.records}
}

// EvaluationLog returns the append-only evaluation audit log.
func (s *Store) EvaluationLog() EvaluationLog {
	return &evaluationLog{records: s.records}
}

// EventRepo returns the LLM request event repository.
func (s *Store) EventRepo() EventRepo {
	return &eventRepo{records: s.records}
}

// DefaultDBPath resolves the database file path in priority order:
// 1. GCSE_DB environment variable
// 2. $XDG_DATA_HOME/gcsetutor/gcsetutor.db
// 3. ~/.local/share/gcsetutor/gcsetutor.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("GCSE_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "gcsetutor", "gcsetutor.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}
