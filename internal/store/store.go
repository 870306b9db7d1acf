package store

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/kandev/tt/internal/db"
	"github.com/kandev/tt/internal/errs"
)

// Store is the event store and stream registry, backed by a
// single-writer, multi-reader SQLite pool.
type Store struct {
	pool *db.Pool
}

// Open opens the SQLite-backed store at path, bootstrapping its
// schema on first use and refusing to proceed if an existing store's
// schema version disagrees with CurrentSchemaVersion.
func Open(path string) (*Store, error) {
	pool, err := db.Open(path)
	if err != nil {
		return nil, err
	}
	s := &Store{pool: pool}
	if err := s.bootstrap(); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// NewWithPool wraps a pre-opened pool, used by tests.
func NewWithPool(pool *db.Pool) (*Store, error) {
	s := &Store{pool: pool}
	if err := s.bootstrap(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) bootstrap() error {
	w := s.pool.Writer()
	for _, stmt := range schemaStatements {
		if _, err := w.Exec(stmt); err != nil {
			return errs.New(errs.StoreIO, "store.bootstrap", err)
		}
	}
	for _, stmt := range indexStatements {
		if _, err := w.Exec(stmt); err != nil {
			return errs.New(errs.StoreIO, "store.bootstrap", err)
		}
	}

	var version int
	err := w.Get(&version, `SELECT version FROM schema_info WHERE id = 1`)
	switch {
	case err == nil:
		if version != CurrentSchemaVersion {
			return errs.New(errs.SchemaVersionMismatch, "store.bootstrap",
				fmt.Errorf("store schema version %d, code expects %d", version, CurrentSchemaVersion))
		}
	case isNoRows(err):
		if _, err := w.Exec(`INSERT INTO schema_info (id, version) VALUES (1, ?)`, CurrentSchemaVersion); err != nil {
			return errs.New(errs.StoreIO, "store.bootstrap", err)
		}
	default:
		return errs.New(errs.StoreIO, "store.bootstrap", err)
	}
	return nil
}

func isNoRows(err error) bool {
	return err != nil && err.Error() == "sql: no rows in result set"
}

// Close releases the store's underlying connections.
func (s *Store) Close() error { return s.pool.Close() }

// Writer exposes the writer connection for components that need
// transactional access spanning multiple store operations (recompute).
func (s *Store) Writer() *sqlx.DB { return s.pool.Writer() }

// Reader exposes the reader connection pool.
func (s *Store) Reader() *sqlx.DB { return s.pool.Reader() }
