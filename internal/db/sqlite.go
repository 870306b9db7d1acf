// Package db manages the SQLite connections tt's event store uses,
// following a single-writer, multi-reader concurrency model.
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/kandev/tt/internal/errs"
)

const defaultReaderConns = 4

// OpenSQLite opens the single writer connection to path, creating the
// containing directory and file if necessary and enabling WAL mode.
func OpenSQLite(path string) (*sql.DB, error) {
	if err := ensureDir(path); err != nil {
		return nil, err
	}
	dsn := fmt.Sprintf(
		"file:%s?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on&_synchronous=NORMAL",
		path,
	)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errs.New(errs.StoreIO, "db.OpenSQLite", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errs.New(errs.StoreIO, "db.OpenSQLite", err)
	}
	return db, nil
}

// OpenSQLiteReader opens a read-only connection pool to path. Callers
// must only ever query through it, never write.
func OpenSQLiteReader(path string) (*sql.DB, error) {
	dsn := fmt.Sprintf(
		"file:%s?mode=ro&_journal_mode=WAL&_busy_timeout=5000",
		path,
	)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errs.New(errs.StoreIO, "db.OpenSQLiteReader", err)
	}
	db.SetMaxOpenConns(defaultReaderConns)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errs.New(errs.StoreIO, "db.OpenSQLiteReader", err)
	}
	return db, nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errs.New(errs.StoreIO, "db.ensureDir", err)
	}
	return nil
}
