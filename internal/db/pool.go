package db

import (
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/kandev/tt/internal/errs"
)

// Pool holds the writer connection and an independent reader pool
// against the same SQLite file.
type Pool struct {
	writer *sqlx.DB
	reader *sqlx.DB
}

// Open opens both the writer and reader connections to the database
// at path.
func Open(path string) (*Pool, error) {
	writerConn, err := OpenSQLite(path)
	if err != nil {
		return nil, err
	}
	readerConn, err := OpenSQLiteReader(path)
	if err != nil {
		writerConn.Close()
		return nil, err
	}
	return &Pool{
		writer: sqlx.NewDb(writerConn, "sqlite3"),
		reader: sqlx.NewDb(readerConn, "sqlite3"),
	}, nil
}

// NewPool wraps pre-opened writer/reader connections, used by tests
// that need an in-memory or single-connection setup.
func NewPool(writer, reader *sql.DB) *Pool {
	p := &Pool{writer: sqlx.NewDb(writer, "sqlite3")}
	if reader == writer {
		p.reader = p.writer
	} else {
		p.reader = sqlx.NewDb(reader, "sqlite3")
	}
	return p
}

// Writer returns the single writer connection.
func (p *Pool) Writer() *sqlx.DB { return p.writer }

// Reader returns the read-only connection pool.
func (p *Pool) Reader() *sqlx.DB { return p.reader }

// Close closes both connections, avoiding a double close when the
// writer and reader share the same underlying connection.
func (p *Pool) Close() error {
	if err := p.writer.Close(); err != nil {
		return errs.New(errs.StoreIO, "db.Pool.Close", err)
	}
	if p.reader != p.writer {
		if err := p.reader.Close(); err != nil {
			return errs.New(errs.StoreIO, "db.Pool.Close", err)
		}
	}
	return nil
}
