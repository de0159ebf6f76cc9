// Package sqlstore implements core.Store on SQLite through database/sql.
//
// It suits single-vendor installs, the CLI and tests. Prices are kept as
// decimal text so no precision is lost, and voice tags as a JSON array.
package sqlstore

import (
	"database/sql"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/mattn/go-sqlite3"

	"github.com/JonMunkholm/catalog/internal/core"
)

// Store persists products and audit entries in SQLite.
type Store struct {
	db *sql.DB
}

var (
	_ core.Store     = (*Store)(nil)
	_ core.AuditSink = (*Store)(nil)
)

// New wraps an open database. The caller owns db.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Open opens the SQLite database at path. An in-memory database lives only
// as long as its connection, so ":memory:" is pinned to one.
func Open(path string) (*sql.DB, error) {
	dsn := path
	if path != ":memory:" && !strings.Contains(path, "?") {
		dsn = path + "?_busy_timeout=5000&_journal_mode=WAL"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "open sqlite %s", path)
	}
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, classify(errors.Wrapf(err, "ping sqlite %s", path))
	}
	return db, nil
}

// DB returns the underlying handle.
func (s *Store) DB() *sql.DB {
	return s.db
}

// classify marks errors that mean the database itself is unusable.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrConnDone) {
		return errors.Mark(err, core.ErrStoreUnavailable)
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code {
		case sqlite3.ErrCantOpen, sqlite3.ErrBusy, sqlite3.ErrLocked, sqlite3.ErrNotADB:
			return errors.Mark(err, core.ErrStoreUnavailable)
		}
		return errors.WithHintf(err, "sqlite error %s", sqliteErr.ExtendedCode)
	}
	return err
}
