// Package pgstore implements core.Store on PostgreSQL through pgx.
package pgstore

import (
	"context"
	"net/url"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/catalog/internal/config"
	"github.com/JonMunkholm/catalog/internal/core"
)

// DBTX is the subset of pgx used by the store.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
}

// Store persists products and audit entries in PostgreSQL.
type Store struct {
	db DBTX
}

var (
	_ core.Store     = (*Store)(nil)
	_ core.AuditSink = (*Store)(nil)
)

// New wraps db.
func New(db DBTX) *Store {
	return &Store{db: db}
}

// Connect opens a pool configured from cfg and verifies it with a ping.
func Connect(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, errors.Wrap(err, "parse database url")
	}

	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, classify(errors.Wrap(err, "create pool"))
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, classify(errors.Wrap(err, "ping database"))
	}

	return pool, nil
}

// DatabaseName extracts the database name from a connection URL for logging.
func DatabaseName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Path, "/")
}

// classify marks connectivity failures so callers can tell a down database
// from a failed statement.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) || pgconn.Timeout(err) {
		return errors.Mark(err, core.ErrStoreUnavailable)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return errors.WithHintf(err, "postgres error %s on %s", pgErr.Code, pgErr.TableName)
	}
	return err
}
