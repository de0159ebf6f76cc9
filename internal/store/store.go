// Package store selects and opens the product store named by configuration.
package store

import (
	"context"
	"log/slog"

	"github.com/cockroachdb/errors"

	"github.com/JonMunkholm/catalog/internal/config"
	"github.com/JonMunkholm/catalog/internal/core"
	"github.com/JonMunkholm/catalog/internal/store/pgstore"
	"github.com/JonMunkholm/catalog/internal/store/sqlstore"
)

// Backend is what both store implementations provide.
type Backend interface {
	core.Store
	core.AuditSink
	AuditEntries(ctx context.Context, vendorID string, limit int) ([]core.AuditEntry, error)
	Migrate(ctx context.Context) error
}

var (
	_ Backend = (*pgstore.Store)(nil)
	_ Backend = (*sqlstore.Store)(nil)
)

// Open connects to the configured store and, when STORE_AUTO_MIGRATE is set,
// creates its tables. The returned func releases the connection.
func Open(ctx context.Context, cfg *config.Config) (Backend, func(), error) {
	var (
		backend Backend
		closeFn func()
	)

	switch cfg.Store.Driver {
	case config.DriverPostgres:
		pool, err := pgstore.Connect(ctx, cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("connected to database", "driver", cfg.Store.Driver, "name", pgstore.DatabaseName(cfg.Database.URL))
		backend, closeFn = pgstore.New(pool), pool.Close

	case config.DriverSQLite:
		db, err := sqlstore.Open(cfg.Store.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("opened database", "driver", cfg.Store.Driver, "path", cfg.Store.SQLitePath)
		backend, closeFn = sqlstore.New(db), func() { db.Close() }

	default:
		return nil, nil, errors.Newf("unknown store driver %q", cfg.Store.Driver)
	}

	if cfg.Store.AutoMigrate {
		if err := backend.Migrate(ctx); err != nil {
			closeFn()
			return nil, nil, errors.Wrap(err, "migrate")
		}
	}
	return backend, closeFn, nil
}
