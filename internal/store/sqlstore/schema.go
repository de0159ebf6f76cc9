package sqlstore

import (
	"context"

	"github.com/cockroachdb/errors"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS products (
	id          TEXT PRIMARY KEY,
	vendor_id   TEXT NOT NULL,
	name        TEXT NOT NULL,
	price_ngn   TEXT NOT NULL,
	stock_level INTEGER NOT NULL DEFAULT 0,
	category    TEXT,
	description TEXT,
	voice_tags  TEXT NOT NULL DEFAULT '[]',
	image_url   TEXT,
	created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
)`,
	`CREATE INDEX IF NOT EXISTS products_vendor_name_idx ON products (vendor_id, name)`,
	`CREATE INDEX IF NOT EXISTS products_vendor_category_idx ON products (vendor_id, category)`,
	`CREATE TABLE IF NOT EXISTS catalog_audit_log (
	id            TEXT PRIMARY KEY,
	action        TEXT NOT NULL,
	severity      TEXT NOT NULL,
	vendor_id     TEXT NOT NULL,
	operation_id  TEXT,
	ip_address    TEXT,
	user_agent    TEXT,
	rows_affected INTEGER NOT NULL DEFAULT 0,
	error_count   INTEGER NOT NULL DEFAULT 0,
	detail        TEXT,
	created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
)`,
	`CREATE INDEX IF NOT EXISTS catalog_audit_log_vendor_idx ON catalog_audit_log (vendor_id, created_at)`,
}

// Migrate creates the products and audit tables if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return classify(errors.Wrap(err, "begin migration"))
	}
	defer tx.Rollback()

	for i, stmt := range schema {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return classify(errors.Wrapf(err, "apply schema statement %d", i+1))
		}
	}
	return errors.Wrap(tx.Commit(), "commit migration")
}
