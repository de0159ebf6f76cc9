package pgstore

import (
	"context"

	"github.com/cockroachdb/errors"
)

// schema is applied statement by statement so each failure names its table.
// The (vendor_id, name) index is deliberately not UNIQUE: imports look up by
// name before inserting and accept the race between two concurrent imports.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS products (
	id          UUID PRIMARY KEY,
	vendor_id   TEXT NOT NULL,
	name        TEXT NOT NULL,
	price_ngn   NUMERIC NOT NULL CHECK (price_ngn >= 0),
	stock_level INTEGER NOT NULL DEFAULT 0,
	category    TEXT,
	description TEXT,
	voice_tags  TEXT[] NOT NULL DEFAULT '{}',
	image_url   TEXT,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
	`CREATE INDEX IF NOT EXISTS products_vendor_name_idx ON products (vendor_id, name)`,
	`CREATE INDEX IF NOT EXISTS products_vendor_category_idx ON products (vendor_id, category)`,
	`CREATE TABLE IF NOT EXISTS catalog_audit_log (
	id            UUID PRIMARY KEY,
	action        TEXT NOT NULL,
	severity      TEXT NOT NULL,
	vendor_id     TEXT NOT NULL,
	operation_id  TEXT,
	ip_address    TEXT,
	user_agent    TEXT,
	rows_affected INTEGER NOT NULL DEFAULT 0,
	error_count   INTEGER NOT NULL DEFAULT 0,
	detail        JSONB,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
	`CREATE INDEX IF NOT EXISTS catalog_audit_log_vendor_idx ON catalog_audit_log (vendor_id, created_at DESC)`,
}

// Migrate creates the products and audit tables if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	for i, stmt := range schema {
		if _, err := s.db.Exec(ctx, stmt); err != nil {
			return classify(errors.Wrapf(err, "apply schema statement %d", i+1))
		}
	}
	return nil
}
