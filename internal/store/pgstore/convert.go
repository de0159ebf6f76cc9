package pgstore

import (
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// toNumeric converts a decimal price to a NUMERIC parameter.
func toNumeric(d decimal.Decimal) (pgtype.Numeric, error) {
	var n pgtype.Numeric
	if err := n.Scan(d.String()); err != nil {
		return pgtype.Numeric{}, errors.Wrapf(err, "encode price %s", d)
	}
	return n, nil
}

// fromNumeric converts a scanned NUMERIC to a decimal. NULL and NaN read as zero.
func fromNumeric(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid || n.NaN || n.Int == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(n.Int, n.Exp)
}

// toUUID parses a product id. The second return is false for malformed ids,
// which can never match a row.
func toUUID(s string) (pgtype.UUID, bool) {
	parsed, err := uuid.Parse(s)
	if err != nil {
		return pgtype.UUID{}, false
	}
	return pgtype.UUID{Bytes: parsed, Valid: true}, true
}

func fromUUID(u pgtype.UUID) string {
	if !u.Valid {
		return ""
	}
	return uuid.UUID(u.Bytes).String()
}

// tagsOrEmpty keeps NOT NULL text[] columns from receiving NULL.
func tagsOrEmpty(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
