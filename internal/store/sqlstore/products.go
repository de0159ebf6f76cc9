package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/JonMunkholm/catalog/internal/core"
)

const productColumns = `id, vendor_id, name, price_ngn, stock_level, category, description, voice_tags, image_url`

const (
	selectByVendorAndName = `SELECT ` + productColumns + ` FROM products
WHERE vendor_id = ? AND name = ?
ORDER BY created_at, rowid
LIMIT 1`

	selectByIDAndVendor = `SELECT ` + productColumns + ` FROM products
WHERE id = ? AND vendor_id = ?`

	selectByVendor = `SELECT ` + productColumns + ` FROM products
WHERE vendor_id = ?
ORDER BY created_at, rowid`

	selectByVendorAndCategory = `SELECT ` + productColumns + ` FROM products
WHERE vendor_id = ? AND category = ?
ORDER BY created_at, rowid`

	insertProduct = `INSERT INTO products (` + productColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
)

// FindByVendorAndName returns the vendor's product with exactly this name.
// The comparison is case-sensitive; when several rows share the name the
// oldest wins. It returns core.ErrNotFound when nothing matches.
func (s *Store) FindByVendorAndName(ctx context.Context, vendorID, name string) (core.Product, error) {
	p, err := scanProduct(s.db.QueryRowContext(ctx, selectByVendorAndName, vendorID, name))
	if err != nil {
		return core.Product{}, wrapLookup(err, "find product %q", name)
	}
	return p, nil
}

// FindByIDAndVendor returns the product only if it belongs to the vendor,
// and core.ErrNotFound otherwise.
func (s *Store) FindByIDAndVendor(ctx context.Context, id, vendorID string) (core.Product, error) {
	p, err := scanProduct(s.db.QueryRowContext(ctx, selectByIDAndVendor, id, vendorID))
	if err != nil {
		return core.Product{}, wrapLookup(err, "find product %s", id)
	}
	return p, nil
}

// Insert stores p under a new random id and returns it. The price is written
// as decimal text and the voice tags as a JSON array.
func (s *Store) Insert(ctx context.Context, p core.Product) (string, error) {
	id := uuid.NewString()
	tags, err := encodeTags(p.VoiceTags)
	if err != nil {
		return "", err
	}

	_, err = s.db.ExecContext(ctx, insertProduct,
		id,
		p.VendorID,
		p.Name,
		p.Price.String(),
		p.StockLevel,
		p.Category,
		p.Description,
		tags,
		p.ImageURL,
	)
	if err != nil {
		return "", classify(errors.Wrapf(err, "insert product %q", p.Name))
	}
	return id, nil
}

// Update writes the patched columns of product id and bumps updated_at.
// An id that matches no row returns a wrapped core.ErrNotFound.
func (s *Store) Update(ctx context.Context, id string, patch core.ProductPatch) error {
	query, args, err := buildUpdate(id, patch)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return classify(errors.Wrapf(err, "update product %s", id))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "rows affected")
	}
	if n == 0 {
		return errors.Wrapf(core.ErrNotFound, "update product %s", id)
	}
	return nil
}

// ListByVendor returns every product of the vendor, oldest first.
func (s *Store) ListByVendor(ctx context.Context, vendorID string) ([]core.Product, error) {
	return s.list(ctx, selectByVendor, vendorID)
}

// ListByVendorAndCategory returns the vendor's products in category, oldest
// first. The category match is exact.
func (s *Store) ListByVendorAndCategory(ctx context.Context, vendorID, category string) ([]core.Product, error) {
	return s.list(ctx, selectByVendorAndCategory, vendorID, category)
}

func (s *Store) list(ctx context.Context, query string, args ...any) ([]core.Product, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(errors.Wrap(err, "list products"))
	}
	defer rows.Close()

	products := []core.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(errors.Wrap(err, "list products"))
	}
	return products, nil
}

// buildUpdate renders an UPDATE touching only the patch's columns.
func buildUpdate(id string, patch core.ProductPatch) (string, []any, error) {
	if len(patch.Fields) == 0 {
		return "", nil, errors.New("update with no fields")
	}

	p := patch.Product
	sets := make([]string, 0, len(patch.Fields)+1)
	args := make([]any, 0, len(patch.Fields)+1)

	for _, col := range patch.Fields {
		var v any
		switch col {
		case core.ColVendorID:
			v = p.VendorID
		case core.ColName:
			v = p.Name
		case core.ColPrice:
			v = p.Price.String()
		case core.ColStockLevel:
			v = p.StockLevel
		case core.ColCategory:
			v = p.Category
		case core.ColDescription:
			v = p.Description
		case core.ColVoiceTags:
			tags, err := encodeTags(p.VoiceTags)
			if err != nil {
				return "", nil, err
			}
			v = tags
		case core.ColImageURL:
			v = p.ImageURL
		default:
			return "", nil, errors.Newf("unknown product column %q", col)
		}
		sets = append(sets, fmt.Sprintf("%q = ?", col))
		args = append(args, v)
	}
	sets = append(sets, "updated_at = CURRENT_TIMESTAMP")
	args = append(args, id)

	return "UPDATE products SET " + strings.Join(sets, ", ") + " WHERE id = ?", args, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanProduct reads one row in productColumns order, decoding the price
// text and the JSON tag array.
func scanProduct(row scanner) (core.Product, error) {
	var (
		p     core.Product
		price string
		tags  string
	)
	err := row.Scan(
		&p.ID,
		&p.VendorID,
		&p.Name,
		&price,
		&p.StockLevel,
		&p.Category,
		&p.Description,
		&tags,
		&p.ImageURL,
	)
	if err != nil {
		return core.Product{}, err
	}

	if p.Price, err = decimal.NewFromString(price); err != nil {
		return core.Product{}, errors.Wrapf(err, "decode price of product %s", p.ID)
	}
	if p.VoiceTags, err = decodeTags(tags); err != nil {
		return core.Product{}, errors.Wrapf(err, "decode voice tags of product %s", p.ID)
	}
	return p, nil
}

// encodeTags renders tags as a JSON array; nil and empty both become "[]".
func encodeTags(tags []string) (string, error) {
	if len(tags) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", errors.Wrap(err, "encode voice tags")
	}
	return string(b), nil
}

// decodeTags parses the stored JSON array, reading an empty column as no tags.
func decodeTags(s string) ([]string, error) {
	tags := []string{}
	if s == "" {
		return tags, nil
	}
	if err := json.Unmarshal([]byte(s), &tags); err != nil {
		return nil, err
	}
	if tags == nil {
		tags = []string{}
	}
	return tags, nil
}

// wrapLookup maps sql.ErrNoRows to core.ErrNotFound.
func wrapLookup(err error, format string, args ...any) error {
	if errors.Is(err, sql.ErrNoRows) {
		return core.ErrNotFound
	}
	return classify(errors.Wrapf(err, format, args...))
}
