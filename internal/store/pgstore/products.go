package pgstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/catalog/internal/core"
)

const productColumns = `id, vendor_id, name, price_ngn, stock_level, category, description, voice_tags, image_url`

const (
	selectByVendorAndName = `SELECT ` + productColumns + ` FROM products
WHERE vendor_id = $1 AND name = $2
ORDER BY created_at, id
LIMIT 1`

	selectByIDAndVendor = `SELECT ` + productColumns + ` FROM products
WHERE id = $1 AND vendor_id = $2`

	selectByVendor = `SELECT ` + productColumns + ` FROM products
WHERE vendor_id = $1
ORDER BY created_at, id`

	selectByVendorAndCategory = `SELECT ` + productColumns + ` FROM products
WHERE vendor_id = $1 AND category = $2
ORDER BY created_at, id`

	insertProduct = `INSERT INTO products (` + productColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
)

// FindByVendorAndName returns the vendor's product with exactly this name.
func (s *Store) FindByVendorAndName(ctx context.Context, vendorID, name string) (core.Product, error) {
	row := s.db.QueryRow(ctx, selectByVendorAndName, vendorID, name)
	p, err := scanProduct(row)
	if err != nil {
		return core.Product{}, wrapLookup(err, "find product %q", name)
	}
	return p, nil
}

// FindByIDAndVendor returns the product only if it belongs to the vendor.
func (s *Store) FindByIDAndVendor(ctx context.Context, id, vendorID string) (core.Product, error) {
	pgID, ok := toUUID(id)
	if !ok {
		return core.Product{}, core.ErrNotFound
	}
	row := s.db.QueryRow(ctx, selectByIDAndVendor, pgID, vendorID)
	p, err := scanProduct(row)
	if err != nil {
		return core.Product{}, wrapLookup(err, "find product %s", id)
	}
	return p, nil
}

// Insert stores p under a new random id and returns it.
func (s *Store) Insert(ctx context.Context, p core.Product) (string, error) {
	id := uuid.New()
	price, err := toNumeric(p.Price)
	if err != nil {
		return "", err
	}

	_, err = s.db.Exec(ctx, insertProduct,
		pgtype.UUID{Bytes: id, Valid: true},
		p.VendorID,
		p.Name,
		price,
		p.StockLevel,
		p.Category,
		p.Description,
		tagsOrEmpty(p.VoiceTags),
		p.ImageURL,
	)
	if err != nil {
		return "", classify(errors.Wrapf(err, "insert product %q", p.Name))
	}
	return id.String(), nil
}

// Update writes the patched columns of product id.
func (s *Store) Update(ctx context.Context, id string, patch core.ProductPatch) error {
	pgID, ok := toUUID(id)
	if !ok {
		return core.ErrNotFound
	}

	query, args, err := buildUpdate(pgID, patch)
	if err != nil {
		return err
	}

	tag, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		return classify(errors.Wrapf(err, "update product %s", id))
	}
	if tag.RowsAffected() == 0 {
		return errors.Wrapf(core.ErrNotFound, "update product %s", id)
	}
	return nil
}

// ListByVendor returns every product of the vendor, oldest first.
func (s *Store) ListByVendor(ctx context.Context, vendorID string) ([]core.Product, error) {
	return s.list(ctx, selectByVendor, vendorID)
}

// ListByVendorAndCategory returns the vendor's products in category.
func (s *Store) ListByVendorAndCategory(ctx context.Context, vendorID, category string) ([]core.Product, error) {
	return s.list(ctx, selectByVendorAndCategory, vendorID, category)
}

func (s *Store) list(ctx context.Context, query string, args ...any) ([]core.Product, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, classify(errors.Wrap(err, "list products"))
	}
	defer rows.Close()

	products := []core.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan product")
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(errors.Wrap(err, "list products"))
	}
	return products, nil
}

// buildUpdate renders an UPDATE touching only the patch's columns.
func buildUpdate(id pgtype.UUID, patch core.ProductPatch) (string, []any, error) {
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
			n, err := toNumeric(p.Price)
			if err != nil {
				return "", nil, err
			}
			v = n
		case core.ColStockLevel:
			v = p.StockLevel
		case core.ColCategory:
			v = p.Category
		case core.ColDescription:
			v = p.Description
		case core.ColVoiceTags:
			v = tagsOrEmpty(p.VoiceTags)
		case core.ColImageURL:
			v = p.ImageURL
		default:
			return "", nil, errors.Newf("unknown product column %q", col)
		}
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", quoteIdentifier(col), len(args)))
	}
	sets = append(sets, "updated_at = now()")
	args = append(args, id)

	query := fmt.Sprintf("UPDATE products SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))
	return query, args, nil
}

// quoteIdentifier quotes a column name for PostgreSQL.
func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func scanProduct(row pgx.Row) (core.Product, error) {
	var (
		p     core.Product
		id    pgtype.UUID
		price pgtype.Numeric
	)
	err := row.Scan(
		&id,
		&p.VendorID,
		&p.Name,
		&price,
		&p.StockLevel,
		&p.Category,
		&p.Description,
		&p.VoiceTags,
		&p.ImageURL,
	)
	if err != nil {
		return core.Product{}, err
	}
	p.ID = fromUUID(id)
	p.Price = fromNumeric(price)
	p.VoiceTags = tagsOrEmpty(p.VoiceTags)
	return p, nil
}

// wrapLookup maps pgx.ErrNoRows to core.ErrNotFound.
func wrapLookup(err error, format string, args ...any) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return core.ErrNotFound
	}
	return classify(errors.Wrapf(err, format, args...))
}
