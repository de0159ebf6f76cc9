package core

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned by Store lookups when no product matches.
var ErrNotFound = errors.New("product not found")

// ErrStoreUnavailable marks failures where the record store cannot be reached
// at all, as opposed to a single operation failing.
var ErrStoreUnavailable = errors.New("database not available")

// Store is the record store the engine reads and writes products through.
// Implementations return ErrNotFound from the Find methods when nothing
// matches, and mark connectivity failures with ErrStoreUnavailable.
type Store interface {
	FindByVendorAndName(ctx context.Context, vendorID, name string) (Product, error)
	FindByIDAndVendor(ctx context.Context, id, vendorID string) (Product, error)
	Insert(ctx context.Context, p Product) (string, error)
	Update(ctx context.Context, id string, patch ProductPatch) error
	ListByVendor(ctx context.Context, vendorID string) ([]Product, error)
	ListByVendorAndCategory(ctx context.Context, vendorID, category string) ([]Product, error)
}

// ProductPatch names the columns an Update writes; values come from Product.
type ProductPatch struct {
	Fields  []string
	Product Product
}

// Has reports whether the patch writes column col.
func (p ProductPatch) Has(col string) bool {
	for _, f := range p.Fields {
		if f == col {
			return true
		}
	}
	return false
}

// FullPatch overwrites every CSV column plus the vendor id.
func FullPatch(p Product) ProductPatch {
	fields := make([]string, 0, len(Columns)+1)
	fields = append(fields, ColVendorID)
	fields = append(fields, Columns...)
	return ProductPatch{Fields: fields, Product: p}
}

// PricePatch writes only the price.
func PricePatch(price decimal.Decimal) ProductPatch {
	return ProductPatch{Fields: []string{ColPrice}, Product: Product{Price: price}}
}

// StockPatch writes only the stock level.
func StockPatch(stock int) ProductPatch {
	return ProductPatch{Fields: []string{ColStockLevel}, Product: Product{StockLevel: stock}}
}
