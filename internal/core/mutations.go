package core

// mutations.go holds the two batch mutators: percentage price adjustment and
// additive restock. Both read current values, compute new ones and write
// each product back individually. A failure on one product is recorded in
// the summary and the batch continues; only a missing or unreachable store
// fails the call as a whole.

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/JonMunkholm/catalog/internal/logging"
)

const (
	categoryAll       = "all"
	msgNoProducts     = "No products found"
	msgInvalidPercent = "invalid percent change"
	msgProductMissing = "product not found"
	msgStockRange     = "stock level out of range"
	msgStockClamped   = "stock set to 0: change %d exceeds current stock %d"
	priceScale        = 2

	// maxStockLevel is the largest stock the INTEGER stock_level column holds.
	maxStockLevel = math.MaxInt32
)

var hundred = decimal.NewFromInt(100)

// AdjustedPrice applies a percentage change to price, rounds half away from
// zero to two decimal places, and floors the result at zero.
func AdjustedPrice(price decimal.Decimal, percent decimal.Decimal) decimal.Decimal {
	multiplier := decimal.NewFromInt(1).Add(percent.Div(hundred))
	next := price.Mul(multiplier).Round(priceScale)
	if next.IsNegative() {
		return decimal.Zero.Round(priceScale)
	}
	return next
}

// BulkAdjustPrices changes the price of every vendor product, or only those
// in category when it is non-empty, by percent (10 means +10%).
func (s *Service) BulkAdjustPrices(ctx context.Context, vendorID string, percent float64, category string) (*BatchSummary, error) {
	if err := checkVendor(vendorID); err != nil {
		return nil, err
	}

	summary := &BatchSummary{
		Errors:        []ItemError{},
		PercentChange: &percent,
		Category:      category,
	}
	if category == "" {
		summary.Category = categoryAll
	}

	if math.IsNaN(percent) || math.IsInf(percent, 0) {
		summary.PercentChange = nil
		summary.Error = msgInvalidPercent
		return summary, nil
	}
	if s.store == nil {
		summary.Error = ErrStoreUnavailable.Error()
		return summary, nil
	}

	opID := uuid.NewString()
	log := logging.WithFields(ctx,
		"vendor_id", vendorID,
		"operation", "price_adjust",
		"operation_id", opID,
	)

	var (
		products []Product
		err      error
	)
	if category == "" {
		products, err = s.store.ListByVendor(ctx, vendorID)
	} else {
		products, err = s.store.ListByVendorAndCategory(ctx, vendorID, category)
	}
	if err != nil {
		log.Error("list products for price adjustment", slog.String("error", err.Error()))
		summary.Error = errors.Wrap(err, "list products").Error()
		return summary, nil
	}

	summary.Success = true
	if len(products) == 0 {
		summary.Message = msgNoProducts
		return summary, nil
	}

	pct := decimal.NewFromFloat(percent)
	for _, p := range products {
		next := AdjustedPrice(p.Price, pct)
		if err := s.store.Update(ctx, p.ID, PricePatch(next)); err != nil {
			summary.Errors = append(summary.Errors, ItemError{
				ProductID: p.ID,
				Product:   p.Name,
				Message:   err.Error(),
			})
			log.Warn("price update failed", slog.String("product_id", p.ID), slog.String("error", err.Error()))
			continue
		}
		summary.UpdatedCount++
	}
	summary.ErrorCount = len(summary.Errors)

	log.Info("price adjustment completed",
		slog.Float64("percent", percent),
		slog.String("category", summary.Category),
		slog.Int("updated", summary.UpdatedCount),
		slog.Int("errors", summary.ErrorCount),
	)

	s.logAudit(ctx, AuditLogParams{
		Action:       AuditPriceAdjust,
		VendorID:     vendorID,
		OperationID:  opID,
		RowsAffected: summary.UpdatedCount,
		ErrorCount:   summary.ErrorCount,
		Detail: map[string]any{
			"percent_change": percent,
			"category":       summary.Category,
		},
	})

	return summary, nil
}

// restockLevel returns current+delta floored at zero. clamped reports that the
// floor applied; ok is false when the result would pass maxStockLevel.
func restockLevel(current, delta int) (next int, clamped, ok bool) {
	if delta > 0 && current > maxStockLevel-delta {
		return 0, false, false
	}
	next = current + delta
	if next < 0 {
		return 0, true, true
	}
	return next, false, true
}

// BulkRestock adds each item's quantity to the matching product's stock.
// Stock never drops below zero; a decrement that would go negative sets it to
// zero and is listed in Notes. Unknown products and results above
// maxStockLevel are reported per item.
func (s *Service) BulkRestock(ctx context.Context, vendorID string, items []RestockItem) (*BatchSummary, error) {
	if err := checkVendor(vendorID); err != nil {
		return nil, err
	}

	summary := &BatchSummary{Errors: []ItemError{}}
	if s.store == nil {
		summary.Error = ErrStoreUnavailable.Error()
		return summary, nil
	}

	opID := uuid.NewString()
	log := logging.WithFields(ctx,
		"vendor_id", vendorID,
		"operation", "restock",
		"operation_id", opID,
	)

	for _, item := range items {
		p, err := s.store.FindByIDAndVendor(ctx, item.ProductID, vendorID)
		if err != nil {
			msg := err.Error()
			if errors.Is(err, ErrNotFound) {
				msg = msgProductMissing
			}
			summary.Errors = append(summary.Errors, ItemError{ProductID: item.ProductID, Message: msg})
			continue
		}

		next, clamped, ok := restockLevel(p.StockLevel, item.Quantity)
		if !ok {
			summary.Errors = append(summary.Errors, ItemError{
				ProductID: item.ProductID,
				Product:   p.Name,
				Message:   msgStockRange,
			})
			continue
		}
		if err := s.store.Update(ctx, p.ID, StockPatch(next)); err != nil {
			summary.Errors = append(summary.Errors, ItemError{
				ProductID: item.ProductID,
				Product:   p.Name,
				Message:   err.Error(),
			})
			log.Warn("stock update failed", slog.String("product_id", p.ID), slog.String("error", err.Error()))
			continue
		}
		if clamped {
			summary.Notes = append(summary.Notes, ItemError{
				ProductID: item.ProductID,
				Product:   p.Name,
				Message:   fmt.Sprintf(msgStockClamped, item.Quantity, p.StockLevel),
			})
		}
		summary.UpdatedCount++
	}

	summary.Success = true
	summary.ErrorCount = len(summary.Errors)

	log.Info("restock completed",
		slog.Int("items", len(items)),
		slog.Int("updated", summary.UpdatedCount),
		slog.Int("errors", summary.ErrorCount),
	)

	s.logAudit(ctx, AuditLogParams{
		Action:       AuditRestock,
		VendorID:     vendorID,
		OperationID:  opID,
		RowsAffected: summary.UpdatedCount,
		ErrorCount:   summary.ErrorCount,
		Detail:       map[string]any{"items": len(items)},
	})

	return summary, nil
}
