package core

// import.go reconciles parsed records against the vendor's catalog.
//
// Records are matched by (vendor, exact name). A match is updated in place
// when the caller asks for it and skipped otherwise; no match is inserted.
// A failure on one record is reported and the next record proceeds.

import (
	"context"
	"io"
	"log/slog"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/JonMunkholm/catalog/internal/logging"
)

const skipReasonExists = "product already exists"

// ImportProducts parses CSV from r and creates or updates the vendor's
// products. Per-row and per-record failures are reported in the result; the
// returned error is only for calls that could not start at all.
// A file with no valid records but some row errors returns those errors
// without touching the store.
func (s *Service) ImportProducts(ctx context.Context, vendorID string, r io.Reader, updateExisting bool) (*ImportResult, error) {
	if err := checkVendor(vendorID); err != nil {
		return nil, err
	}
	if s.limiter != nil {
		if err := s.limiter.Acquire(ctx); err != nil {
			return nil, err
		}
		defer s.limiter.Release()
	}

	start := s.now()
	importID := uuid.NewString()
	log := logging.WithFields(ctx,
		"vendor_id", vendorID,
		"operation", "import",
		"import_id", importID,
	)

	records, parseErrs := ParseCSV(ctx, r)

	result := &ImportResult{
		ImportID:   importID,
		Errors:     parseErrs,
		CreatedIDs: []string{},
	}

	if len(records) == 0 && len(parseErrs) > 0 {
		result.ErrorCount = len(result.Errors)
		result.Duration = s.now().Sub(start)
		log.Info("import rejected before reconciliation", slog.Int("errors", result.ErrorCount))
		return result, nil
	}

	if s.store == nil {
		result.Errors = append(result.Errors, ImportError{
			Kind:    KindStore,
			Row:     0,
			Message: ErrStoreUnavailable.Error(),
		})
		result.ErrorCount = len(result.Errors)
		result.Duration = s.now().Sub(start)
		log.Warn("import attempted without a record store", slog.Int("records", len(records)))
		return result, nil
	}

	for _, rec := range records {
		p := rec.Product
		p.VendorID = vendorID

		existing, err := s.store.FindByVendorAndName(ctx, vendorID, p.Name)
		switch {
		case err == nil && updateExisting:
			if err := s.store.Update(ctx, existing.ID, FullPatch(p)); err != nil {
				result.Errors = append(result.Errors, storeError(rec, err))
				log.Warn("update failed", slog.Int("row", rec.Row), slog.String("product", p.Name), slog.String("error", err.Error()))
				continue
			}
			result.CreatedIDs = append(result.CreatedIDs, existing.ID)

		case err == nil:
			result.Skipped = append(result.Skipped, SkippedRecord{
				Row:        rec.Row,
				Product:    p.Name,
				ExistingID: existing.ID,
				Reason:     skipReasonExists,
			})
			log.Debug("skipped existing product", slog.Int("row", rec.Row), slog.String("product", p.Name))

		case errors.Is(err, ErrNotFound):
			id, err := s.store.Insert(ctx, p)
			if err != nil {
				result.Errors = append(result.Errors, storeError(rec, err))
				log.Warn("insert failed", slog.Int("row", rec.Row), slog.String("product", p.Name), slog.String("error", err.Error()))
				continue
			}
			result.CreatedIDs = append(result.CreatedIDs, id)

		default:
			result.Errors = append(result.Errors, storeError(rec, err))
			log.Warn("lookup failed", slog.Int("row", rec.Row), slog.String("product", p.Name), slog.String("error", err.Error()))
		}
	}

	result.SuccessCount = len(result.CreatedIDs)
	result.ErrorCount = len(result.Errors)
	result.SkippedCount = len(result.Skipped)
	result.Duration = s.now().Sub(start)

	log.Info("import completed",
		slog.Int("success", result.SuccessCount),
		slog.Int("errors", result.ErrorCount),
		slog.Int("skipped", result.SkippedCount),
		slog.Bool("update_existing", updateExisting),
		slog.Duration("duration", result.Duration),
	)

	s.logAudit(ctx, AuditLogParams{
		Action:       AuditImport,
		VendorID:     vendorID,
		OperationID:  importID,
		RowsAffected: result.SuccessCount,
		ErrorCount:   result.ErrorCount,
		Detail: map[string]any{
			"skipped":         result.SkippedCount,
			"update_existing": updateExisting,
		},
	})

	return result, nil
}

// PreviewImport parses CSV from r and reports what ImportProducts would do
// with each record, without writing anything.
func (s *Service) PreviewImport(ctx context.Context, vendorID string, r io.Reader, updateExisting bool) (*ImportPreview, error) {
	if err := checkVendor(vendorID); err != nil {
		return nil, err
	}
	if s.store == nil {
		return nil, ErrStoreUnavailable
	}

	records, parseErrs := ParseCSV(ctx, r)

	preview := &ImportPreview{
		Records: make([]PlannedRecord, 0, len(records)),
		Errors:  parseErrs,
	}

	for _, rec := range records {
		planned := PlannedRecord{Row: rec.Row, Product: rec.Product.Name}

		existing, err := s.store.FindByVendorAndName(ctx, vendorID, rec.Product.Name)
		switch {
		case err == nil && updateExisting:
			planned.Action = ActionUpdate
			planned.ExistingID = existing.ID
			preview.UpdateCount++
		case err == nil:
			planned.Action = ActionSkip
			planned.ExistingID = existing.ID
			preview.SkipCount++
		case errors.Is(err, ErrNotFound):
			planned.Action = ActionCreate
			preview.CreateCount++
		default:
			preview.Errors = append(preview.Errors, storeError(rec, err))
			continue
		}
		preview.Records = append(preview.Records, planned)
	}

	preview.TotalRows = len(records) + countRowErrors(parseErrs)
	preview.ErrorCount = len(preview.Errors)
	return preview, nil
}

func storeError(rec Record, err error) ImportError {
	return ImportError{
		Kind:    KindStore,
		Row:     rec.Row,
		Product: rec.Product.Name,
		Message: err.Error(),
	}
}

// countRowErrors counts errors tied to a data row; a row-0 error is not one.
func countRowErrors(errs []ImportError) int {
	n := 0
	for _, e := range errs {
		if e.Row > 0 {
			n++
		}
	}
	return n
}
