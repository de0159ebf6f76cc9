package core

import (
	"context"
	"encoding/csv"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/JonMunkholm/catalog/internal/logging"
)

// templateExample is the illustrative row emitted after the template header.
var templateExample = []string{
	"Example Product",
	"5000",
	"10",
	"Electronics",
	"Product description here",
	"tag1,tag2,tag3",
	"",
}

// ExportProducts serializes every product of the vendor to CSV in the order
// the store returns them, using the same columns ImportProducts reads.
func (s *Service) ExportProducts(ctx context.Context, vendorID string) (*ExportResult, error) {
	if err := checkVendor(vendorID); err != nil {
		return nil, err
	}
	if s.store == nil {
		return nil, ErrStoreUnavailable
	}

	products, err := s.store.ListByVendor(ctx, vendorID)
	if err != nil {
		return nil, errors.Wrapf(err, "list products for vendor %s", vendorID)
	}

	rows := make([][]string, 0, len(products))
	for _, p := range products {
		rows = append(rows, productRow(p))
	}

	text, err := writeCSV(rows)
	if err != nil {
		return nil, errors.Wrap(err, "write export csv")
	}

	result := &ExportResult{
		CSV:        text,
		RowCount:   len(products),
		ExportedAt: s.now().UTC(),
	}

	logging.WithFields(ctx, "vendor_id", vendorID, "operation", "export").
		Info("export completed", "rows", result.RowCount)

	s.logAudit(ctx, AuditLogParams{
		Action:       AuditExport,
		VendorID:     vendorID,
		OperationID:  uuid.NewString(),
		RowsAffected: result.RowCount,
	})

	return result, nil
}

// GenerateTemplate returns the CSV header plus one example row.
func GenerateTemplate() string {
	text, err := writeCSV([][]string{templateExample})
	if err != nil {
		// writing to a strings.Builder cannot fail
		panic(err)
	}
	return text
}

func productRow(p Product) []string {
	return []string{
		p.Name,
		p.Price.String(),
		strconv.Itoa(p.StockLevel),
		derefText(p.Category),
		derefText(p.Description),
		FormatVoiceTags(p.VoiceTags),
		derefText(p.ImageURL),
	}
}

func writeCSV(rows [][]string) (string, error) {
	var b strings.Builder
	w := csv.NewWriter(&b)
	if err := w.Write(Columns); err != nil {
		return "", err
	}
	if err := w.WriteAll(rows); err != nil {
		return "", err
	}
	return b.String(), nil
}
