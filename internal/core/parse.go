package core

// parse.go splits CSV text into validated records and per-row errors.
//
// Parsing never fails as a whole unless the text cannot be split into rows.
// In that case the result is no records and a single row-0 error. Otherwise
// every data row ends up in exactly one of the two outputs.

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/cockroachdb/errors"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/JonMunkholm/catalog/internal/logging"
)

// firstDataRow is the row index of the first line after the header.
const firstDataRow = 2

// NormalizeInput strips a UTF-8 byte order mark and replaces invalid UTF-8
// with U+FFFD, so spreadsheet exports from Windows parse like any other file.
func NormalizeInput(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
}

// ParseCSV reads CSV text with a header line and validates every data row.
func ParseCSV(ctx context.Context, r io.Reader) ([]Record, []ImportError) {
	rows, err := readRows(NormalizeInput(r))
	if err != nil {
		return nil, []ImportError{{
			Kind:    KindParse,
			Row:     0,
			Message: fmt.Sprintf("CSV parse error: %v", err),
		}}
	}
	if len(rows) == 0 {
		return []Record{}, []ImportError{}
	}

	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = CleanHeader(h)
	}

	records := make([]Record, 0, len(rows)-1)
	errs := []ImportError{}

	for i, cells := range rows[1:] {
		row := i + firstDataRow
		raw := toRawRow(header, cells)

		p, err := ValidateRow(raw, row)
		if err != nil {
			errs = append(errs, ImportError{
				Kind:    KindValidation,
				Row:     row,
				Message: err.Error(),
				Data:    raw,
			})
			continue
		}

		if cell := strings.TrimSpace(raw[ColStockLevel]); cell != "" {
			if n, ok := ParseStock(cell); !ok || n < 0 {
				logging.FromContext(ctx).Debug("stock level coerced to 0",
					slog.Int("row", row),
					slog.String("value", cell),
				)
			}
		}

		records = append(records, Record{Row: row, Product: p})
	}

	return records, errs
}

// ParseCSVString is ParseCSV over an in-memory string.
func ParseCSVString(ctx context.Context, text string) ([]Record, []ImportError) {
	return ParseCSV(ctx, strings.NewReader(text))
}

// readRows reads every CSV row. Blank lines are not rows; a line of empty
// cells is, and fails validation like any other row without a name.
func readRows(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	var rows [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, rec)
	}
}

// toRawRow pairs cells with header names. Missing trailing cells read as
// empty; cells beyond the header are dropped. A repeated header name keeps
// the rightmost value.
func toRawRow(header, cells []string) RawRow {
	raw := make(RawRow, len(header))
	for i, h := range header {
		if h == "" {
			continue
		}
		if i < len(cells) {
			raw[h] = cells[i]
		} else {
			raw[h] = ""
		}
	}
	return raw
}
