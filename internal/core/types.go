package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// CSV column names. The order of Columns is the import/export contract.
const (
	ColName        = "name"
	ColPrice       = "price_ngn"
	ColStockLevel  = "stock_level"
	ColCategory    = "category"
	ColDescription = "description"
	ColVoiceTags   = "voice_tags"
	ColImageURL    = "image_url"

	// ColVendorID is a store column only; it never appears in CSV.
	ColVendorID = "vendor_id"
)

// Columns lists the CSV columns in the fixed order used by import, export
// and the template.
var Columns = []string{
	ColName,
	ColPrice,
	ColStockLevel,
	ColCategory,
	ColDescription,
	ColVoiceTags,
	ColImageURL,
}

// RawRow maps a lowercased header name to the cell value of one CSV line.
type RawRow map[string]string

// Product is a validated catalog entry. Optional text fields are nil when
// absent, never an empty string.
type Product struct {
	ID          string          `json:"id,omitempty"`
	VendorID    string          `json:"vendor_id,omitempty"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price_ngn"`
	StockLevel  int             `json:"stock_level"`
	Category    *string         `json:"category,omitempty"`
	Description *string         `json:"description,omitempty"`
	VoiceTags   []string        `json:"voice_tags"`
	ImageURL    *string         `json:"image_url,omitempty"`
}

// Record is a Product parsed from CSV together with the line it came from.
type Record struct {
	Row     int
	Product Product
}

// ErrorKind classifies an entry in ImportResult.Errors.
type ErrorKind string

const (
	KindParse      ErrorKind = "parse"      // whole-input structural failure, row 0
	KindValidation ErrorKind = "validation" // one row failed a field rule
	KindStore      ErrorKind = "store"      // a lookup/insert/update failed for one record
)

// ImportError describes one failed row or record of an import.
// Row is 1-based with the header as row 1; row 0 is a whole-input failure.
type ImportError struct {
	Kind    ErrorKind `json:"kind"`
	Row     int       `json:"row"`
	Product string    `json:"product,omitempty"`
	Message string    `json:"error"`
	Data    RawRow    `json:"data,omitempty"`
}

// SkippedRecord is a record left untouched because its name already exists
// for the vendor and the import did not ask to update existing products.
type SkippedRecord struct {
	Row        int    `json:"row"`
	Product    string `json:"product"`
	ExistingID string `json:"existing_id"`
	Reason     string `json:"reason"`
}

// ImportResult is the outcome of one import call.
// SuccessCount always equals len(CreatedIDs); skipped records count toward
// neither SuccessCount nor ErrorCount.
type ImportResult struct {
	ImportID     string          `json:"import_id"`
	SuccessCount int             `json:"success_count"`
	ErrorCount   int             `json:"error_count"`
	Errors       []ImportError   `json:"errors"`
	CreatedIDs   []string        `json:"created_ids"`
	SkippedCount int             `json:"skipped_count"`
	Skipped      []SkippedRecord `json:"skipped,omitempty"`
	Duration     time.Duration   `json:"duration_ns"`
}

// ExportResult is the outcome of one export call.
type ExportResult struct {
	CSV        string    `json:"csv_content"`
	RowCount   int       `json:"row_count"`
	ExportedAt time.Time `json:"exported_at"`
}

// RestockItem adds Quantity (which may be negative) to one product's stock.
type RestockItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// ItemError is a per-item failure inside a batch mutation.
type ItemError struct {
	ProductID string `json:"product_id,omitempty"`
	Product   string `json:"product,omitempty"`
	Message   string `json:"error"`
}

// BatchSummary is the outcome of a price adjustment or a restock.
// PercentChange and Category are echoed for price adjustments only. Notes
// lists items that were updated with an adjusted value, such as a restock
// clamped at zero stock.
type BatchSummary struct {
	Success       bool        `json:"success"`
	UpdatedCount  int         `json:"updated_count"`
	ErrorCount    int         `json:"error_count"`
	Errors        []ItemError `json:"errors"`
	Notes         []ItemError `json:"notes,omitempty"`
	PercentChange *float64    `json:"percent_change,omitempty"`
	Category      string      `json:"category,omitempty"`
	Message       string      `json:"message,omitempty"`
	Error         string      `json:"error,omitempty"`
}

// PlannedAction is what an import would do with one record.
type PlannedAction string

const (
	ActionCreate PlannedAction = "create"
	ActionUpdate PlannedAction = "update"
	ActionSkip   PlannedAction = "skip"
)

// PlannedRecord is one line of an import preview.
type PlannedRecord struct {
	Row        int           `json:"row"`
	Product    string        `json:"product"`
	Action     PlannedAction `json:"action"`
	ExistingID string        `json:"existing_id,omitempty"`
}

// ImportPreview reports what ImportProducts would do without writing anything.
type ImportPreview struct {
	TotalRows   int             `json:"total_rows"`
	CreateCount int             `json:"create_count"`
	UpdateCount int             `json:"update_count"`
	SkipCount   int             `json:"skip_count"`
	ErrorCount  int             `json:"error_count"`
	Records     []PlannedRecord `json:"records"`
	Errors      []ImportError   `json:"errors"`
}
