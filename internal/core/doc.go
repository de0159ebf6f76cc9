// Package core provides the business logic for vendor catalog bulk operations.
//
// This package holds all domain logic independent of any transport. The web
// handlers and the catalogctl CLI both drive the same [Service].
//
// # Flow
//
// An import runs CSV text through [ParseCSV], which yields validated
// [Record] values and per-row [ImportError] values. The reconciler then
// looks each record up by (vendor, name) and inserts, updates or skips it:
//
//	svc := core.NewService(store, core.WithAuditSink(store))
//	res, err := svc.ImportProducts(ctx, vendorID, file, false)
//
// [Service.BulkAdjustPrices] and [Service.BulkRestock] bypass the parser and
// work directly from a vendor id. [Service.ExportProducts] writes the same
// columns the parser reads, so an export can be imported back unchanged.
//
// # Stores
//
// The engine talks to storage only through [Store]. The pgstore and sqlstore
// packages implement it for PostgreSQL and SQLite; a nil Store is allowed
// and reported as [ErrStoreUnavailable].
//
// # Error Handling
//
// Row and record failures are collected into results, never returned as
// errors. Returned errors are reserved for calls that could not run at all,
// and [MapError] turns them into coded messages for vendors:
//
//   - DB001-DB007: database constraints and connectivity
//   - VAL001-VAL005: row and request validation
//   - FILE001-FILE004: uploaded file handling
//   - IMP001-IMP004: import and batch operations
//
// # Audit Logging
//
// With [WithAuditSink], every bulk operation writes one [AuditEntry]:
//
//   - Low: exports
//   - Medium: imports and restocks
//   - High: price adjustments
package core
