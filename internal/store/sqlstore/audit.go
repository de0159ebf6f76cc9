package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/JonMunkholm/catalog/internal/core"
)

const insertAudit = `INSERT INTO catalog_audit_log
(id, action, severity, vendor_id, operation_id, ip_address, user_agent, rows_affected, error_count, detail, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// RecordAudit implements core.AuditSink.
func (s *Store) RecordAudit(ctx context.Context, e core.AuditEntry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	var detail sql.NullString
	if e.Detail != nil {
		if b, err := json.Marshal(e.Detail); err == nil {
			detail = sql.NullString{String: string(b), Valid: true}
		}
	}

	_, err := s.db.ExecContext(ctx, insertAudit,
		e.ID,
		string(e.Action),
		string(e.Severity),
		e.VendorID,
		nullString(e.OperationID),
		nullString(e.IPAddress),
		nullString(e.UserAgent),
		e.RowsAffected,
		e.ErrorCount,
		detail,
		e.CreatedAt.UTC(),
	)
	if err != nil {
		return classify(errors.Wrap(err, "insert audit entry"))
	}
	return nil
}

// AuditEntries returns the vendor's audit trail, newest first.
func (s *Store) AuditEntries(ctx context.Context, vendorID string, limit int) ([]core.AuditEntry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, action, severity, vendor_id, operation_id, ip_address, user_agent,
rows_affected, error_count, detail, created_at
FROM catalog_audit_log WHERE vendor_id = ?
ORDER BY created_at DESC, rowid DESC
LIMIT ?`, vendorID, limit)
	if err != nil {
		return nil, classify(errors.Wrap(err, "list audit entries"))
	}
	defer rows.Close()

	var entries []core.AuditEntry
	for rows.Next() {
		var (
			e                 core.AuditEntry
			opID, ip, ua, det sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.Action, &e.Severity, &e.VendorID, &opID, &ip, &ua,
			&e.RowsAffected, &e.ErrorCount, &det, &e.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scan audit entry")
		}
		e.OperationID, e.IPAddress, e.UserAgent = opID.String, ip.String, ua.String
		if det.Valid {
			if err := json.Unmarshal([]byte(det.String), &e.Detail); err != nil {
				return nil, errors.Wrapf(err, "decode audit detail %s", e.ID)
			}
		}
		entries = append(entries, e)
	}
	return entries, errors.Wrap(rows.Err(), "list audit entries")
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
