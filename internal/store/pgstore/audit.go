package pgstore

import (
	"context"
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/catalog/internal/core"
)

const insertAudit = `INSERT INTO catalog_audit_log
(id, action, severity, vendor_id, operation_id, ip_address, user_agent, rows_affected, error_count, detail, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

// RecordAudit implements core.AuditSink.
func (s *Store) RecordAudit(ctx context.Context, e core.AuditEntry) error {
	id, err := uuid.Parse(e.ID)
	if err != nil {
		id = uuid.New()
	}

	var detail []byte
	if e.Detail != nil {
		if detail, err = json.Marshal(e.Detail); err != nil {
			detail = nil
		}
	}

	_, err = s.db.Exec(ctx, insertAudit,
		pgtype.UUID{Bytes: id, Valid: true},
		string(e.Action),
		string(e.Severity),
		e.VendorID,
		nullText(e.OperationID),
		nullText(e.IPAddress),
		nullText(e.UserAgent),
		e.RowsAffected,
		e.ErrorCount,
		detail,
		pgtype.Timestamptz{Time: e.CreatedAt, Valid: !e.CreatedAt.IsZero()},
	)
	if err != nil {
		return classify(errors.Wrap(err, "insert audit entry"))
	}
	return nil
}

// AuditEntries returns the vendor's audit trail, newest first.
func (s *Store) AuditEntries(ctx context.Context, vendorID string, limit int) ([]core.AuditEntry, error) {
	rows, err := s.db.Query(ctx, `SELECT id, action, severity, vendor_id, operation_id, ip_address, user_agent,
rows_affected, error_count, detail, created_at
FROM catalog_audit_log WHERE vendor_id = $1
ORDER BY created_at DESC
LIMIT $2`, vendorID, limit)
	if err != nil {
		return nil, classify(errors.Wrap(err, "list audit entries"))
	}
	defer rows.Close()

	var entries []core.AuditEntry
	for rows.Next() {
		var (
			e            core.AuditEntry
			id           pgtype.UUID
			opID, ip, ua pgtype.Text
			detail       []byte
			createdAt    pgtype.Timestamptz
			action       string
			severity     string
		)
		if err := rows.Scan(&id, &action, &severity, &e.VendorID, &opID, &ip, &ua,
			&e.RowsAffected, &e.ErrorCount, &detail, &createdAt); err != nil {
			return nil, errors.Wrap(err, "scan audit entry")
		}
		e.ID = fromUUID(id)
		e.Action, e.Severity = core.AuditAction(action), core.AuditSeverity(severity)
		e.OperationID, e.IPAddress, e.UserAgent = opID.String, ip.String, ua.String
		e.CreatedAt = createdAt.Time
		if len(detail) > 0 {
			if err := json.Unmarshal(detail, &e.Detail); err != nil {
				return nil, errors.Wrapf(err, "decode audit detail %s", e.ID)
			}
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(errors.Wrap(err, "list audit entries"))
	}
	return entries, nil
}

func nullText(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}
