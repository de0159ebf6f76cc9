package core

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/catalog/internal/logging"
)

// AuditAction represents the type of bulk operation being audited.
type AuditAction string

const (
	AuditImport      AuditAction = "import"
	AuditExport      AuditAction = "export"
	AuditPriceAdjust AuditAction = "price_adjust"
	AuditRestock     AuditAction = "restock"
)

// AuditSeverity represents the severity level of an audit entry.
type AuditSeverity string

const (
	SeverityLow    AuditSeverity = "low"
	SeverityMedium AuditSeverity = "medium"
	SeverityHigh   AuditSeverity = "high"
)

// AuditEntry is one row of the bulk-operation audit trail.
type AuditEntry struct {
	ID           string         `json:"id"`
	Action       AuditAction    `json:"action"`
	Severity     AuditSeverity  `json:"severity"`
	VendorID     string         `json:"vendor_id"`
	OperationID  string         `json:"operation_id,omitempty"`
	IPAddress    string         `json:"ip_address,omitempty"`
	UserAgent    string         `json:"user_agent,omitempty"`
	RowsAffected int            `json:"rows_affected"`
	ErrorCount   int            `json:"error_count"`
	Detail       map[string]any `json:"detail,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

// AuditSink persists audit entries. Both stores implement it.
type AuditSink interface {
	RecordAudit(ctx context.Context, e AuditEntry) error
}

// AuditLogParams contains parameters for creating an audit entry.
type AuditLogParams struct {
	Action       AuditAction
	VendorID     string
	OperationID  string
	RowsAffected int
	ErrorCount   int
	Detail       map[string]any
}

// determineSeverity returns the severity for an action. Price changes touch
// every listed product, so they rank above imports.
func determineSeverity(action AuditAction) AuditSeverity {
	switch action {
	case AuditPriceAdjust:
		return SeverityHigh
	case AuditImport, AuditRestock:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// logAudit records an audit entry if a sink is configured. Audit failures
// are logged and never change the outcome of the operation being audited.
func (s *Service) logAudit(ctx context.Context, params AuditLogParams) {
	if s.audit == nil {
		return
	}

	meta := RequestMetaFromContext(ctx)
	entry := AuditEntry{
		ID:           uuid.NewString(),
		Action:       params.Action,
		Severity:     determineSeverity(params.Action),
		VendorID:     params.VendorID,
		OperationID:  params.OperationID,
		IPAddress:    meta.IPAddress,
		UserAgent:    meta.UserAgent,
		RowsAffected: params.RowsAffected,
		ErrorCount:   params.ErrorCount,
		Detail:       params.Detail,
		CreatedAt:    s.now().UTC(),
	}

	if err := s.audit.RecordAudit(ctx, entry); err != nil {
		logging.FromContext(ctx).Warn("failed to record audit entry",
			slog.String("action", string(params.Action)),
			slog.String("vendor_id", params.VendorID),
			slog.String("error", err.Error()),
		)
	}
}
