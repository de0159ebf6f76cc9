package web

import (
	"net/http"

	"github.com/JonMunkholm/catalog/internal/core"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 500
)

// handleAuditLog lists the vendor's recent bulk operations.
func (s *Server) handleAuditLog(w http.ResponseWriter, r *http.Request) {
	if s.audit == nil {
		http.NotFound(w, r)
		return
	}

	vendorID := vendorParam(r)
	if vendorID == "" {
		s.respondError(w, r, core.ErrVendorRequired, http.StatusBadRequest)
		return
	}

	limit := min(parseIntParam(r, "limit", defaultAuditLimit), maxAuditLimit)

	entries, err := s.audit.AuditEntries(r.Context(), vendorID, limit)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	if entries == nil {
		entries = []core.AuditEntry{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"entries": entries,
		"count":   len(entries),
	})
}
