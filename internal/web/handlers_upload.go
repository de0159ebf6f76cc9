package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/catalog/internal/web/views"
)

// handleImport reconciles an uploaded CSV into the vendor's catalog.
// Row-level problems are reported in the result body with status 200; only
// request-level failures produce an error response.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	vendorID := vendorParam(r)

	body, err := readCSVBody(w, r, s.cfg.Import.MaxFileSize)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	updateExisting := parseBoolParam(r, "update_existing", false)

	ctx, cancel := context.WithTimeout(withRequestMeta(r.Context(), r), s.cfg.Import.Timeout)
	defer cancel()

	result, err := s.service.ImportProducts(ctx, vendorID, body, updateExisting)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	if wantsHTML(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		views.ImportSummary(result).Render(r.Context(), w)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handlePreview reports what an import would do without writing anything.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	vendorID := vendorParam(r)

	body, err := readCSVBody(w, r, s.cfg.Import.MaxFileSize)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	updateExisting := parseBoolParam(r, "update_existing", false)

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Import.Timeout)
	defer cancel()

	preview, err := s.service.PreviewImport(ctx, vendorID, body, updateExisting)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, preview)
}
