package web

import (
	"fmt"
	"net/http"
	"regexp"

	"github.com/JonMunkholm/catalog/internal/core"
)

var unsafeFilename = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// handleExport downloads the vendor's catalog as CSV, or as the
// ExportResult JSON with ?format=json.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	vendorID := vendorParam(r)

	result, err := s.service.ExportProducts(withRequestMeta(r.Context(), r), vendorID)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	if r.URL.Query().Get("format") == "json" {
		writeJSON(w, http.StatusOK, result)
		return
	}

	filename := fmt.Sprintf("products-%s-%s.csv",
		unsafeFilename.ReplaceAllString(vendorID, "_"),
		result.ExportedAt.Format("20060102-150405"))

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Header().Set("X-Row-Count", fmt.Sprint(result.RowCount))
	w.Write([]byte(result.CSV))
}

// handleDownloadTemplate serves the blank import template.
func (s *Server) handleDownloadTemplate(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="product_import_template.csv"`)
	w.Write([]byte(core.GenerateTemplate()))
}

// handleHealth reports store presence and import slot usage.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"status": "ok",
		"store":  s.service.HasStore(),
	}
	if l := s.service.Limiter(); l != nil {
		resp["imports"] = l.Status()
	}
	if !s.service.HasStore() {
		resp["status"] = "degraded"
	}
	writeJSON(w, http.StatusOK, resp)
}
