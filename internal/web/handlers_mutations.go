package web

import (
	"net/http"

	"github.com/JonMunkholm/catalog/internal/core"
)

// AdjustPricesRequest is the body of POST .../products/prices/adjust.
type AdjustPricesRequest struct {
	Percent  *float64 `json:"percent" validate:"required"`
	Category string   `json:"category,omitempty" validate:"max=255"`
}

// RestockRequest is the body of POST .../products/restock.
type RestockRequest struct {
	Items []core.RestockItem `json:"items" validate:"max=10000"`
}

// handleAdjustPrices applies a percentage change to the vendor's prices.
// The batch summary is returned with status 200 even when success is false;
// per-product failures live inside it.
func (s *Server) handleAdjustPrices(w http.ResponseWriter, r *http.Request) {
	var req AdjustPricesRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	summary, err := s.service.BulkAdjustPrices(withRequestMeta(r.Context(), r), vendorParam(r), *req.Percent, req.Category)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// handleRestock adds quantities to the stock of the listed products.
func (s *Server) handleRestock(w http.ResponseWriter, r *http.Request) {
	var req RestockRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	summary, err := s.service.BulkRestock(withRequestMeta(r.Context(), r), vendorParam(r), req.Items)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
