// Package web provides the HTTP API for catalog bulk operations.
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/catalog/internal/config"
	"github.com/JonMunkholm/catalog/internal/core"
	"github.com/JonMunkholm/catalog/internal/web/middleware"
)

// Server is the HTTP server for the catalog API.
type Server struct {
	service *core.Service
	cfg     *config.Config
	router  *chi.Mux
	server  *http.Server

	audit       AuditReader
	limiter     *middleware.RateLimiter
	bulkLimiter *middleware.RateLimiter
}

// AuditReader lists a vendor's audit trail, newest first.
type AuditReader interface {
	AuditEntries(ctx context.Context, vendorID string, limit int) ([]core.AuditEntry, error)
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithAuditReader exposes the audit trail under /api/vendors/{vendorID}/audit-log.
func WithAuditReader(r AuditReader) ServerOption {
	return func(s *Server) { s.audit = r }
}

// NewServer creates a Server for service configured by cfg.
func NewServer(service *core.Service, cfg *config.Config, opts ...ServerOption) *Server {
	s := &Server{
		service: service,
		cfg:     cfg,
		router:  chi.NewRouter(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if cfg.Rate.Enabled {
		s.limiter = middleware.NewRateLimiter(cfg.Rate.RequestsPerMinute, cfg.Rate.Burst)
		s.bulkLimiter = middleware.NewRateLimiter(cfg.Rate.ImportLimit, max(1, cfg.Rate.ImportLimit/2))
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	s.router.Use(chimw.Compress(5))
	s.router.Use(s.securityHeaders)

	if s.limiter != nil {
		s.router.Use(s.limiter.Middleware(s.rejectRateLimited))
	}
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Use(middleware.APIKeyAuth(s.cfg.Security))

		r.With(chimw.Timeout(s.cfg.Server.RequestTimeout)).
			Get("/products/template", s.handleDownloadTemplate)

		r.Route("/vendors/{vendorID}", func(r chi.Router) {
			// Imports carry their own, longer deadline.
			r.Group(func(r chi.Router) {
				if s.bulkLimiter != nil {
					r.Use(s.bulkLimiter.Middleware(s.rejectRateLimited))
				}
				r.Post("/products/import", s.handleImport)
				r.Post("/products/import/preview", s.handlePreview)

				r.With(chimw.Timeout(s.cfg.Server.RequestTimeout)).
					Post("/products/prices/adjust", s.handleAdjustPrices)
				r.With(chimw.Timeout(s.cfg.Server.RequestTimeout)).
					Post("/products/restock", s.handleRestock)
			})

			r.Group(func(r chi.Router) {
				r.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))
				r.Get("/products/export", s.handleExport)
				r.Get("/audit-log", s.handleAuditLog)
			})
		})
	})
}

// Start listens on the configured address. Rate limiter eviction stops when
// ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	for _, rl := range []*middleware.RateLimiter{s.limiter, s.bulkLimiter} {
		if rl != nil {
			go rl.Run(ctx)
		}
	}

	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("starting server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

func (s *Server) securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		if s.cfg.Security.EnableCSP {
			w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:")
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) rejectRateLimited(w http.ResponseWriter, r *http.Request) {
	s.respondError(w, r, core.ErrRateLimited, http.StatusTooManyRequests)
}

// writeJSON encodes v as JSON with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
