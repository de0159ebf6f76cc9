package core

import (
	"context"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

// ErrVendorRequired is returned when an operation is called without a vendor.
var ErrVendorRequired = errors.New("vendor id is required")

// Service runs bulk catalog operations against a Store.
//
// Operations are sequential within a call; each record's store work either
// fully succeeds or is reported as an error without touching the others.
// A Service built with a nil Store still answers every call, reporting the
// store as unavailable instead of failing.
type Service struct {
	store   Store
	audit   AuditSink
	limiter *ImportLimiter
	now     func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithAuditSink records an audit entry for every bulk operation.
func WithAuditSink(sink AuditSink) Option {
	return func(s *Service) { s.audit = sink }
}

// WithImportLimiter bounds concurrent imports.
func WithImportLimiter(l *ImportLimiter) Option {
	return func(s *Service) { s.limiter = l }
}

// WithClock overrides time.Now, for export timestamps and audit entries.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a Service over store, which may be nil.
func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store: store,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Limiter returns the import limiter, or nil if imports are unbounded.
func (s *Service) Limiter() *ImportLimiter {
	return s.limiter
}

// HasStore reports whether a record store is configured.
func (s *Service) HasStore() bool {
	return s.store != nil
}

// WaitForImports blocks until in-flight imports finish, for graceful shutdown.
func (s *Service) WaitForImports(ctx context.Context) error {
	if s.limiter == nil {
		return nil
	}
	return s.limiter.WaitForDrain(ctx)
}

func checkVendor(vendorID string) error {
	if strings.TrimSpace(vendorID) == "" {
		return ErrVendorRequired
	}
	return nil
}
