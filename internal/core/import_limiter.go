package core

// import_limiter.go bounds how many imports run at once.
//
// Each import holds one slot of a weighted semaphore for its lifetime.
// Callers that cannot get a slot within maxWait fail with ErrTooManyImports.
// WaitForDrain lets shutdown wait for in-flight imports to finish.

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/semaphore"
)

// ErrTooManyImports is returned when every import slot stays busy for the
// whole wait window. Clients should retry after a short delay.
var ErrTooManyImports = errors.New("too many concurrent imports, please try again later")

const (
	DefaultMaxConcurrentImports = 5
	DefaultMaxImportWait        = 30 * time.Second
)

// ImportLimiter caps concurrent imports.
type ImportLimiter struct {
	sem     *semaphore.Weighted
	max     int64
	maxWait time.Duration
	active  atomic.Int64
}

// NewImportLimiter allows at most maxConcurrent imports; non-positive
// arguments fall back to the defaults.
func NewImportLimiter(maxConcurrent int, maxWait time.Duration) *ImportLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentImports
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxImportWait
	}
	return &ImportLimiter{
		sem:     semaphore.NewWeighted(int64(maxConcurrent)),
		max:     int64(maxConcurrent),
		maxWait: maxWait,
	}
}

// Acquire takes a slot. The caller must Release it when the import ends.
// A cancelled ctx returns ctx.Err(); an expired wait returns ErrTooManyImports.
func (l *ImportLimiter) Acquire(ctx context.Context) error {
	waitCtx, cancel := context.WithTimeout(ctx, l.maxWait)
	defer cancel()

	if err := l.sem.Acquire(waitCtx, 1); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrTooManyImports
	}
	l.active.Add(1)
	return nil
}

// TryAcquire takes a slot only if one is free right now.
func (l *ImportLimiter) TryAcquire() bool {
	if !l.sem.TryAcquire(1) {
		return false
	}
	l.active.Add(1)
	return true
}

// Release returns a slot taken by Acquire or TryAcquire.
func (l *ImportLimiter) Release() {
	l.active.Add(-1)
	l.sem.Release(1)
}

// ActiveCount returns the number of imports holding a slot.
func (l *ImportLimiter) ActiveCount() int {
	return int(l.active.Load())
}

// WaitForDrain blocks until no import holds a slot or ctx is done.
func (l *ImportLimiter) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		if l.ActiveCount() == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// ImportLimiterStatus is a point-in-time view of the limiter.
type ImportLimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"max_concurrent"`
}

// Status reports current usage for the health endpoint.
func (l *ImportLimiter) Status() ImportLimiterStatus {
	active := l.ActiveCount()
	return ImportLimiterStatus{
		Active:        active,
		Available:     int(l.max) - active,
		MaxConcurrent: int(l.max),
	}
}
