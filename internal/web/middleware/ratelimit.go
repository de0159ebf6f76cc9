package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter hands out one token bucket per client IP.
//
// Buckets are created on first sight and dropped by Run once a client has
// been idle for idleTTL, so the map stays bounded by recent traffic:
//
//	rl := middleware.NewRateLimiter(cfg.Rate.RequestsPerMinute, cfg.Rate.Burst)
//	go rl.Run(ctx)
//	r.Use(rl.Middleware(rejectFn))
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
	idleTTL  time.Duration
	now      func() time.Time
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter allows perMinute requests per client with the given burst.
func NewRateLimiter(perMinute, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Limit(float64(perMinute) / 60),
		burst:    burst,
		idleTTL:  3 * time.Minute,
		now:      time.Now,
	}
}

// Allow consumes a token for ip.
func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	v, ok := rl.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[ip] = v
	}
	now := rl.now()
	v.lastSeen = now
	rl.mu.Unlock()

	return v.limiter.AllowN(now, 1)
}

// Run evicts idle visitors until ctx is done.
func (rl *RateLimiter) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.evict()
		}
	}
}

// evict drops visitors not seen within idleTTL.
func (rl *RateLimiter) evict() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	cutoff := rl.now().Add(-rl.idleTTL)
	for ip, v := range rl.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(rl.visitors, ip)
		}
	}
}

// Len returns the number of tracked clients.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.visitors)
}

// Middleware rejects over-budget clients through reject. It keys on
// RemoteAddr, so TrustedRealIP must run first.
func (rl *RateLimiter) Middleware(reject http.HandlerFunc) func(http.Handler) http.Handler {
	retryAfter := "60"
	if rl.limit > 0 {
		retryAfter = strconv.Itoa(max(1, int(1/float64(rl.limit))))
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !rl.Allow(r.RemoteAddr) {
				w.Header().Set("Retry-After", retryAfter)
				reject(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
