// Package middleware provides HTTP middleware for the catalog API.
package middleware

import (
	"net/http"
	"time"

	"github.com/JonMunkholm/catalog/internal/logging"
)

// Logger logs one structured line per request with the chi request id.
//
// Responses with a 5xx status are logged at Warn, everything else at Info.
// TrustedRealIP must run first for ip to be the client address.
//
// Log fields:
//   - method: HTTP method (GET, POST, etc.)
//   - path: request URL path
//   - status: response status code
//   - bytes: response body size as written, before compression
//   - duration_ms: processing time in milliseconds
//   - ip: client IP as resolved by TrustedRealIP
//   - user_agent: client user agent string
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Wrap the writer to capture status and size
		ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(ww, r)

		logger := logging.FromContext(r.Context())
		args := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.status,
			"bytes", ww.written,
			"duration_ms", time.Since(start).Milliseconds(),
			"ip", r.RemoteAddr,
			"user_agent", r.UserAgent(),
		}
		if ww.status >= http.StatusInternalServerError {
			logger.Warn("request", args...)
			return
		}
		logger.Info("request", args...)
	})
}

// responseWriter captures the status code and body size.
type responseWriter struct {
	http.ResponseWriter
	status      int
	written     int
	wroteHeader bool
}

// WriteHeader records the first status written and ignores later calls.
func (w *responseWriter) WriteHeader(status int) {
	if w.wroteHeader {
		return
	}
	w.status = status
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(status)
}

// Write counts body bytes, implying a 200 status if none was set.
func (w *responseWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(b)
	w.written += n
	return n, err
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (w *responseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
