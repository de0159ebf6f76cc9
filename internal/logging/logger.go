// Package logging configures log/slog for the catalog binaries and carries
// chi's request id into every entry logged while serving a request.
//
// The server logs to stdout through Setup. catalogctl builds its logger with
// New on stderr so that CSV and JSON results on stdout stay clean.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
)

// Setup installs the default slog logger writing to stdout.
//
// Level values: "debug", "info", "warn", "error" (default: "info")
// Format values: "text", "json" (default: "text")
//
// Use "json" in production so log shippers can parse entries; "text" reads
// better in a terminal.
func Setup(level, format string) {
	slog.SetDefault(New(os.Stdout, level, format))
}

// New builds a logger writing to w. The CLI uses it to keep logs on stderr
// while results go to stdout.
func New(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// parseLevel converts a level name to slog.Level, defaulting to Info.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// FromContext returns the default logger, tagged with request_id when ctx
// came through chi's RequestID middleware. Outside a request (the CLI,
// background jobs) it is the plain default logger.
//
// Usage:
//
//	func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
//	    logger := logging.FromContext(r.Context())
//	    logger.Info("exporting catalog", "vendor_id", vendorParam(r))
//	}
func FromContext(ctx context.Context) *slog.Logger {
	logger := slog.Default()
	if reqID := middleware.GetReqID(ctx); reqID != "" {
		logger = logger.With("request_id", reqID)
	}
	return logger
}

// WithFields returns a request logger carrying extra fields, for operations
// that log several times and should share the same context in each entry.
//
// The bulk operations use vendor_id, operation and either import_id or
// operation_id:
//
//	log := logging.WithFields(ctx,
//	    "vendor_id", vendorID,
//	    "operation", "import",
//	    "import_id", importID,
//	)
//	log.Debug("skipped existing product", "row", rec.Row)
//	// ... later ...
//	log.Info("import completed", "success", n)
func WithFields(ctx context.Context, args ...any) *slog.Logger {
	return FromContext(ctx).With(args...)
}
