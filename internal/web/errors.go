package web

// errors.go turns handler errors into responses.
//
// The technical error is logged with the request id; the client only sees
// the mapped core.UserMessage, as JSON for API callers or as an HTML
// fragment for HTMX requests.

import (
	"context"
	"net/http"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/catalog/internal/core"
	"github.com/JonMunkholm/catalog/internal/logging"
	"github.com/JonMunkholm/catalog/internal/web/views"
)

// ErrorResponse is the JSON body of every API error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// respondError logs err and writes the user-facing message. A zero
// statusCode derives the status from err.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	if statusCode == 0 {
		statusCode = statusFor(err)
	}
	userMsg := core.MapError(err)

	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
		"request_id", middleware.GetReqID(r.Context()),
	)

	if isHTMX(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(statusCode)
		views.ErrorAlert(userMsg.Message, userMsg.Action, userMsg.Code).Render(r.Context(), w)
		return
	}

	writeJSON(w, statusCode, ErrorResponse{
		Error:   userMsg.Message,
		Message: userMsg.Message,
		Action:  userMsg.Action,
		Code:    userMsg.Code,
	})
}

// statusFor maps known errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrVendorRequired),
		errors.Is(err, core.ErrBadRequest),
		errors.Is(err, core.ErrNoFile):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, core.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, core.ErrTooManyImports),
		errors.Is(err, core.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// wantsHTML reports whether the client is HTMX or asked for HTML.
func wantsHTML(r *http.Request) bool {
	return isHTMX(r) || strings.Contains(r.Header.Get("Accept"), "text/html")
}
