package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/JonMunkholm/catalog/internal/config"
	"github.com/JonMunkholm/catalog/internal/core"
)

// APIKeyAuth rejects requests without a configured X-API-Key.
// When RequireAPIKey is false every request passes; when it is true and no
// keys are configured every request is rejected.
//
// Responses:
//   - 401 when the X-API-Key header is missing
//   - 403 when the key matches none of cfg.APIKeys
//
// Both carry the AUTH001 JSON error body used by the rest of the API.
func APIKeyAuth(cfg config.SecurityConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.RequireAPIKey {
				next.ServeHTTP(w, r)
				return
			}

			apiKey := r.Header.Get("X-API-Key")
			if apiKey == "" {
				slog.Warn("auth: missing API key",
					"path", r.URL.Path,
					"method", r.Method,
					"remote_addr", r.RemoteAddr,
				)
				writeUnauthorized(w, http.StatusUnauthorized)
				return
			}

			if !isValidAPIKey(apiKey, cfg.APIKeys) {
				slog.Warn("auth: invalid API key",
					"path", r.URL.Path,
					"method", r.Method,
					"remote_addr", r.RemoteAddr,
				)
				writeUnauthorized(w, http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// isValidAPIKey compares against every key in constant time.
func isValidAPIKey(key string, validKeys []string) bool {
	valid := 0
	for _, validKey := range validKeys {
		valid |= subtle.ConstantTimeCompare([]byte(key), []byte(validKey))
	}
	return valid == 1
}

// writeUnauthorized writes the mapped ErrUnauthorized message as JSON.
func writeUnauthorized(w http.ResponseWriter, status int) {
	msg := core.MapError(core.ErrUnauthorized)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"error":   msg.Message,
		"message": msg.Message,
		"action":  msg.Action,
		"code":    msg.Code,
	})
}
