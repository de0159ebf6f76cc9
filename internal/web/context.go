package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/catalog/internal/core"
)

// withRequestMeta adds the client IP and User-Agent to ctx for the audit
// trail. RemoteAddr has already been resolved by TrustedRealIP.
func withRequestMeta(ctx context.Context, r *http.Request) context.Context {
	return core.WithRequestMeta(ctx, core.RequestMeta{
		IPAddress: r.RemoteAddr,
		UserAgent: r.UserAgent(),
	})
}
