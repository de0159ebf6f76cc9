package core

import "context"

type contextKey struct{}

// RequestMeta identifies who triggered an operation, for the audit trail.
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

// WithRequestMeta attaches request metadata to ctx.
func WithRequestMeta(ctx context.Context, meta RequestMeta) context.Context {
	return context.WithValue(ctx, contextKey{}, meta)
}

// RequestMetaFromContext returns the metadata attached by WithRequestMeta,
// or the zero value.
func RequestMetaFromContext(ctx context.Context) RequestMeta {
	meta, _ := ctx.Value(contextKey{}).(RequestMeta)
	return meta
}
