package dcontext

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type requestIDKey struct{}

// WithRequestID attaches a freshly generated request id to ctx.
func WithRequestID(ctx context.Context) context.Context {
	return context.WithValue(ctx, requestIDKey{}, uuid.NewString())
}

// RequestID returns the request id attached to ctx, or "" if none.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// WithRequest attaches commonly logged request fields (method, URI, remote
// address) to ctx, mirroring the registry's http request context fields.
func WithRequest(ctx context.Context, r *http.Request) context.Context {
	ctx = WithRequestID(ctx)
	logger := GetLogger(ctx).WithFields(map[string]any{
		"http.request.id":         RequestID(ctx),
		"http.request.method":     r.Method,
		"http.request.uri":        r.RequestURI,
		"http.request.remoteaddr": r.RemoteAddr,
	})
	return WithLogger(ctx, logger)
}
