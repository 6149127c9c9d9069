package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/printcraft/customizer-engine/internal/platform/httpclient"
)

const headerRequestID = "X-Request-ID"

// requestIDKey is this package's own context key for request IDs. httpclient
// keeps a separate key so neither package depends on the other's internals;
// WithRequestID writes both.
type requestIDKey struct{}

// WithRequestID stores the request ID on the context, for this package and
// for httpclient header injection on outbound calls.
func WithRequestID(ctx context.Context, id string) context.Context {
	ctx = context.WithValue(ctx, requestIDKey{}, id)
	return httpclient.WithRequestID(ctx, id)
}

// RequestIDFromContext returns the request ID stored on the context, or an
// empty string when none is set.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// RequestID returns middleware that assigns every request an X-Request-ID.
// An ID supplied by the caller is kept so the admin frontend can correlate
// its own logs; otherwise a fresh UUID is minted. The ID lands in the request
// context and is echoed on the response.
func RequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(headerRequestID)
			if id == "" {
				id = uuid.NewString()
			}
			w.Header().Set(headerRequestID, id)
			next.ServeHTTP(w, r.WithContext(WithRequestID(r.Context(), id)))
		})
	}
}
