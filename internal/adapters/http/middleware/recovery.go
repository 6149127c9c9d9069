package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/printcraft/customizer-engine/internal/adapters/http/dto"
)

// errInternalServer is what clients see when a panic is recovered. The panic
// value and stack stay in the log; executor payloads can carry arbitrary
// merchant data, so nothing internal leaks into the response body.
var errInternalServer = errors.New("internal server error")

// Recovery returns middleware that converts downstream panics into a logged
// RFC 9457 500 response. When the handler already started writing the
// response, only the log entry is emitted.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rw := newResponseWriter(w)

			defer func() {
				v := recover()
				if v == nil {
					return
				}
				logger.ErrorContext(r.Context(), "panic recovered",
					slog.String("panic", fmt.Sprint(v)),
					slog.String("stack", string(debug.Stack())),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
				)
				if !rw.headerWritten {
					dto.WriteErrorResponse(rw, r, errInternalServer)
				}
			}()

			next.ServeHTTP(rw, r)
		})
	}
}
