package middleware

import (
	"context"
	"maps"
	"net/http"
	"sync"
	"time"
)

// Timeout enforces a per-request deadline. The handler's context carries it,
// so slow executors (gallery downloads in particular) abort with it instead
// of running on after the client gave up; when the deadline passes first the
// client gets a 504.
//
// The handler runs in its own goroutine against a buffering writer. The
// writer's mutex guarantees that exactly one of the handler and the timeout
// path touches the real response.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			dw := &deadlineWriter{dst: w}
			done := make(chan struct{})

			go func() {
				defer close(done)
				next.ServeHTTP(dw, r.WithContext(ctx))
			}()

			select {
			case <-done:
				dw.mu.Lock()
				dw.flush()
				dw.mu.Unlock()
			case <-ctx.Done():
				dw.mu.Lock()
				if !dw.committed {
					w.WriteHeader(http.StatusGatewayTimeout)
				}
				dw.mu.Unlock()
			}
		})
	}
}

// deadlineWriter holds the handler's output in memory until the race against
// the deadline is decided. Nothing reaches the wire before flush.
type deadlineWriter struct {
	dst       http.ResponseWriter
	mu        sync.Mutex
	header    http.Header
	body      []byte
	status    int
	committed bool
}

func (dw *deadlineWriter) Header() http.Header {
	dw.mu.Lock()
	defer dw.mu.Unlock()

	if dw.header == nil {
		dw.header = make(http.Header)
	}
	return dw.header
}

func (dw *deadlineWriter) Write(b []byte) (int, error) {
	dw.mu.Lock()
	defer dw.mu.Unlock()

	if !dw.committed {
		dw.committed = true
		dw.status = http.StatusOK
	}
	dw.body = append(dw.body, b...)
	return len(b), nil
}

func (dw *deadlineWriter) WriteHeader(code int) {
	dw.mu.Lock()
	defer dw.mu.Unlock()

	if !dw.committed {
		dw.committed = true
		dw.status = code
	}
}

// flush replays the buffered headers, status, and body onto the real writer.
// Caller holds dw.mu.
func (dw *deadlineWriter) flush() {
	if dw.header != nil {
		maps.Copy(dw.dst.Header(), dw.header)
	}
	if dw.committed {
		dw.dst.WriteHeader(dw.status)
	}
	if len(dw.body) > 0 {
		_, _ = dw.dst.Write(dw.body)
	}
}
