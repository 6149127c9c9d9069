// Package middleware provides HTTP middleware for the inbound request
// pipeline.
//
// The chain runs Recovery → RequestID → OpenTelemetry → Logging → Timeout →
// Handler; the tenant-enforcing Shop middleware sits inside the /api/v1
// subrouter only, so health probes and media serving stay untenanted.
package middleware

import "net/http"

// responseWriter records the status code and byte count as they pass through,
// for the recovery, otel, and logging layers that need the outcome after the
// handler returns.
type responseWriter struct {
	http.ResponseWriter
	statusCode    int
	headerWritten bool
	written       int64
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

// WriteHeader records the status and forwards it. Later calls are dropped,
// matching net/http's single-header contract.
func (rw *responseWriter) WriteHeader(code int) {
	if rw.headerWritten {
		return
	}
	rw.statusCode = code
	rw.headerWritten = true
	rw.ResponseWriter.WriteHeader(code)
}

// Write forwards the bytes, accounting for the implicit 200 a bare Write
// triggers.
func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.headerWritten = true
	n, err := rw.ResponseWriter.Write(b)
	rw.written += int64(n)
	return n, err
}

// Unwrap exposes the underlying writer for http.ResponseController and
// interface assertions (http.Flusher and friends).
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}
