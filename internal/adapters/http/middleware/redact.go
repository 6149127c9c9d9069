package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/printcraft/customizer-engine/internal/platform/logging"
)

// RedactHeaders turns request headers into slog attributes for the
// debug-level header dump. Header names in logging.SensitiveHeaders (the
// Authorization and Shopify access token headers among them) get their value
// replaced with "[REDACTED]"; multi-value headers are joined with commas.
func RedactHeaders(headers http.Header) []slog.Attr {
	attrs := make([]slog.Attr, 0, len(headers))
	for key, vals := range headers {
		if logging.SensitiveHeaders[strings.ToLower(key)] {
			attrs = append(attrs, slog.String(key, "[REDACTED]"))
			continue
		}
		attrs = append(attrs, slog.String(key, strings.Join(vals, ",")))
	}
	return attrs
}
