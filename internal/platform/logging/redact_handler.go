package logging

import (
	"log/slog"
	"regexp"

	"github.com/m-mizutani/masq"
)

// SensitiveHeaders is the canonical set of HTTP header names (lowercase) that
// carry credentials and must be redacted before logging. Shopify access
// tokens arrive on X-Shopify-Access-Token when the engine is deployed behind
// the app proxy, so that header is part of the set.
var SensitiveHeaders = map[string]bool{
	"authorization":          true,
	"x-api-key":              true,
	"x-shopify-access-token": true,
	"cookie":                 true,
}

// Value-level patterns catching credentials that escape call-site redaction:
// bare "Bearer <token>" strings, raw JWTs (segments of 10+ chars, so version
// strings stay readable), and inline "api_key=<value>" fragments.
var secretValuePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)bearer\s+[a-zA-Z0-9\-._~+/]+=*`),
	regexp.MustCompile(`[a-zA-Z0-9\-_]{10,}\.[a-zA-Z0-9\-_]{10,}\.[a-zA-Z0-9\-_]{10,}`),
	regexp.MustCompile(`(?i)(api[_\-]?key|apikey)\s*[:=]\s*\S+`),
}

// Non-header field names redacted by exact match. Action payloads are logged
// at debug level, so shop tokens that leak into a payload map are caught
// here.
var secretFieldNames = []string{"password", "secret", "token", "accessToken"}

// Prefixes covering variants like "secret_key" and "api_key_v2".
var secretFieldPrefixes = []string{"secret_", "api_key"}

// newRedactAttr builds the masq-powered ReplaceAttr hook installed on every
// handler the service constructs.
func newRedactAttr() func([]string, slog.Attr) slog.Attr {
	opts := make([]masq.Option, 0,
		len(SensitiveHeaders)+len(secretFieldNames)+len(secretFieldPrefixes)+len(secretValuePatterns))

	for name := range SensitiveHeaders {
		opts = append(opts, masq.WithFieldName(name))
	}
	for _, name := range secretFieldNames {
		opts = append(opts, masq.WithFieldName(name))
	}
	for _, prefix := range secretFieldPrefixes {
		opts = append(opts, masq.WithFieldPrefix(prefix))
	}
	for _, pattern := range secretValuePatterns {
		opts = append(opts, masq.WithRegex(pattern))
	}

	return masq.New(opts...)
}
