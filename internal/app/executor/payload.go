package executor

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/printcraft/customizer-engine/internal/domain"
	"github.com/printcraft/customizer-engine/internal/domain/merchant"
)

// Payloads and snapshots arrive as generic maps, either built in-process or
// decoded from JSON. The helpers below tolerate both forms (typed values vs.
// json-generic []any / float64) so executors stay agnostic of the transport.

// stringField returns the payload value at key coerced to a string. Numeric
// ids (JSON numbers) are formatted without a fractional part.
func stringField(payload map[string]any, key string) string {
	switch v := payload[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// requireString returns the payload value at key or a field-level validation
// error when absent or empty.
func requireString(payload map[string]any, key string) (string, error) {
	s := stringField(payload, key)
	if s == "" {
		return "", &domain.ValidationError{Fields: map[string]string{key: "required"}}
	}
	return s, nil
}

// mapField returns the payload value at key as a map, or nil when absent or
// of another type.
func mapField(payload map[string]any, key string) map[string]any {
	m, _ := payload[key].(map[string]any)
	return m
}

// requireMap returns the payload value at key as a non-empty map or a
// field-level validation error.
func requireMap(payload map[string]any, key string) (map[string]any, error) {
	m := mapField(payload, key)
	if len(m) == 0 {
		return nil, &domain.ValidationError{Fields: map[string]string{key: "required"}}
	}
	return m, nil
}

// stringSliceField returns the payload value at key as a string slice,
// accepting both []string and json-generic []any.
func stringSliceField(payload map[string]any, key string) []string {
	switch v := payload[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s := coerceString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// mapSliceField returns the payload value at key as a slice of maps,
// accepting both []map[string]any and json-generic []any.
func mapSliceField(payload map[string]any, key string) []map[string]any {
	switch v := payload[key].(type) {
	case []map[string]any:
		return v
	case []any:
		out := make([]map[string]any, 0, len(v))
		for _, item := range v {
			if m, ok := item.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	default:
		return nil
	}
}

func coerceString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return ""
	}
}

func boolField(m map[string]any, key string) bool {
	b, _ := m[key].(bool)
	return b
}

// targetID extracts the configuration target from a payload's productId
// field, falling back to the shop-wide default when absent.
func targetID(payload map[string]any) string {
	if id := stringField(payload, "productId"); id != "" {
		return id
	}
	return merchant.GlobalTargetID
}

// reencode round-trips a snapshot value through JSON into dst, recovering
// typed structures from either in-process values or json-generic maps.
func reencode(v, dst any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding snapshot value: %w", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decoding snapshot value: %w", err)
	}
	return nil
}

// Cache keys derived from a mutation, matching what the read path caches.

func configCacheKeys(shop, targetID string) []string {
	return []string{
		"product_" + shop + "_" + targetID,
		"pub_prod_" + shop + "_" + targetID,
	}
}

func assetCacheKeys(shop, assetType string) []string {
	return []string{
		"assets_" + shop + "_all",
		"assets_" + shop + "_" + assetType,
	}
}
