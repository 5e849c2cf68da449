package normalization

import (
	"encoding/json"
	"strconv"
	"strings"
)

// AsInt coerces numeric values decoded from the REST layer into Go ints.
// Numeric strings are accepted; anything else yields fallback.
func AsInt(value any, fallback int) int {
	switch typed := value.(type) {
	case int:
		return typed
	case int32:
		return int(typed)
	case int64:
		return int(typed)
	case float64:
		return int(typed)
	case float32:
		return int(typed)
	}
	if parsed, ok := parseNumber(value); ok {
		return int(parsed)
	}
	return fallback
}

// AsFloat64 coerces numeric values (including numeric strings) into float64.
func AsFloat64(value any, fallback float64) float64 {
	switch typed := value.(type) {
	case float64:
		return typed
	case float32:
		return float64(typed)
	case int:
		return float64(typed)
	case int32:
		return float64(typed)
	case int64:
		return float64(typed)
	}
	if parsed, ok := parseNumber(value); ok {
		return parsed
	}
	return fallback
}

func parseNumber(value any) (float64, bool) {
	var raw string
	switch typed := value.(type) {
	case json.Number:
		raw = typed.String()
	case string:
		raw = typed
	default:
		return 0, false
	}
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, false
	}
	parsed, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, false
	}
	return parsed, true
}

// AsMap returns value as an object, substituting an empty map for anything else
// so nested lookups degrade to defaults instead of failing.
func AsMap(value any) map[string]any {
	if typed, ok := value.(map[string]any); ok && typed != nil {
		return typed
	}
	return map[string]any{}
}

// AsStringSlice keeps the string entries of an arbitrary collection. The result is never nil.
func AsStringSlice(value any) []string {
	items := AsArray(value, nil)
	result := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			result = append(result, s)
		}
	}
	return result
}

// MapFromPayload attempts to unwrap common envelope structures (e.g. {"data": {...}})
// into a plain map for normalization routines.
func MapFromPayload(value any) map[string]any {
	if value == nil {
		return nil
	}
	if typed, ok := value.(map[string]any); ok {
		if data, ok := typed["data"].(map[string]any); ok {
			return data
		}
		return typed
	}
	return nil
}

// FirstNonEmpty returns the first value that is not blank.
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
