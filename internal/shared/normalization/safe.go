// Package normalization shields response adapters from shape drift in backend payloads.
//
// Every helper is total: no input makes it panic. Callers pass every known spelling
// of a field to Pick, ordered by preference, to tolerate camelCase and snake_case
// variants of the same logical field.
package normalization

// AsArray returns v when it is a JSON array, fallback otherwise.
// A nil fallback is replaced by an empty slice.
func AsArray(v any, fallback []any) []any {
	switch typed := v.(type) {
	case []any:
		if typed != nil {
			return typed
		}
	case []map[string]any:
		items := make([]any, 0, len(typed))
		for _, entry := range typed {
			items = append(items, entry)
		}
		return items
	case []string:
		items := make([]any, 0, len(typed))
		for _, entry := range typed {
			items = append(items, entry)
		}
		return items
	}
	if fallback == nil {
		return []any{}
	}
	return fallback
}

// AsBool returns v only when it is strictly a boolean.
func AsBool(v any, fallback bool) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	return fallback
}

// AsString returns v only when it is strictly a string. The value is not trimmed.
func AsString(v any, fallback string) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fallback
}

// Pick returns the value of the first key in obj that is present and not null.
// fallback is returned when obj is not an object or no key matches.
func Pick(obj any, keys []string, fallback any) any {
	m, ok := obj.(map[string]any)
	if !ok || m == nil {
		return fallback
	}
	for _, key := range keys {
		if value, found := m[key]; found && value != nil {
			return value
		}
	}
	return fallback
}

// PickString picks the first non-null alias and keeps it only if it is a string.
func PickString(obj any, keys []string, fallback string) string {
	return AsString(Pick(obj, keys, nil), fallback)
}

// PickBool picks the first non-null alias and keeps it only if it is a boolean.
func PickBool(obj any, keys []string, fallback bool) bool {
	return AsBool(Pick(obj, keys, nil), fallback)
}

// PickInt picks the first non-null alias and coerces it to an int.
func PickInt(obj any, keys []string, fallback int) int {
	return AsInt(Pick(obj, keys, nil), fallback)
}

// PickFloat picks the first non-null alias and coerces it to a float64.
func PickFloat(obj any, keys []string, fallback float64) float64 {
	return AsFloat64(Pick(obj, keys, nil), fallback)
}

// PickMap resolves a nested container, substituting an empty map when it is missing.
func PickMap(obj any, keys ...string) map[string]any {
	return AsMap(Pick(obj, keys, nil))
}

// PickStringSlice resolves a list of strings; missing or malformed lists become empty.
func PickStringSlice(obj any, keys ...string) []string {
	return AsStringSlice(Pick(obj, keys, nil))
}

// PickOptionalString returns nil unless an alias holds a string.
func PickOptionalString(obj any, keys ...string) *string {
	if s, ok := Pick(obj, keys, nil).(string); ok {
		return &s
	}
	return nil
}

// PickOptionalBool returns nil unless an alias holds a boolean.
func PickOptionalBool(obj any, keys ...string) *bool {
	if b, ok := Pick(obj, keys, nil).(bool); ok {
		return &b
	}
	return nil
}

// PickOptionalInt returns nil unless an alias holds a number.
func PickOptionalInt(obj any, keys ...string) *int {
	value := Pick(obj, keys, nil)
	switch value.(type) {
	case int, int32, int64, float32, float64:
		n := AsInt(value, 0)
		return &n
	}
	if parsed, ok := parseNumber(value); ok {
		n := int(parsed)
		return &n
	}
	return nil
}
