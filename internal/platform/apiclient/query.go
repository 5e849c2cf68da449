package apiclient

import (
	"fmt"
	"net/url"
	"reflect"
)

// BuildQueryString encodes params as a URL query. Nil values and nil pointers are
// skipped, slices repeat their key once per element, and keys come out sorted.
func BuildQueryString(params map[string]any) string {
	values := url.Values{}
	for key, raw := range params {
		value, ok := deref(raw)
		if !ok {
			continue
		}
		if value.Kind() == reflect.Slice || value.Kind() == reflect.Array {
			for i := 0; i < value.Len(); i++ {
				if item, ok := deref(value.Index(i).Interface()); ok {
					values.Add(key, fmt.Sprint(item.Interface()))
				}
			}
			continue
		}
		values.Add(key, fmt.Sprint(value.Interface()))
	}
	return values.Encode()
}

// WithQuery appends the encoded params to endpoint when there are any.
func WithQuery(endpoint string, params map[string]any) string {
	if qs := BuildQueryString(params); qs != "" {
		return endpoint + "?" + qs
	}
	return endpoint
}

func deref(raw any) (reflect.Value, bool) {
	if raw == nil {
		return reflect.Value{}, false
	}
	value := reflect.ValueOf(raw)
	for value.Kind() == reflect.Pointer || value.Kind() == reflect.Interface {
		if value.IsNil() {
			return reflect.Value{}, false
		}
		value = value.Elem()
	}
	return value, true
}
