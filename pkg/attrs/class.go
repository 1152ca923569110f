package attrs

import (
	"fmt"
	"slices"
	"strings"
)

// NormalizeClass flattens a class declaration into a space-separated string.
// Strings are split on whitespace, slices are flattened recursively and maps
// contribute their truthy keys in sorted order.
func NormalizeClass(v any) string {
	return strings.Join(appendClasses(nil, v), " ")
}

func appendClasses(dst []string, v any) []string {
	switch typed := v.(type) {
	case nil:
		return dst
	case Value:
		return appendClasses(dst, typed.Interface())
	case string:
		return append(dst, strings.Fields(typed)...)
	case []string:
		for _, item := range typed {
			dst = append(dst, strings.Fields(item)...)
		}
		return dst
	case []any:
		for _, item := range typed {
			dst = appendClasses(dst, item)
		}
		return dst
	case map[string]bool:
		for _, key := range sortedKeys(typed) {
			if typed[key] {
				dst = append(dst, strings.Fields(key)...)
			}
		}
		return dst
	case map[string]any:
		for _, key := range sortedKeys(typed) {
			if truthy(typed[key]) {
				dst = append(dst, strings.Fields(key)...)
			}
		}
		return dst
	case fmt.Stringer:
		return append(dst, strings.Fields(typed.String())...)
	default:
		return append(dst, strings.Fields(fmt.Sprint(typed))...)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}

func truthy(v any) bool {
	switch typed := v.(type) {
	case nil:
		return false
	case bool:
		return typed
	case string:
		return typed != ""
	case int:
		return typed != 0
	case int64:
		return typed != 0
	case float64:
		return typed != 0
	case Value:
		return !typed.Omitted() && typed.Text() != ""
	default:
		return true
	}
}
