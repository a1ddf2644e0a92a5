package innertube

import "strings"

// Navigation helpers for the untyped renderer trees the API returns.
// Responses are deeply nested map[string]any structures whose exact shape
// shifts between page-layout versions, so every accessor tolerates missing
// or differently-typed nodes.

// mapAt walks nested maps by key and returns the map at the end of the
// path, or nil if any step is missing.
func mapAt(v any, keys ...string) map[string]any {
	for _, key := range keys {
		m, ok := v.(map[string]any)
		if !ok {
			return nil
		}
		v = m[key]
	}
	m, _ := v.(map[string]any)
	return m
}

// sliceAt walks nested maps by key and returns the slice at the end of the
// path, or nil if any step is missing.
func sliceAt(v any, keys ...string) []any {
	if len(keys) > 1 {
		v = mapAt(v, keys[:len(keys)-1]...)
		keys = keys[len(keys)-1:]
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	s, _ := m[keys[0]].([]any)
	return s
}

// stringAt walks nested maps by key and returns the string at the end of
// the path, or "" if any step is missing.
func stringAt(v any, keys ...string) string {
	if len(keys) > 1 {
		v = mapAt(v, keys[:len(keys)-1]...)
		keys = keys[len(keys)-1:]
	}
	m, ok := v.(map[string]any)
	if !ok {
		return ""
	}
	s, _ := m[keys[0]].(string)
	return s
}

// numberAt walks nested maps by key and returns the number at the end of
// the path. JSON numbers decode as float64.
func numberAt(v any, keys ...string) (float64, bool) {
	if len(keys) > 1 {
		v = mapAt(v, keys[:len(keys)-1]...)
		keys = keys[len(keys)-1:]
	}
	m, ok := v.(map[string]any)
	if !ok {
		return 0, false
	}
	n, ok := m[keys[0]].(float64)
	return n, ok
}

// boolAt walks nested maps by key and returns the bool at the end of the
// path, or false if any step is missing.
func boolAt(v any, keys ...string) bool {
	if len(keys) > 1 {
		v = mapAt(v, keys[:len(keys)-1]...)
		keys = keys[len(keys)-1:]
	}
	m, ok := v.(map[string]any)
	if !ok {
		return false
	}
	b, _ := m[keys[0]].(bool)
	return b
}

// text flattens an API text object into a plain string. The API emits
// text as a bare string, a {"simpleText": ...} wrapper, a {"runs": [...]}
// list, or a view-model {"content": ...} field depending on the renderer
// generation.
func text(v any) string {
	if v == nil {
		return ""
	}

	if s, ok := v.(string); ok {
		return s
	}

	m, ok := v.(map[string]any)
	if !ok {
		return ""
	}

	if s, ok := m["simpleText"].(string); ok {
		return s
	}
	if s, ok := m["content"].(string); ok {
		return s
	}

	if runs, ok := m["runs"].([]any); ok {
		var b strings.Builder
		for _, run := range runs {
			b.WriteString(stringAt(run, "text"))
		}
		return b.String()
	}

	return ""
}

// findKey searches the tree depth-first for the first occurrence of key
// and returns its value, or nil when the key is absent. Map iteration
// order is unspecified, so callers needing a strict priority between
// multiple candidate locations must probe each location explicitly.
func findKey(v any, key string) any {
	switch node := v.(type) {
	case map[string]any:
		if val, ok := node[key]; ok {
			return val
		}
		for _, child := range node {
			if found := findKey(child, key); found != nil {
				return found
			}
		}
	case []any:
		for _, child := range node {
			if found := findKey(child, key); found != nil {
				return found
			}
		}
	}
	return nil
}
