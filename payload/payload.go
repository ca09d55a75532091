// Package payload reads values out of the nested key/value data merged into
// a document.
//
// Payloads are whatever encoding/json produces for an object: nested
// map[string]any with float64, string, bool, nil and []any leaves. Go
// integer kinds and json.Number are accepted too.
package payload

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Resolve walks data along the dot-separated path and returns the value at
// its end. It reports false when a step meets nil, a missing key, or
// something that is not a map. false, 0 and "" are present values.
func Resolve(data any, path string) (any, bool) {
	cur := data
	for _, key := range strings.Split(path, ".") {
		m, ok := asMap(cur)
		if !ok {
			return nil, false
		}
		v, ok := m[key]
		if !ok || v == nil {
			return nil, false
		}
		cur = v
	}
	return cur, true
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, m != nil
	case map[string]string:
		out := make(map[string]any, len(m))
		for k, s := range m {
			out[k] = s
		}
		return out, true
	}
	return nil, false
}

// String renders v the way the form builder's preview does: integral
// numbers without a fraction, booleans as true/false, maps and slices as
// JSON.
func String(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case json.Number:
		return x.String()
	case float64:
		return formatFloat(x, 64)
	case float32:
		return formatFloat(float64(x), 32)
	case int:
		return strconv.Itoa(x)
	case int8, int16, int32, int64:
		n, _ := toInt64(x)
		return strconv.FormatInt(n, 10)
	case uint, uint8, uint16, uint32, uint64:
		n, _ := toUint64(x)
		return strconv.FormatUint(n, 10)
	case []byte:
		return string(x)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

func formatFloat(f float64, bits int) string {
	abs := f
	if abs < 0 {
		abs = -abs
	}
	if abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		return strconv.FormatFloat(f, 'g', -1, bits)
	}
	return strconv.FormatFloat(f, 'f', -1, bits)
}

// Truthy reports whether v turns a checkbox on: boolean true, the string
// "true", or the number 1. Everything else is off.
func Truthy(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case string:
		return x == "true"
	case json.Number:
		f, err := x.Float64()
		return err == nil && f == 1
	case float64:
		return x == 1
	case float32:
		return x == 1
	}
	if n, ok := toInt64(v); ok {
		return n == 1
	}
	if n, ok := toUint64(v); ok {
		return n == 1
	}
	return false
}

func toInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	}
	return 0, false
}

func toUint64(v any) (uint64, bool) {
	switch x := v.(type) {
	case uint:
		return uint64(x), true
	case uint8:
		return uint64(x), true
	case uint16:
		return uint64(x), true
	case uint32:
		return uint64(x), true
	case uint64:
		return x, true
	}
	return 0, false
}
