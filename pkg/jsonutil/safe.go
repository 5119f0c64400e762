// Package jsonutil provides JSON-safety helpers for values headed to the wire.
package jsonutil

import "math"

// SafeValue converts a value into one that encoding/json can always marshal.
// Non-finite floats (NaN, +/-Inf) become nil: they are illegal in JSON and
// must never leak into API output.
func SafeValue(v any) any {
	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil
		}
		return x
	case float32:
		f := float64(x)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil
		}
		return f
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = SafeValue(item)
		}
		return out
	case map[string]any:
		return SafeMap(x)
	}
	return v
}

// SafeMap applies SafeValue to every value of a map, returning a new map.
func SafeMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = SafeValue(v)
	}
	return out
}

// SafeRows applies SafeMap to every row.
func SafeRows(rows []map[string]any) []map[string]any {
	out := make([]map[string]any, len(rows))
	for i, row := range rows {
		out[i] = SafeMap(row)
	}
	return out
}
