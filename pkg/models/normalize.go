package models

import "fmt"

// NormalizeResults coerces a provider's return value into a flat list of
// strings. The same policy covers both successful results and synthesized
// error strings:
//
//   - nil yields an empty list
//   - a single string yields a one-element list
//   - []string is returned as-is
//   - []any is flattened one level; string elements are kept unchanged and
//     other element types are formatted
//   - anything else becomes a one-element formatted list
func NormalizeResults(v any) []string {
	switch val := v.(type) {
	case nil:
		return []string{}
	case string:
		return []string{val}
	case []string:
		if val == nil {
			return []string{}
		}
		return val
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok {
				out = append(out, s)
				continue
			}
			out = append(out, fmt.Sprint(item))
		}
		return out
	case fmt.Stringer:
		return []string{val.String()}
	default:
		return []string{fmt.Sprint(val)}
	}
}
