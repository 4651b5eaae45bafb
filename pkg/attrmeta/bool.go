package attrmeta

import "strings"

// ParseBool coerces an arbitrary submitted value to a strict boolean.
//
// Recognized truthy forms: bool true, the strings "1", "true", "yes",
// "on", "y", "t" (case- and space-insensitive), and numeric 1. Every
// other input, including unrecognized types, yields false. The
// function is total: it never fails.
func ParseBool(v Value) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "1", "true", "yes", "on", "y", "t":
			return true
		}
		return false
	case int:
		return val == 1
	case int32:
		return val == 1
	case int64:
		return val == 1
	case uint:
		return val == 1
	case uint32:
		return val == 1
	case uint64:
		return val == 1
	case float32:
		return val == 1
	case float64:
		// JSON numbers decode as float64.
		return val == 1
	default:
		return false
	}
}
