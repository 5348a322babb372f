package graph

import (
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
)

// Normalize converts a driver value into a plain Go value. Nodes and
// relationships collapse to their property maps, spatial points to
// latitude/longitude maps, temporal types to time.Time, and collections are
// normalized recursively. Plain numbers pass through untouched, so callers
// never handle boxed driver representations.
func Normalize(v any) any {
	switch val := v.(type) {
	case dbtype.Node:
		return normalizeMap(val.Props)
	case dbtype.Relationship:
		return normalizeMap(val.Props)
	case dbtype.Point2D:
		// WGS84 points carry longitude in X and latitude in Y.
		return map[string]any{"latitude": val.Y, "longitude": val.X}
	case dbtype.Date:
		return val.Time()
	case dbtype.LocalDateTime:
		return val.Time()
	case dbtype.LocalTime:
		return val.Time()
	case dbtype.Time:
		return time.Time(val)
	case dbtype.Duration:
		return val.String()
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = Normalize(item)
		}
		return out
	case map[string]any:
		return normalizeMap(val)
	default:
		return v
	}
}

func normalizeMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = Normalize(v)
	}
	return out
}

// AsInt64 coerces a normalized numeric value to int64, defaulting to 0.
func AsInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}

// AsFloat64 coerces a normalized numeric value to float64, defaulting to 0.
func AsFloat64(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	case int:
		return float64(n)
	default:
		return 0
	}
}

// AsString coerces a normalized value to string, defaulting to "".
func AsString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
