// Package profile implements the structural profilers used by the table
// analyzer: per-column population statistics, nested-document shape
// inference, and free-text content inspection.
//
// The profilers are pure functions over bounded record samples:
//   - They never query a database or perform I/O.
//   - They must tolerate ragged records (missing keys, mixed types).
//   - Empty input degrades to empty output; no profiler may panic or
//     divide by zero on a zero-row sample.
//
// Value classification happens once, at ingestion, through the Kind tagged
// union. Downstream code branches on the tag instead of re-inspecting
// runtime types.
package profile

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Kind is the coarse value classification used by all profilers.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

// String returns the report-facing name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// KindOf classifies a runtime value into the coarse Kind set.
//
// Sources feed the profilers values decoded from JSON (nil, bool, float64,
// json.Number, string, []any, map[string]any) or scanned from SQL drivers
// (int64, float64, string, []byte, time.Time). Anything outside those sets
// is classified as string after stringification; no schema is consulted.
func KindOf(v any) Kind {
	switch v.(type) {
	case nil:
		return KindNull
	case bool:
		return KindBool
	case float64, float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, json.Number:
		return KindNumber
	case string, []byte, time.Time:
		return KindString
	case []any:
		return KindArray
	case map[string]any:
		return KindObject
	default:
		return KindString
	}
}

// Populated reports whether a column value counts toward the population
// rate in Columns.
//
// The rule is deliberately asymmetric: nil, "", and [] are excluded, but
// 0, false, and {} all count as populated. This matches the observed
// behavior of the analyzer this profiler replaces and is verified by tests.
func Populated(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case []byte:
		return len(t) != 0
	case []any:
		return len(t) != 0
	default:
		return true
	}
}

// Truthy is the stricter predicate used by NestedField to select records.
//
// Unlike Populated, it also excludes empty objects, zero numbers, and
// false. The two predicates differ on purpose; see Populated.
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case []byte:
		return len(t) != 0
	case []any:
		return len(t) != 0
	case map[string]any:
		return len(t) != 0
	case float64:
		return t != 0
	case float32:
		return t != 0
	case int:
		return t != 0
	case int8:
		return t != 0
	case int16:
		return t != 0
	case int32:
		return t != 0
	case int64:
		return t != 0
	case uint:
		return t != 0
	case uint8:
		return t != 0
	case uint16:
		return t != 0
	case uint32:
		return t != 0
	case uint64:
		return t != 0
	case json.Number:
		return t.String() != "0" && t.String() != ""
	default:
		return true
	}
}

// Stringify renders a scalar value the way the report shows it.
//
// Numbers drop a trailing ".0"-style mantissa when integral so that a
// JSON-decoded float64(5) prints as "5". Containers are not handled here;
// callers must describe them via DescribeContainer instead.
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case json.Number:
		return t.String()
	case time.Time:
		return t.Format(time.RFC3339)
	default:
		return fmt.Sprint(t)
	}
}

// DescribeContainer renders an array or object value as a bounded
// descriptor ("array with 4 items") so report output stays small no matter
// how deep the value nests.
func DescribeContainer(v any) (string, bool) {
	switch t := v.(type) {
	case []any:
		return fmt.Sprintf("array with %d items", len(t)), true
	case map[string]any:
		return fmt.Sprintf("object with %d items", len(t)), true
	default:
		return "", false
	}
}

// truncate cuts s at max runes and appends an ellipsis marker when cut.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}

// truncatePlain cuts s at max runes without a marker. NestedField's object
// branch uses this; the reference behavior truncates nested scalar samples
// silently while column samples get the "..." suffix.
func truncatePlain(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
