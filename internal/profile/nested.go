package profile

import (
	"sort"

	"tablescan/pkg/records"
)

// arrayLengthLimit bounds how many per-record array lengths NestedField
// reports.
const arrayLengthLimit = 5

// FieldSample describes one key of a sampled nested object.
type FieldSample struct {
	// Name of the key.
	Name string

	// Kind name of the observed value.
	Kind string

	// Value holds the stringified scalar value cut at 50 runes, or "" for
	// container values.
	Value string
}

// NestedShape is the derived summary of a nested-document column.
//
// Exactly one of the array-branch fields (ArrayLengths, ElementShape) or
// the object-branch fields (Keys, FirstObject) is populated, selected by
// Kind. A scalar Kind means the column had no structure to report.
type NestedShape struct {
	// Field is the profiled column name.
	Field string

	// PopulatedCount is the number of records whose value passed the
	// Truthy filter.
	PopulatedCount int

	// Kind of the first truthy value, which selects the branch below.
	Kind Kind

	// ArrayLengths holds the length of each of the first 5 truthy arrays,
	// in record order.
	ArrayLengths []int

	// ElementShape is the key/kind layout of the first element of the
	// first non-empty truthy array, sorted by key. Populated only when
	// that element is an object.
	ElementShape []FieldSample

	// Keys is the union of keys across ALL truthy object values, sorted.
	Keys []string

	// FirstObject holds per-key samples taken from the FIRST truthy
	// object only, sorted by key. Scalar kinds carry a truncated value.
	FirstObject []FieldSample
}

// NestedField infers the shape of a nested-document column from a record
// sample.
//
// The filter is Truthy, not Populated: null, missing, "", [], {}, 0, and
// false are all skipped. The branch taken depends on the first truthy
// value's kind.
//
// The two branches intentionally sample at different depths:
//   - The array branch takes its element layout from a single element (the
//     first element of the first non-empty array) and stops scanning.
//   - The object branch unions keys across all truthy objects but reports
//     kinds/values from the first object only.
//
// Both behaviors are contracts of the original analyzer and are preserved
// as-is; see DESIGN.md for the recorded decision.
func NestedField(recs []records.Record, field string) NestedShape {
	shape := NestedShape{Field: field}

	var values []any
	for _, r := range recs {
		v, ok := r[field]
		if !ok || !Truthy(v) {
			continue
		}
		values = append(values, v)
	}
	shape.PopulatedCount = len(values)
	if len(values) == 0 {
		return shape
	}

	shape.Kind = KindOf(values[0])
	switch shape.Kind {
	case KindArray:
		profileArrayBranch(&shape, values)
	case KindObject:
		profileObjectBranch(&shape, values)
	default:
		// Scalar: no structure to report. The renderer prints a fallback.
	}
	return shape
}

func profileArrayBranch(shape *NestedShape, values []any) {
	for i, v := range values {
		if i >= arrayLengthLimit {
			break
		}
		arr, ok := v.([]any)
		if !ok {
			continue
		}
		shape.ArrayLengths = append(shape.ArrayLengths, len(arr))
	}

	// Single-sample layout: first non-empty array, first element, then stop.
	for _, v := range values {
		arr, ok := v.([]any)
		if !ok || len(arr) == 0 {
			continue
		}
		if elem, ok := arr[0].(map[string]any); ok {
			shape.ElementShape = objectLayout(elem, false)
		}
		return
	}
}

func profileObjectBranch(shape *NestedShape, values []any) {
	keys := make(map[string]struct{})
	for _, v := range values {
		obj, ok := v.(map[string]any)
		if !ok {
			continue
		}
		for k := range obj {
			keys[k] = struct{}{}
		}
	}
	for k := range keys {
		shape.Keys = append(shape.Keys, k)
	}
	sort.Strings(shape.Keys)

	if first, ok := values[0].(map[string]any); ok {
		shape.FirstObject = objectLayout(first, true)
	}
}

// objectLayout renders one object's key/kind layout sorted by key.
// When withValues is set, scalar kinds also carry the value cut at 50
// runes (no ellipsis marker, matching the reference output).
func objectLayout(obj map[string]any, withValues bool) []FieldSample {
	out := make([]FieldSample, 0, len(obj))
	for k, v := range obj {
		fs := FieldSample{Name: k, Kind: KindOf(v).String()}
		if withValues {
			switch KindOf(v) {
			case KindArray, KindObject, KindNull:
			default:
				fs.Value = truncatePlain(Stringify(v), sampleValueMaxLen)
			}
		}
		out = append(out, fs)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
