// Package records defines the flat record shape shared by sources and
// profilers.
//
// A Record is one row's worth of column-to-value data. Values are limited to
// the JSON-ish set: nil, bool, numbers, string, []any, map[string]any.
// Sources are responsible for normalizing driver-specific types into this set
// before records reach the profilers.
package records

import "sort"

// Record maps a column name to its value for a single row.
//
// Records usually share a common column set, but this is not guaranteed;
// a missing key is treated as absent/null by all consumers.
type Record map[string]any

// ColumnUnion returns the union of keys across all records, sorted
// lexicographically for deterministic iteration.
func ColumnUnion(recs []Record) []string {
	set := make(map[string]struct{})
	for _, r := range recs {
		for k := range r {
			set[k] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
