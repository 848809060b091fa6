package profile

import (
	"sort"

	"tablescan/pkg/records"
)

// sampleValueLimit bounds how many sample values a ColumnStat captures.
const sampleValueLimit = 3

// sampleValueMaxLen bounds the rendered length of a scalar sample value.
const sampleValueMaxLen = 50

// ColumnStat summarizes one column over a fixed record sample.
type ColumnStat struct {
	// Name of the column.
	Name string

	// PopulatedCount is how many sampled records had a populated value
	// (see Populated for the exact predicate).
	PopulatedCount int

	// Total is the number of records in the sample, populated or not.
	Total int

	// Kinds holds the names of every kind observed among populated
	// values, sorted for deterministic output.
	Kinds []string

	// Samples holds up to three rendered sample values in record order.
	// Scalars are truncated at 50 runes with a "..." marker; containers
	// are shown as "<kind> with <n> items".
	Samples []string
}

// Percentage returns the population rate in [0, 100].
//
// A zero total yields 0 rather than a division panic; an empty sample is
// valid input everywhere in this package.
func (s ColumnStat) Percentage() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.PopulatedCount) / float64(s.Total) * 100
}

// Columns profiles every column appearing anywhere in the sample.
//
// The returned map is keyed by column name and covers the union of keys
// across all records. Records missing a key simply do not count toward
// that column's population. Empty input yields an empty map.
//
// The function is pure: it never mutates its input and has no side
// effects.
func Columns(recs []records.Record) map[string]ColumnStat {
	out := make(map[string]ColumnStat)
	if len(recs) == 0 {
		return out
	}

	for _, col := range records.ColumnUnion(recs) {
		stat := ColumnStat{Name: col, Total: len(recs)}
		kinds := make(map[string]struct{})

		for _, r := range recs {
			v, ok := r[col]
			if !ok || !Populated(v) {
				continue
			}
			stat.PopulatedCount++
			kinds[KindOf(v).String()] = struct{}{}

			if len(stat.Samples) < sampleValueLimit {
				if desc, isContainer := DescribeContainer(v); isContainer {
					stat.Samples = append(stat.Samples, desc)
				} else {
					stat.Samples = append(stat.Samples, truncate(Stringify(v), sampleValueMaxLen))
				}
			}
		}

		for k := range kinds {
			stat.Kinds = append(stat.Kinds, k)
		}
		sort.Strings(stat.Kinds)

		out[col] = stat
	}

	return out
}
