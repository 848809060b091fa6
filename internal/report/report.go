// Package report renders analysis results as human-readable text.
//
// Every renderer is a pure function from computed stats to a string, so
// the exact output can be unit tested without a data source. Callers
// decide where the text goes; this package never writes to stdout.
package report

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"tablescan/internal/profile"
	"tablescan/internal/source"
)

const distributionTop = 10

var (
	// num renders row counts with thousands separators.
	num = message.NewPrinter(language.English)

	titleCaser = cases.Title(language.English)
)

// Heading renders a section banner, e.g. "=== TABLE SCHEMA ===".
func Heading(title string) string {
	return "=== " + strings.ToUpper(title) + " ==="
}

// Count formats a row count with thousands separators.
func Count(n int64) string {
	return num.Sprintf("%d", n)
}

// Label humanizes a column name for record display: "trial_id" -> "Trial Id".
func Label(column string) string {
	return titleCaser.String(strings.ReplaceAll(column, "_", " "))
}

// Columns renders the per-column population report, columns sorted by name.
//
// Edge cases:
//   - Empty stats render as a single "no columns" line rather than nothing,
//     so the section is visibly empty in the report.
func Columns(stats map[string]profile.ColumnStat) string {
	if len(stats) == 0 {
		return "  (no columns in sample)"
	}

	names := make([]string, 0, len(stats))
	for name := range stats {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		s := stats[name]
		fmt.Fprintf(&b, "\n%s:\n", name)
		fmt.Fprintf(&b, "  - Populated: %d/%d (%.1f%%)\n", s.PopulatedCount, s.Total, s.Percentage())
		fmt.Fprintf(&b, "  - Data type: %s\n", kindList(s.Kinds))
		if len(s.Samples) > 0 {
			fmt.Fprintf(&b, "  - Sample values: [%s]\n", strings.Join(s.Samples, ", "))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func kindList(kinds []string) string {
	if len(kinds) == 0 {
		return "unknown"
	}
	return strings.Join(kinds, ", ")
}

// NestedShape renders one nested-field structure report.
func NestedShape(s profile.NestedShape) string {
	var b strings.Builder

	if s.PopulatedCount == 0 {
		fmt.Fprintf(&b, "  No populated %s fields found in sample", s.Field)
		return b.String()
	}

	fmt.Fprintf(&b, "  Found %d populated %s fields\n", s.PopulatedCount, s.Field)

	switch s.Kind {
	case profile.KindArray:
		fmt.Fprintf(&b, "  Type: Array of objects\n")
		fmt.Fprintf(&b, "  Array lengths: %v\n", s.ArrayLengths)
		if len(s.ElementShape) > 0 {
			fmt.Fprintf(&b, "  Sample item structure:\n")
			for _, f := range s.ElementShape {
				fmt.Fprintf(&b, "    - %s: %s\n", f.Name, f.Kind)
			}
		}

	case profile.KindObject:
		fmt.Fprintf(&b, "  Type: Object\n")
		fmt.Fprintf(&b, "  Keys found: %v\n", s.Keys)
		fmt.Fprintf(&b, "  Sample structure:\n")
		for _, f := range s.FirstObject {
			if f.Value != "" {
				fmt.Fprintf(&b, "    - %s: %s = %s\n", f.Name, f.Kind, f.Value)
			} else {
				fmt.Fprintf(&b, "    - %s: %s\n", f.Name, f.Kind)
			}
		}

	default:
		fmt.Fprintf(&b, "  Type: %s (no nested structure)\n", s.Kind)
	}

	return strings.TrimRight(b.String(), "\n")
}

// TextStat renders a free-text field report.
func TextStat(s profile.TextStat) string {
	var b strings.Builder

	if s.PopulatedCount == 0 {
		fmt.Fprintf(&b, "  No populated %s fields found in sample", s.Field)
		return b.String()
	}

	fmt.Fprintf(&b, "  Found %d populated %s fields\n", s.PopulatedCount, s.Field)
	fmt.Fprintf(&b, "  Length: min=%d max=%d avg=%.0f\n", s.MinLen, s.MaxLen, s.AvgLen)

	if s.HTMLCount > 0 {
		fmt.Fprintf(&b, "  HTML content: %d/%d values\n", s.HTMLCount, s.PopulatedCount)
		if s.LinkCount > 0 {
			fmt.Fprintf(&b, "  Links: %d\n", s.LinkCount)
		}
		if len(s.TagCounts) > 0 {
			fmt.Fprintf(&b, "  Tags: %s\n", tagSummary(s.TagCounts))
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

func tagSummary(counts map[string]int) string {
	tags := make([]string, 0, len(counts))
	for t := range counts {
		tags = append(tags, t)
	}
	sort.Slice(tags, func(i, j int) bool {
		if counts[tags[i]] == counts[tags[j]] {
			return tags[i] < tags[j]
		}
		return counts[tags[i]] > counts[tags[j]]
	})

	parts := make([]string, 0, len(tags))
	for _, t := range tags {
		parts = append(parts, fmt.Sprintf("%s=%d", t, counts[t]))
	}
	return strings.Join(parts, " ")
}

const (
	recordScalarMaxLen = 100
	recordArrayShow    = 2
)

// Record renders one full sample record, scalar fields first (sorted by
// name), nested fields pretty-printed as indented JSON after.
//
// Edge cases:
//   - Scalar strings are cut at 100 runes with an ellipsis.
//   - Arrays show only their first 2 elements.
func Record(rec map[string]any, index int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "--- Record %d ---\n", index)

	names := make([]string, 0, len(rec))
	for name := range rec {
		names = append(names, name)
	}
	sort.Strings(names)

	var nested []string
	for _, name := range names {
		v := rec[name]
		switch profile.KindOf(v) {
		case profile.KindArray, profile.KindObject:
			nested = append(nested, name)
		default:
			fmt.Fprintf(&b, "%s: %s\n", Label(name), scalarDisplay(v))
		}
	}

	for _, name := range nested {
		fmt.Fprintf(&b, "\n%s:\n", Label(name))
		b.WriteString(nestedDisplay(rec[name]))
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

func scalarDisplay(v any) string {
	if !profile.Populated(v) {
		return "N/A"
	}
	s := profile.Stringify(v)
	r := []rune(s)
	if len(r) > recordScalarMaxLen {
		return string(r[:recordScalarMaxLen]) + "..."
	}
	return s
}

func nestedDisplay(v any) string {
	if arr, ok := v.([]any); ok {
		shown := arr
		suffix := ""
		if len(arr) > recordArrayShow {
			shown = arr[:recordArrayShow]
			suffix = fmt.Sprintf("\n  ... (%d total)", len(arr))
		}
		return indentJSON(shown) + suffix
	}
	return indentJSON(v)
}

func indentJSON(v any) string {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(out)
}

// Schema renders column metadata the way information_schema reports it.
func Schema(cols []source.ColumnInfo) string {
	if len(cols) == 0 {
		return "  (schema not available)"
	}

	var b strings.Builder
	for _, c := range cols {
		nullable := "NOT NULL"
		if c.Nullable {
			nullable = "NULL"
		}
		def := ""
		if c.Default != "" {
			def = " DEFAULT " + c.Default
		}
		fmt.Fprintf(&b, "  %s: %s %s%s\n", c.Name, c.DataType, nullable, def)
	}
	return strings.TrimRight(b.String(), "\n")
}

// Distribution renders value counts sorted by count descending (ties by
// value ascending), capped at the top 10, with percentages of total.
//
// Edge cases:
//   - total <= 0 suppresses percentages instead of dividing by zero.
//   - Empty counts render a single "no values" line.
func Distribution(column string, counts map[string]int64, total int64) string {
	if len(counts) == 0 {
		return fmt.Sprintf("  %s: (no values)", column)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s distribution:\n", column)
	for _, v := range topValues(counts) {
		n := counts[v]
		if total > 0 {
			fmt.Fprintf(&b, "  - %s: %s (%.1f%%)\n", v, Count(n), float64(n)/float64(total)*100)
		} else {
			fmt.Fprintf(&b, "  - %s: %s\n", v, Count(n))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// ElementCounts renders array-element occurrence counts the same way as
// Distribution but without percentages: a row contributes one count per
// element, so row-total percentages would mislead.
//
// Edge cases:
//   - Empty counts render a single "no elements" line.
func ElementCounts(counts map[string]int64) string {
	if len(counts) == 0 {
		return "  (no elements)"
	}

	var b strings.Builder
	for _, v := range topValues(counts) {
		fmt.Fprintf(&b, "  - %s: %s\n", v, Count(counts[v]))
	}
	return strings.TrimRight(b.String(), "\n")
}

// topValues returns the keys of counts sorted by count descending (ties
// by value ascending), capped at the top 10.
func topValues(counts map[string]int64) []string {
	values := make([]string, 0, len(counts))
	for v := range counts {
		values = append(values, v)
	}
	sort.Slice(values, func(i, j int) bool {
		if counts[values[i]] == counts[values[j]] {
			return values[i] < values[j]
		}
		return counts[values[i]] > counts[values[j]]
	})
	if len(values) > distributionTop {
		values = values[:distributionTop]
	}
	return values
}

// DateRange renders min/max lines for one date column.
func DateRange(column, earliest, latest string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "  - Earliest %s: %s\n", column, earliest)
	fmt.Fprintf(&b, "  - Latest %s: %s", column, latest)
	return b.String()
}
