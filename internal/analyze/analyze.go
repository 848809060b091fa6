// Package analyze runs a full table analysis against any record source
// and writes the human-readable report.
//
// The run is a fixed sequence of sections. Connectivity failures abort
// the run with a wrapped error; empty data never does, every section
// renders an explicit empty result instead.
package analyze

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"tablescan/internal/metrics"
	"tablescan/internal/profile"
	"tablescan/internal/report"
	"tablescan/internal/source"
	"tablescan/pkg/records"
)

const (
	defaultSampleLimit = 5
	defaultShowRecords = 2

	// autoTextMinLen is the shortest max-length at which a string column
	// counts as free text for the auto-selected text report.
	autoTextMinLen = 200

	// autoDistinctRatio is the largest sample distinct-ratio at which a
	// string column counts as categorical.
	autoDistinctRatio = 0.5
)

// Options configures one analysis run.
//
// Zero values select defaults; the list fields default to auto-detection
// from the sample when empty.
type Options struct {
	// Table is the table to analyze. Required.
	Table string

	// SampleLimit bounds the sample fetch. Defaults to 5.
	SampleLimit int

	// ShowRecords is how many full sample records to display. Defaults to 2.
	ShowRecords int

	// NestedFields lists nested-document columns to profile. Nil means
	// auto-detect from the sample; an empty non-nil slice skips the
	// section. The other auto-detected list fields below work the same way.
	NestedFields []string

	// TextFields lists free-text columns to profile (auto: long string
	// columns).
	TextFields []string

	// CriticalColumns get NULL / empty-container counts. Empty skips the
	// missing-data section; there is no auto-detection here.
	CriticalColumns []string

	// DistributionColumns get value-count distributions (auto:
	// low-cardinality string columns).
	DistributionColumns []string

	// ElementColumns get "most common element" distributions over array
	// columns. An entry is a column name, or "column.key" to group on one
	// key of object elements (e.g. "locations.country"). Auto-detection
	// picks array-of-scalar columns only; keyed specs are always explicit.
	ElementColumns []string

	// DateColumns get min/max range analysis (auto: date-like sampled
	// values).
	DateColumns []string

	// Metrics receives query and run instrumentation. Nil means none.
	Metrics metrics.Backend
}

// Run performs the whole analysis and writes the report to out.
//
// Errors:
//   - Any source query failure aborts the run with a wrapped error;
//     sections already written stay written.
//
// Edge cases:
//   - An empty table produces a complete report of zero counts and
//     empty sections, never a division by zero.
func Run(ctx context.Context, src source.Source, out io.Writer, opts Options) (err error) {
	if opts.Table == "" {
		return fmt.Errorf("analyze: table name required")
	}

	a := &run{
		src:  src,
		out:  out,
		opts: opts,
		mb:   opts.Metrics,
	}
	if a.mb == nil {
		a.mb = metrics.Nop{}
	}
	if a.opts.SampleLimit <= 0 {
		a.opts.SampleLimit = defaultSampleLimit
	}
	if a.opts.ShowRecords <= 0 {
		a.opts.ShowRecords = defaultShowRecords
	}

	defer func() {
		status := "ok"
		if err != nil {
			status = "error"
		}
		a.mb.IncCounter(metrics.MetricRuns, 1, metrics.Labels{"status": status})
	}()

	return a.do(ctx)
}

type run struct {
	src  source.Source
	out  io.Writer
	opts Options
	mb   metrics.Backend
}

func (a *run) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

// timed runs one source query and records count + duration metrics.
func (a *run) timed(op string, f func() error) error {
	start := time.Now()
	err := f()
	status := "ok"
	if err != nil {
		status = "error"
	}
	labels := metrics.Labels{"op": op, "status": status}
	a.mb.IncCounter(metrics.MetricQueries, 1, labels)
	a.mb.ObserveHistogram(metrics.MetricQueryDuration, time.Since(start).Seconds(), labels)
	return err
}

func (a *run) do(ctx context.Context) error {
	table := a.opts.Table

	a.printf("%s\n\n", report.Heading(table+" table analysis"))

	// 1. Total row count.
	var total int64
	if err := a.timed("count", func() (err error) {
		total, err = a.src.Count(ctx, table)
		return err
	}); err != nil {
		return fmt.Errorf("count %s: %w", table, err)
	}
	a.printf("Total records in %s table: %s\n\n", table, report.Count(total))

	// 2. Schema, when the backend can describe it.
	if sd, ok := a.src.(source.SchemaDescriber); ok {
		var cols []source.ColumnInfo
		if err := a.timed("schema", func() (err error) {
			cols, err = sd.DescribeSchema(ctx, table)
			return err
		}); err != nil {
			return fmt.Errorf("describe schema %s: %w", table, err)
		}
		a.printf("%s\n%s\n\n", report.Heading("table schema"), report.Schema(cols))
	}

	// 3. Bounded sample fetch.
	a.printf("Fetching sample records...\n")
	var sample []records.Record
	if err := a.timed("sample", func() (err error) {
		sample, err = a.src.FetchSample(ctx, table, a.opts.SampleLimit)
		return err
	}); err != nil {
		return fmt.Errorf("fetch sample %s: %w", table, err)
	}
	a.printf("Successfully fetched %d sample records\n\n", len(sample))
	a.mb.IncCounter(metrics.MetricRowsSampled, float64(len(sample)), metrics.Labels{"table": table})

	// 4. Column population.
	a.printf("%s\n%s\n\n", report.Heading("column population analysis"), report.Columns(profile.Columns(sample)))

	// 5. Nested-field structure.
	nested := a.opts.NestedFields
	if nested == nil {
		nested = autoNestedFields(sample)
	}
	a.printf("\n%s\n", report.Heading("nested field structure analysis"))
	if len(nested) == 0 {
		a.printf("  (no nested fields in sample)\n")
	}
	for i, field := range nested {
		a.printf("\n%d. %s structure:\n%s\n", i+1, field, report.NestedShape(profile.NestedField(sample, field)))
	}

	// 6. Free-text fields.
	text := a.opts.TextFields
	if text == nil {
		text = autoTextFields(sample)
	}
	if len(text) > 0 {
		a.printf("\n%s\n", report.Heading("free-text field analysis"))
		for _, field := range text {
			a.printf("\n%s:\n%s\n", field, report.TextStat(profile.TextField(sample, field)))
		}
	}

	// 7. Full sample records.
	show := a.opts.ShowRecords
	if show > len(sample) {
		show = len(sample)
	}
	a.printf("\n%s\n", report.Heading(fmt.Sprintf("sample records (first %d)", a.opts.ShowRecords)))
	for i := 0; i < show; i++ {
		a.printf("\n%s\n", report.Record(sample[i], i+1))
	}

	// 8-11. Server-side pattern queries.
	a.printf("\n%s\n", report.Heading("data patterns and issues"))

	if err := a.missingData(ctx, table); err != nil {
		return err
	}
	if err := a.distributions(ctx, table, total, sample); err != nil {
		return err
	}
	if err := a.elementDistributions(ctx, table, sample); err != nil {
		return err
	}
	return a.dateRanges(ctx, table, sample)
}

// missingData prints NULL and empty-container counts for the configured
// critical columns. Skipped entirely when none are configured.
func (a *run) missingData(ctx context.Context, table string) error {
	if len(a.opts.CriticalColumns) == 0 {
		return nil
	}

	a.printf("\nChecking for records with missing critical fields...\n")
	for _, col := range a.opts.CriticalColumns {
		var nulls, empties int64
		if err := a.timed("count_null", func() (err error) {
			nulls, err = a.src.CountNull(ctx, table, col)
			return err
		}); err != nil {
			return fmt.Errorf("count null %s.%s: %w", table, col, err)
		}
		if err := a.timed("count_empty", func() (err error) {
			empties, err = a.src.CountEmpty(ctx, table, col)
			return err
		}); err != nil {
			return fmt.Errorf("count empty %s.%s: %w", table, col, err)
		}
		a.printf("Records without %s: %s (null), %s (empty)\n", col, report.Count(nulls), report.Count(empties))
	}
	return nil
}

func (a *run) distributions(ctx context.Context, table string, total int64, sample []records.Record) error {
	cols := a.opts.DistributionColumns
	if cols == nil {
		cols = autoDistributionColumns(sample)
	}
	for _, col := range cols {
		var counts map[string]int64
		if err := a.timed("value_counts", func() (err error) {
			counts, err = a.src.ValueCounts(ctx, table, col)
			return err
		}); err != nil {
			return fmt.Errorf("value counts %s.%s: %w", table, col, err)
		}
		a.printf("\n%s\n", report.Distribution(col, counts, total))
	}
	return nil
}

// elementDistributions prints "most common element" groupings over
// array columns: the elements themselves for a plain spec, one key of
// each object element for a "column.key" spec.
func (a *run) elementDistributions(ctx context.Context, table string, sample []records.Record) error {
	specs := a.opts.ElementColumns
	if specs == nil {
		specs = autoElementColumns(sample)
	}
	for _, spec := range specs {
		col, key, _ := strings.Cut(spec, ".")
		var counts map[string]int64
		if err := a.timed("element_counts", func() (err error) {
			counts, err = a.src.ElementCounts(ctx, table, col, key)
			return err
		}); err != nil {
			return fmt.Errorf("element counts %s.%s: %w", table, spec, err)
		}
		a.printf("\nMost common %s (top 10):\n%s\n", spec, report.ElementCounts(counts))
	}
	return nil
}

func (a *run) dateRanges(ctx context.Context, table string, sample []records.Record) error {
	cols := a.opts.DateColumns
	if cols == nil {
		cols = profile.DateColumns(sample)
	}
	if len(cols) == 0 {
		return nil
	}

	a.printf("\nDate range analysis:\n")
	for _, col := range cols {
		var lo, hi string
		var ok bool
		if err := a.timed("min_max", func() (err error) {
			lo, hi, ok, err = a.src.MinMax(ctx, table, col)
			return err
		}); err != nil {
			return fmt.Errorf("min/max %s.%s: %w", table, col, err)
		}
		if !ok {
			a.printf("  - %s: no values\n", col)
			continue
		}
		a.printf("%s\n", report.DateRange(col, lo, hi))
	}
	return nil
}

// autoNestedFields returns, sorted, every column whose first truthy
// sampled value is an array or object.
func autoNestedFields(sample []records.Record) []string {
	var out []string
	for _, col := range records.ColumnUnion(sample) {
		for _, rec := range sample {
			v, present := rec[col]
			if !present || !profile.Truthy(v) {
				continue
			}
			if k := profile.KindOf(v); k == profile.KindArray || k == profile.KindObject {
				out = append(out, col)
			}
			break
		}
	}
	return out
}

// autoElementColumns returns, sorted, every column whose first truthy
// sampled value is an array of scalars. Arrays of objects need a
// "column.key" spec to say what to group on, so auto-detection skips
// them.
func autoElementColumns(sample []records.Record) []string {
	var out []string
	for _, col := range records.ColumnUnion(sample) {
		for _, rec := range sample {
			v, present := rec[col]
			if !present || !profile.Truthy(v) {
				continue
			}
			if arr, ok := v.([]any); ok {
				if k := profile.KindOf(arr[0]); k != profile.KindArray && k != profile.KindObject {
					out = append(out, col)
				}
			}
			break
		}
	}
	return out
}

// autoTextFields returns, sorted, every string column whose longest
// populated sampled value reaches autoTextMinLen runes.
func autoTextFields(sample []records.Record) []string {
	var out []string
	for _, col := range records.ColumnUnion(sample) {
		longest := 0
		allStrings := true
		for _, rec := range sample {
			v, present := rec[col]
			if !present || !profile.Populated(v) {
				continue
			}
			s, ok := v.(string)
			if !ok {
				allStrings = false
				break
			}
			if n := len([]rune(s)); n > longest {
				longest = n
			}
		}
		if allStrings && longest >= autoTextMinLen {
			out = append(out, col)
		}
	}
	return out
}

// autoDistributionColumns returns, sorted, the string columns that look
// categorical in the sample: populated, every value a string, and a
// distinct-ratio at or below autoDistinctRatio.
func autoDistributionColumns(sample []records.Record) []string {
	var out []string
	for _, col := range records.ColumnUnion(sample) {
		distinct := make(map[string]struct{})
		populated := 0
		allStrings := true
		short := true
		for _, rec := range sample {
			v, present := rec[col]
			if !present || !profile.Populated(v) {
				continue
			}
			s, ok := v.(string)
			if !ok {
				allStrings = false
				break
			}
			populated++
			distinct[s] = struct{}{}
			if len([]rune(s)) >= autoTextMinLen {
				short = false
			}
		}
		if !allStrings || !short || populated == 0 {
			continue
		}
		if float64(len(distinct))/float64(populated) <= autoDistinctRatio {
			out = append(out, col)
		}
	}
	sort.Strings(out)
	return out
}
