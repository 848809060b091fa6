// Package metrics defines the minimal instrumentation surface the
// analyzer and sources depend on.
//
// The core code only ever talks to Backend; concrete exporters live in
// subpackages (datadog). A Nop backend keeps instrumentation calls
// unconditional in the hot path without nil checks.
package metrics

// Labels carries metric dimensions, e.g. {"op": "count", "status": "ok"}.
type Labels map[string]string

// Backend receives metric observations.
//
// Implementations must be safe for concurrent use: the analyzer emits
// from whatever goroutine runs a query.
type Backend interface {
	// IncCounter adds delta to a named counter. Non-positive deltas
	// are ignored.
	IncCounter(name string, delta float64, labels Labels)

	// ObserveHistogram records one sample of a named distribution.
	// Negative values are ignored.
	ObserveHistogram(name string, value float64, labels Labels)
}

// Metric names emitted by the analyzer. Backends may ignore names they
// do not recognize.
const (
	// MetricQueries counts source queries, labeled op + status.
	MetricQueries = "tablescan_queries_total"
	// MetricQueryDuration records per-query wall time in seconds,
	// labeled op + status.
	MetricQueryDuration = "tablescan_query_duration_seconds"
	// MetricRowsSampled counts rows pulled into the local sample,
	// labeled table.
	MetricRowsSampled = "tablescan_rows_sampled_total"
	// MetricRuns counts whole analysis runs, labeled status.
	MetricRuns = "tablescan_runs_total"
)

// Nop discards every observation.
type Nop struct{}

func (Nop) IncCounter(string, float64, Labels)       {}
func (Nop) ObserveHistogram(string, float64, Labels) {}

var _ Backend = Nop{}
