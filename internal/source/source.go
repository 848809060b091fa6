// Package source defines the record-source contract consumed by the
// analyzer, plus the registry that backend implementations register into.
//
// A Source produces bounded record samples and answers a small set of
// aggregate questions about one table. Any backend satisfying the contract
// is interchangeable: the REST table API, a direct SQL connection, or an
// in-memory fixture in tests.
//
// Backends live in subpackages (rest, postgres, mssql, sqlite) and
// register themselves at init time; each command blank-imports the
// backends it supports.
package source

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"tablescan/pkg/records"
)

// DistinctCap bounds how many distinct values ValueCounts tracks per
// column. Grouping beyond the cap is cut off so a high-cardinality column
// (UUIDs, row ids) cannot blow up memory or response sizes.
const DistinctCap = 10000

// Source is the capability surface the analyzer consumes.
//
// All methods take a context and may block on network I/O. Implementations
// must be safe for sequential use from a single goroutine; concurrent use
// is not required.
type Source interface {
	// FetchSample returns up to limit records from table, in the
	// backend's natural order. An empty table yields an empty slice,
	// not an error.
	FetchSample(ctx context.Context, table string, limit int) ([]records.Record, error)

	// Count returns the total number of rows in table.
	Count(ctx context.Context, table string) (int64, error)

	// CountNull returns how many rows have column IS NULL.
	CountNull(ctx context.Context, table, column string) (int64, error)

	// CountEmpty returns how many rows hold an empty container or empty
	// string in column (NULLs excluded).
	CountEmpty(ctx context.Context, table, column string) (int64, error)

	// ValueCounts returns a value -> row count grouping for column,
	// bounded by DistinctCap. NULL values are not counted.
	ValueCounts(ctx context.Context, table, column string) (map[string]int64, error)

	// ElementCounts returns a value -> occurrence count grouping over
	// the ELEMENTS of an array column, bounded by DistinctCap. A row
	// with a 3-element array contributes 3 occurrences. When key is
	// non-empty the elements are objects and the grouping is on each
	// element's key field; elements missing the key are not counted.
	// NULL columns and empty arrays contribute nothing.
	ElementCounts(ctx context.Context, table, column, key string) (map[string]int64, error)

	// MinMax returns the smallest and largest non-NULL values of column,
	// rendered as strings. ok is false when the column has no non-NULL
	// values.
	MinMax(ctx context.Context, table, column string) (min, max string, ok bool, err error)

	// Close releases the backend's connection. Safe to call once.
	Close()
}

// ColumnInfo describes one column of a table's declared schema.
type ColumnInfo struct {
	Name     string
	DataType string
	Nullable bool
	Default  string
}

// SchemaDescriber is implemented by backends that can introspect the
// table's declared schema. The REST backend cannot; the analyzer skips
// the schema section when the interface is absent.
type SchemaDescriber interface {
	DescribeSchema(ctx context.Context, table string) ([]ColumnInfo, error)
}

// Config carries every field any backend might need. Backends read the
// fields relevant to them and ignore the rest.
type Config struct {
	// DSN is the connection string for SQL backends.
	DSN string

	// BaseURL is the REST API root, e.g. "https://proj.example.co".
	BaseURL string

	// APIKey is the REST bearer/apikey credential. Never logged.
	APIKey string
}

// Factory opens a Source for a backend kind.
type Factory func(ctx context.Context, cfg Config) (Source, error)

var (
	regMu     sync.Mutex
	factories = make(map[string]Factory)
)

// Register installs a backend factory under kind. Called from backend
// package init functions; duplicate registration panics, as it indicates
// two packages claiming the same kind.
func Register(kind string, f Factory) {
	regMu.Lock()
	defer regMu.Unlock()
	if _, dup := factories[kind]; dup {
		panic(fmt.Sprintf("source: duplicate registration for %q", kind))
	}
	factories[kind] = f
}

// Open constructs a Source for the given backend kind.
//
// Errors:
//   - Unknown kinds return an error listing the registered backends.
//   - Factory errors (bad DSN, unreachable host) pass through wrapped.
func Open(ctx context.Context, kind string, cfg Config) (Source, error) {
	regMu.Lock()
	f, ok := factories[kind]
	kinds := make([]string, 0, len(factories))
	for k := range factories {
		kinds = append(kinds, k)
	}
	regMu.Unlock()

	if !ok {
		sort.Strings(kinds)
		return nil, fmt.Errorf("source: unknown backend %q (registered: %v)", kind, kinds)
	}
	src, err := f(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("source: open %s: %w", kind, err)
	}
	return src, nil
}
