// Package sqlite implements the record-source contract over a local
// SQLite database.
//
// This backend exists for offline analysis: a snapshot of the hosted
// table can be pulled into a local file and profiled without network
// access. Document columns are stored as JSON text; values are decoded
// back into containers during sampling so the profilers see the same
// shapes as on the other backends.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"tablescan/internal/source"
	"tablescan/pkg/records"
)

func init() {
	source.Register("sqlite", New)
}

// Repo is a database/sql-backed source for one SQLite file.
type Repo struct {
	db *sql.DB
}

// New opens the database and verifies it with a ping.
func New(ctx context.Context, cfg source.Config) (source.Source, error) {
	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Repo{db: db}, nil
}

func (r *Repo) Close() { _ = r.db.Close() }

// FetchSample implements source.Source.
func (r *Repo) FetchSample(ctx context.Context, table string, limit int) ([]records.Record, error) {
	q := fmt.Sprintf("SELECT * FROM %s LIMIT %d", ident(table), limit)
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("fetch sample: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("fetch sample: %w", err)
	}

	var out []records.Record
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("fetch sample: %w", err)
		}
		rec := make(records.Record, len(cols))
		for i, c := range cols {
			rec[c] = source.NormalizeValue(values[i])
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fetch sample: %w", err)
	}
	return out, nil
}

// Count implements source.Source.
func (r *Repo) Count(ctx context.Context, table string) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+ident(table)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}

// CountNull implements source.Source.
func (r *Repo) CountNull(ctx context.Context, table, column string) (int64, error) {
	q := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s IS NULL", ident(table), ident(column))
	var n int64
	if err := r.db.QueryRowContext(ctx, q).Scan(&n); err != nil {
		return 0, fmt.Errorf("count null %s: %w", column, err)
	}
	return n, nil
}

// CountEmpty implements source.Source. JSON documents are stored as text
// here, so empty means one of the literal empty encodings.
func (r *Repo) CountEmpty(ctx context.Context, table, column string) (int64, error) {
	q := fmt.Sprintf(
		"SELECT COUNT(*) FROM %s WHERE %s IN ('{}', '[]', '')",
		ident(table), ident(column),
	)
	var n int64
	if err := r.db.QueryRowContext(ctx, q).Scan(&n); err != nil {
		return 0, fmt.Errorf("count empty %s: %w", column, err)
	}
	return n, nil
}

// ValueCounts implements source.Source.
func (r *Repo) ValueCounts(ctx context.Context, table, column string) (map[string]int64, error) {
	q := fmt.Sprintf(
		"SELECT CAST(%s AS TEXT), COUNT(*) FROM %s WHERE %s IS NOT NULL GROUP BY 1 ORDER BY 2 DESC, 1 ASC LIMIT %d",
		ident(column), ident(table), ident(column), source.DistinctCap,
	)
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("value counts %s: %w", column, err)
	}
	defer rows.Close()

	out := make(map[string]int64)
	for rows.Next() {
		var v string
		var n int64
		if err := rows.Scan(&v, &n); err != nil {
			return nil, fmt.Errorf("value counts %s: %w", column, err)
		}
		out[v] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("value counts %s: %w", column, err)
	}
	return out, nil
}

// ElementCounts implements source.Source over JSON-text array columns
// using json_each. NULL and non-array values are filtered out before the
// join so json_each never sees malformed input; a keyed call groups on
// json_extract of each element, and elements missing the key group as
// NULL and are skipped.
func (r *Repo) ElementCounts(ctx context.Context, table, column, key string) (map[string]int64, error) {
	expr := "je.value"
	if key != "" {
		expr = fmt.Sprintf("json_extract(je.value, %s)", jsonPath(key))
	}
	q := fmt.Sprintf(
		"SELECT %s AS v, COUNT(*) AS n FROM (SELECT %s AS doc FROM %s WHERE %s IS NOT NULL AND json_valid(%s)) AS d, json_each(d.doc) AS je GROUP BY %s ORDER BY n DESC, v ASC LIMIT %d",
		expr, ident(column), ident(table), ident(column), ident(column), expr, source.DistinctCap,
	)
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("element counts %s: %w", column, err)
	}
	defer rows.Close()

	out := make(map[string]int64)
	for rows.Next() {
		var v sql.NullString
		var n int64
		if err := rows.Scan(&v, &n); err != nil {
			return nil, fmt.Errorf("element counts %s: %w", column, err)
		}
		if !v.Valid {
			continue
		}
		out[v.String] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("element counts %s: %w", column, err)
	}
	return out, nil
}

// MinMax implements source.Source.
func (r *Repo) MinMax(ctx context.Context, table, column string) (min, max string, ok bool, err error) {
	q := fmt.Sprintf(
		"SELECT CAST(MIN(%s) AS TEXT), CAST(MAX(%s) AS TEXT) FROM %s",
		ident(column), ident(column), ident(table),
	)
	var lo, hi sql.NullString
	if err := r.db.QueryRowContext(ctx, q).Scan(&lo, &hi); err != nil {
		return "", "", false, fmt.Errorf("min/max %s: %w", column, err)
	}
	if !lo.Valid || !hi.Valid {
		return "", "", false, nil
	}
	return lo.String, hi.String, true, nil
}

// DescribeSchema implements source.SchemaDescriber via PRAGMA table_info.
func (r *Repo) DescribeSchema(ctx context.Context, table string) ([]source.ColumnInfo, error) {
	rows, err := r.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", ident(table)))
	if err != nil {
		return nil, fmt.Errorf("describe schema: %w", err)
	}
	defer rows.Close()

	var out []source.ColumnInfo
	for rows.Next() {
		var (
			cid     int
			name    string
			typ     string
			notNull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("describe schema: %w", err)
		}
		out = append(out, source.ColumnInfo{
			Name:     name,
			DataType: typ,
			Nullable: notNull == 0,
			Default:  dflt.String,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("describe schema: %w", err)
	}
	return out, nil
}

func ident(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// jsonPath renders a quoted single-key JSON path literal, escaping both
// the path's double quotes and the literal's single quotes.
func jsonPath(key string) string {
	key = strings.ReplaceAll(key, `"`, `\"`)
	key = strings.ReplaceAll(key, `'`, `''`)
	return `'$."` + key + `"'`
}

var (
	_ source.Source          = (*Repo)(nil)
	_ source.SchemaDescriber = (*Repo)(nil)
)
