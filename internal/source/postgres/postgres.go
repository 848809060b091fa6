// Package postgres implements the record-source contract over a direct
// PostgreSQL connection using pgx.
//
// JSONB columns arrive already decoded into map[string]any / []any, so
// nested-document profiling works without extra parsing. Aggregates that
// must render as text (ValueCounts, MinMax) cast server-side to keep
// scanning uniform across column types.
package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"tablescan/internal/source"
	"tablescan/pkg/records"
)

func init() {
	source.Register("postgres", New)
}

// Repo is a pgx-backed source for one database.
type Repo struct {
	pool *pgxpool.Pool
}

// New connects and verifies the connection with a ping.
func New(ctx context.Context, cfg source.Config) (source.Source, error) {
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &Repo{pool: pool}, nil
}

// Close closes the connection pool.
func (r *Repo) Close() {
	r.pool.Close()
}

// FetchSample implements source.Source.
func (r *Repo) FetchSample(ctx context.Context, table string, limit int) ([]records.Record, error) {
	rows, err := r.pool.Query(ctx, buildSampleSQL(table, limit))
	if err != nil {
		return nil, fmt.Errorf("fetch sample: %w", err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	var out []records.Record
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("fetch sample: %w", err)
		}
		rec := make(records.Record, len(fields))
		for i, fd := range fields {
			rec[fd.Name] = source.NormalizeValue(values[i])
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
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM "+pgIdent(table)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}

// CountNull implements source.Source.
func (r *Repo) CountNull(ctx context.Context, table, column string) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, buildCountNullSQL(table, column)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count null %s: %w", column, err)
	}
	return n, nil
}

// CountEmpty implements source.Source.
//
// The column is cast to text so one query covers array ('{}'), json
// ('[]' / '{}'), and text ('') columns alike.
func (r *Repo) CountEmpty(ctx context.Context, table, column string) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, buildCountEmptySQL(table, column)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count empty %s: %w", column, err)
	}
	return n, nil
}

// ValueCounts implements source.Source with a server-side GROUP BY,
// bounded by source.DistinctCap groups.
func (r *Repo) ValueCounts(ctx context.Context, table, column string) (map[string]int64, error) {
	rows, err := r.pool.Query(ctx, buildValueCountsSQL(table, column, source.DistinctCap))
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

// ElementCounts implements source.Source with a server-side lateral
// group-by. A bare column is treated as a native array (unnest); a
// keyed column as a jsonb array of objects (jsonb_array_elements).
func (r *Repo) ElementCounts(ctx context.Context, table, column, key string) (map[string]int64, error) {
	rows, err := r.pool.Query(ctx, buildElementCountsSQL(table, column, key, source.DistinctCap))
	if err != nil {
		return nil, fmt.Errorf("element counts %s: %w", column, err)
	}
	defer rows.Close()

	out := make(map[string]int64)
	for rows.Next() {
		var v *string
		var n int64
		if err := rows.Scan(&v, &n); err != nil {
			return nil, fmt.Errorf("element counts %s: %w", column, err)
		}
		if v == nil {
			// elements missing the key group as NULL; not counted
			continue
		}
		out[*v] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("element counts %s: %w", column, err)
	}
	return out, nil
}

// MinMax implements source.Source.
func (r *Repo) MinMax(ctx context.Context, table, column string) (min, max string, ok bool, err error) {
	var lo, hi *string
	err = r.pool.QueryRow(ctx, buildMinMaxSQL(table, column)).Scan(&lo, &hi)
	if err != nil {
		return "", "", false, fmt.Errorf("min/max %s: %w", column, err)
	}
	if lo == nil || hi == nil {
		return "", "", false, nil
	}
	return *lo, *hi, true, nil
}

// DescribeSchema implements source.SchemaDescriber via
// information_schema, ordered by ordinal position.
func (r *Repo) DescribeSchema(ctx context.Context, table string) ([]source.ColumnInfo, error) {
	const q = `
		SELECT column_name, data_type, is_nullable, COALESCE(column_default, '')
		FROM information_schema.columns
		WHERE table_schema = 'public' AND table_name = $1
		ORDER BY ordinal_position`

	rows, err := r.pool.Query(ctx, q, table)
	if err != nil {
		return nil, fmt.Errorf("describe schema: %w", err)
	}
	defer rows.Close()

	var out []source.ColumnInfo
	for rows.Next() {
		var ci source.ColumnInfo
		var nullable string
		if err := rows.Scan(&ci.Name, &ci.DataType, &nullable, &ci.Default); err != nil {
			return nil, fmt.Errorf("describe schema: %w", err)
		}
		ci.Nullable = nullable == "YES"
		out = append(out, ci)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("describe schema: %w", err)
	}
	return out, nil
}

// ----------------------------------------------------------------------------
// SQL builders
//
// Pure and deterministic so identifier quoting and shape can be unit
// tested without a database.
// ----------------------------------------------------------------------------

func buildSampleSQL(table string, limit int) string {
	return fmt.Sprintf("SELECT * FROM %s LIMIT %d", pgIdent(table), limit)
}

func buildCountNullSQL(table, column string) string {
	return fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s IS NULL", pgIdent(table), pgIdent(column))
}

func buildCountEmptySQL(table, column string) string {
	return fmt.Sprintf(
		"SELECT COUNT(*) FROM %s WHERE (%s)::text IN ('{}', '[]', '')",
		pgIdent(table), pgIdent(column),
	)
}

func buildValueCountsSQL(table, column string, cap int) string {
	return fmt.Sprintf(
		"SELECT (%s)::text, COUNT(*) FROM %s WHERE %s IS NOT NULL GROUP BY 1 ORDER BY 2 DESC, 1 ASC LIMIT %d",
		pgIdent(column), pgIdent(table), pgIdent(column), cap,
	)
}

func buildElementCountsSQL(table, column, key string, cap int) string {
	if key == "" {
		return fmt.Sprintf(
			"SELECT e::text, COUNT(*) FROM %s, unnest(%s) AS e GROUP BY 1 ORDER BY 2 DESC, 1 ASC LIMIT %d",
			pgIdent(table), pgIdent(column), cap,
		)
	}
	return fmt.Sprintf(
		"SELECT e->>%s, COUNT(*) FROM %s, jsonb_array_elements(%s) AS e WHERE %s IS NOT NULL AND %s <> '[]'::jsonb GROUP BY 1 ORDER BY 2 DESC, 1 ASC LIMIT %d",
		pgLiteral(key), pgIdent(table), pgIdent(column), pgIdent(column), pgIdent(column), cap,
	)
}

func buildMinMaxSQL(table, column string) string {
	return fmt.Sprintf(
		"SELECT MIN(%s)::text, MAX(%s)::text FROM %s",
		pgIdent(column), pgIdent(column), pgIdent(table),
	)
}

// pgIdent double-quotes an identifier, escaping embedded quotes.
func pgIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// pgLiteral single-quotes a string literal, escaping embedded quotes.
func pgLiteral(s string) string {
	return `'` + strings.ReplaceAll(s, `'`, `''`) + `'`
}

var (
	_ source.Source          = (*Repo)(nil)
	_ source.SchemaDescriber = (*Repo)(nil)
)
