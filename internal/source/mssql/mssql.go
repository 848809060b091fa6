// Package mssql implements the record-source contract over SQL Server.
//
// Mirrors the sqlite backend's database/sql usage with SQL Server syntax:
// TOP instead of LIMIT, bracket identifier quoting, and information_schema
// for schema description. Document columns are NVARCHAR-stored JSON text
// and are decoded during sampling.
package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/microsoft/go-mssqldb"

	"tablescan/internal/source"
	"tablescan/pkg/records"
)

func init() {
	source.Register("mssql", New)
}

// Repo is a database/sql-backed source for one SQL Server database.
type Repo struct {
	db *sql.DB
}

// New opens the database and verifies it with a ping.
func New(ctx context.Context, cfg source.Config) (source.Source, error) {
	db, err := sql.Open("sqlserver", cfg.DSN)
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
	rows, err := r.db.QueryContext(ctx, buildSampleSQL(table, limit))
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
	err := r.db.QueryRowContext(ctx, "SELECT COUNT_BIG(*) FROM "+ident(table)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}

// CountNull implements source.Source.
func (r *Repo) CountNull(ctx context.Context, table, column string) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, buildCountNullSQL(table, column)).Scan(&n); err != nil {
		return 0, fmt.Errorf("count null %s: %w", column, err)
	}
	return n, nil
}

// CountEmpty implements source.Source.
func (r *Repo) CountEmpty(ctx context.Context, table, column string) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, buildCountEmptySQL(table, column)).Scan(&n); err != nil {
		return 0, fmt.Errorf("count empty %s: %w", column, err)
	}
	return n, nil
}

// ValueCounts implements source.Source.
func (r *Repo) ValueCounts(ctx context.Context, table, column string) (map[string]int64, error) {
	rows, err := r.db.QueryContext(ctx, buildValueCountsSQL(table, column, source.DistinctCap))
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
// using OPENJSON. A keyed call groups on JSON_VALUE of each element;
// elements missing the key group as NULL and are skipped.
func (r *Repo) ElementCounts(ctx context.Context, table, column, key string) (map[string]int64, error) {
	rows, err := r.db.QueryContext(ctx, buildElementCountsSQL(table, column, key, source.DistinctCap))
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
	var lo, hi sql.NullString
	if err := r.db.QueryRowContext(ctx, buildMinMaxSQL(table, column)).Scan(&lo, &hi); err != nil {
		return "", "", false, fmt.Errorf("min/max %s: %w", column, err)
	}
	if !lo.Valid || !hi.Valid {
		return "", "", false, nil
	}
	return lo.String, hi.String, true, nil
}

// DescribeSchema implements source.SchemaDescriber via
// information_schema under the dbo schema.
func (r *Repo) DescribeSchema(ctx context.Context, table string) ([]source.ColumnInfo, error) {
	const q = `
		SELECT column_name, data_type, is_nullable, COALESCE(column_default, '')
		FROM information_schema.columns
		WHERE table_schema = 'dbo' AND table_name = @p1
		ORDER BY ordinal_position`

	rows, err := r.db.QueryContext(ctx, q, table)
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

// The builders are pure so the statement text can be unit tested
// without a live server.

func buildSampleSQL(table string, limit int) string {
	return fmt.Sprintf("SELECT TOP %d * FROM %s", limit, ident(table))
}

func buildCountNullSQL(table, column string) string {
	return fmt.Sprintf("SELECT COUNT_BIG(*) FROM %s WHERE %s IS NULL", ident(table), ident(column))
}

func buildCountEmptySQL(table, column string) string {
	return fmt.Sprintf(
		"SELECT COUNT_BIG(*) FROM %s WHERE %s IN ('{}', '[]', '')",
		ident(table), ident(column),
	)
}

func buildValueCountsSQL(table, column string, cap int) string {
	return fmt.Sprintf(
		"SELECT TOP %d CAST(%s AS NVARCHAR(MAX)) AS v, COUNT_BIG(*) AS n FROM %s WHERE %s IS NOT NULL GROUP BY CAST(%s AS NVARCHAR(MAX)) ORDER BY n DESC, v ASC",
		cap, ident(column), ident(table), ident(column), ident(column),
	)
}

func buildElementCountsSQL(table, column, key string, cap int) string {
	if key == "" {
		return fmt.Sprintf(
			"SELECT TOP %d j.[value] AS v, COUNT_BIG(*) AS n FROM %s CROSS APPLY OPENJSON(%s) AS j GROUP BY j.[value] ORDER BY n DESC, v ASC",
			cap, ident(table), ident(column),
		)
	}
	path := jsonPath(key)
	return fmt.Sprintf(
		"SELECT TOP %d JSON_VALUE(j.[value], %s) AS v, COUNT_BIG(*) AS n FROM %s CROSS APPLY OPENJSON(%s) AS j GROUP BY JSON_VALUE(j.[value], %s) ORDER BY n DESC, v ASC",
		cap, path, ident(table), ident(column), path,
	)
}

func buildMinMaxSQL(table, column string) string {
	return fmt.Sprintf(
		"SELECT CAST(MIN(%s) AS NVARCHAR(MAX)), CAST(MAX(%s) AS NVARCHAR(MAX)) FROM %s",
		ident(column), ident(column), ident(table),
	)
}

// ident bracket-quotes an identifier, escaping closing brackets.
func ident(name string) string {
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}

// jsonPath renders a quoted single-key JSON path literal for JSON_VALUE,
// escaping both the path's double quotes and the literal's single quotes.
func jsonPath(key string) string {
	key = strings.ReplaceAll(key, `"`, `\"`)
	key = strings.ReplaceAll(key, `'`, `''`)
	return `'$."` + key + `"'`
}

var (
	_ source.Source          = (*Repo)(nil)
	_ source.SchemaDescriber = (*Repo)(nil)
)
