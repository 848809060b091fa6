// Command tablescan-sql analyzes the structure and content of one table
// over a direct SQL connection and prints a descriptive report.
//
// It produces the same report as cmd/tablescan plus a schema section
// (column names, types, nullability, defaults), which the table-API
// path cannot provide.
//
// Supported backends: postgres (pgx), mssql (go-mssqldb), sqlite
// (modernc, in-process, useful against local snapshots).
//
// # DSN resolution
//
// Precedence rules are strict and deterministic:
//
//  1. -dsn "<dsn>"                    (highest priority)
//  2. DSN="<dsn>"                     (full DSN via env var)
//  3. DSN_HOST / DSN_PORT / DSN_USER / DSN_PASSWORD / DSN_DB
//     plus optional backend knobs:
//     - Postgres: DSN_SSLMODE (default: "require")
//     - MSSQL:    DSN_ENCRYPT (default: "true")
//     - SQLite:   DSN_SQLITE (path or full DSN)
//     plus optional DSN_PARAMS for extra query parameters.
//
// When DSN_PASSWORD is unset and the session is interactive, the
// password is read from the terminal without echo. There are no default
// credentials.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"runtime/debug"
	"strings"
	"time"

	"tablescan/internal/analyze"
	"tablescan/internal/config"
	"tablescan/internal/metrics"
	"tablescan/internal/metrics/datadog"
	"tablescan/internal/source"

	// register the SQL backends
	_ "tablescan/internal/source/mssql"
	_ "tablescan/internal/source/postgres"
	_ "tablescan/internal/source/sqlite"
)

func main() {
	var (
		flagTable   = flag.String("table", "clinical_trials", "Table to analyze")
		flagBackend = flag.String("backend", "postgres", "SQL backend: postgres|mssql|sqlite")
		flagDSN     = flag.String("dsn", "", "Connection string (highest priority; see package docs for env fallbacks)")

		flagLimit   = flag.Int("limit", 5, "Number of records to sample")
		flagRecords = flag.Int("records", 2, "Number of full sample records to display")

		flagNested        = flag.String("nested", "", "Comma-separated nested-document columns (empty: auto-detect, \"none\": skip)")
		flagText          = flag.String("text", "", "Comma-separated free-text columns (empty: auto-detect, \"none\": skip)")
		flagCritical      = flag.String("critical", "", "Comma-separated critical columns for missing-data checks (empty: skip)")
		flagDistributions = flag.String("distributions", "", "Comma-separated distribution columns (empty: auto-detect, \"none\": skip)")
		flagElements      = flag.String("elements", "", "Comma-separated array columns for element counts, col or col.key (empty: auto-detect, \"none\": skip)")
		flagDates         = flag.String("dates", "", "Comma-separated date columns (empty: auto-detect, \"none\": skip)")

		flagTimeout = flag.Duration("timeout", 60*time.Second, "Overall analysis timeout")

		flagDD     = flag.Bool("dd", false, "Submit run metrics to Datadog")
		flagDDTags = flag.String("dd-tags", "", "Extra Datadog tags, e.g. env:prod,service:tablescan")
	)
	flag.Parse()

	if strings.TrimSpace(*flagTable) == "" {
		fmt.Fprintln(os.Stderr, "missing -table")
		flag.Usage()
		os.Exit(2)
	}

	backend := config.NormalizeBackend(*flagBackend)
	if backend == "" {
		fmt.Fprintf(os.Stderr, "unsupported -backend %q (want postgres, mssql or sqlite)\n", *flagBackend)
		flag.Usage()
		os.Exit(2)
	}

	// DSN resolution may prompt for a password, so it happens before the
	// timeout starts ticking.
	dsn, err := config.ResolveDSN(backend, *flagDSN)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *flagTimeout)
	defer cancel()

	var mb metrics.Backend
	if *flagDD {
		dd, err := datadog.NewBackend(ctx, datadog.Options{
			JobName: "tablescan-sql",
			Tags:    datadog.ParseTagsCSV(*flagDDTags),
		})
		if err != nil {
			log.Fatalf("datadog metrics: %v", err)
		}
		defer func() {
			if err := dd.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "metrics flush: %v\n", err)
			}
		}()
		mb = dd
	}

	src, err := source.Open(ctx, backend, source.Config{DSN: dsn})
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer src.Close()

	opts := analyze.Options{
		Table:               *flagTable,
		SampleLimit:         *flagLimit,
		ShowRecords:         *flagRecords,
		NestedFields:        splitColumns(*flagNested),
		TextFields:          splitColumns(*flagText),
		CriticalColumns:     splitColumns(*flagCritical),
		DistributionColumns: splitColumns(*flagDistributions),
		ElementColumns:      splitColumns(*flagElements),
		DateColumns:         splitColumns(*flagDates),
		Metrics:             mb,
	}

	if err := analyze.Run(ctx, src, os.Stdout, opts); err != nil {
		fmt.Fprintf(os.Stderr, "error analyzing table: %v\n%s", err, debug.Stack())
		os.Exit(1)
	}
}

// splitColumns parses a comma-separated column list. Empty input yields
// nil (auto-detect); "none" yields an empty non-nil slice, which the
// analyzer treats as an explicit skip.
func splitColumns(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if strings.EqualFold(s, "none") {
		return []string{}
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
