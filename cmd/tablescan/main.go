// Command tablescan analyzes the structure and content of one table
// behind a PostgREST-style table API and prints a descriptive report.
//
// The report covers: total row count, per-column population rates and
// inferred value types from a bounded sample, nested-document field
// shapes, free-text/HTML detection, full sample records, missing-data
// counts for critical columns, categorical value distributions,
// most-common-element counts for array columns, and date ranges.
//
// # Connection settings
//
// The API endpoint and key come from flags or the environment, never
// from the binary:
//
//   - -url / -key                     (highest priority)
//   - TABLESCAN_URL / TABLESCAN_KEY
//   - SUPABASE_URL / SUPABASE_KEY    (fallback)
//
// # Column selection
//
// The nested, distribution and date sections auto-detect their columns
// from the sample when the corresponding flags are empty. Flags take a
// comma-separated column list; "-nested none" (any flag set to "none")
// disables the section's auto-detection outright.
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

	_ "tablescan/internal/source/rest" // register the rest backend
)

func main() {
	var (
		flagTable = flag.String("table", "clinical_trials", "Table to analyze")

		flagURL = flag.String("url", "", "Table API base URL (default: TABLESCAN_URL or SUPABASE_URL)")
		flagKey = flag.String("key", "", "Table API key (default: TABLESCAN_KEY or SUPABASE_KEY)")

		// flagLimit bounds the sample fetch. Structure inference quality
		// grows slowly with sample size; 5 matches the typical case of a
		// quick look at an unfamiliar table.
		flagLimit   = flag.Int("limit", 5, "Number of records to sample")
		flagRecords = flag.Int("records", 2, "Number of full sample records to display")

		flagNested        = flag.String("nested", "", "Comma-separated nested-document columns (empty: auto-detect, \"none\": skip)")
		flagText          = flag.String("text", "", "Comma-separated free-text columns (empty: auto-detect, \"none\": skip)")
		flagCritical      = flag.String("critical", "", "Comma-separated critical columns for missing-data checks (empty: skip)")
		flagDistributions = flag.String("distributions", "", "Comma-separated distribution columns (empty: auto-detect, \"none\": skip)")
		flagElements      = flag.String("elements", "", "Comma-separated array columns for element counts, col or col.key (empty: auto-detect, \"none\": skip)")
		flagDates         = flag.String("dates", "", "Comma-separated date columns (empty: auto-detect, \"none\": skip)")

		flagTimeout = flag.Duration("timeout", 60*time.Second, "Overall analysis timeout")

		// flagDD enables the Datadog metrics backend. Off by default so
		// ad-hoc runs need no metrics credentials.
		flagDD     = flag.Bool("dd", false, "Submit run metrics to Datadog")
		flagDDTags = flag.String("dd-tags", "", "Extra Datadog tags, e.g. env:prod,service:tablescan")
	)
	flag.Parse()

	if strings.TrimSpace(*flagTable) == "" {
		fmt.Fprintln(os.Stderr, "missing -table")
		flag.Usage()
		os.Exit(2)
	}

	rest, err := config.ResolveREST(*flagURL, *flagKey)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *flagTimeout)
	defer cancel()

	var mb metrics.Backend
	if *flagDD {
		dd, err := datadog.NewBackend(ctx, datadog.Options{
			JobName: "tablescan",
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

	src, err := source.Open(ctx, "rest", source.Config{BaseURL: rest.BaseURL, APIKey: rest.APIKey})
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
