package profile

import (
	"strings"
	"time"

	"tablescan/pkg/records"
)

var dateLayouts = []string{
	"2006-01-02",
	"02.01.2006",
	"02/01/2006",
	"01/02/2006",
}

var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05.000Z07:00",
	"02.01.2006 15:04:05",
}

// LooksLikeDate reports whether s parses under any known date or
// timestamp layout.
func LooksLikeDate(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	for _, lay := range dateLayouts {
		if _, err := time.Parse(lay, s); err == nil {
			return true
		}
	}
	for _, lay := range timestampLayouts {
		if _, err := time.Parse(lay, s); err == nil {
			return true
		}
	}
	return false
}

// DateColumns returns the sampled columns whose every populated string
// value parses as a date or timestamp, sorted lexicographically.
//
// Columns whose values are time.Time (already typed by a SQL driver) also
// qualify. A column with no populated values does not.
func DateColumns(recs []records.Record) []string {
	var out []string
	for _, col := range records.ColumnUnion(recs) {
		seen := 0
		ok := true
		for _, r := range recs {
			v, present := r[col]
			if !present || !Populated(v) {
				continue
			}
			switch t := v.(type) {
			case time.Time:
				seen++
			case string:
				if !LooksLikeDate(t) {
					ok = false
				} else {
					seen++
				}
			default:
				ok = false
			}
			if !ok {
				break
			}
		}
		if ok && seen > 0 {
			out = append(out, col)
		}
	}
	return out
}
