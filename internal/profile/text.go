package profile

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"tablescan/pkg/records"
)

// TextStat summarizes a free-text column over a record sample.
//
// Length figures are in runes. HTML detection is heuristic: a value is
// only parsed when it contains a '<', and counts as HTML when the parsed
// document yields at least one element node.
type TextStat struct {
	Field string

	// PopulatedCount is how many sampled records had a non-empty string
	// value for the field.
	PopulatedCount int

	MinLen int
	MaxLen int
	AvgLen float64

	// HTMLCount is the number of populated values detected as HTML.
	HTMLCount int

	// LinkCount is the total number of <a href> anchors across all
	// HTML-detected values.
	LinkCount int

	// TagCounts maps element names to occurrence totals across all
	// HTML-detected values.
	TagCounts map[string]int
}

// TextField profiles the string values of one column.
//
// Non-string values are skipped rather than coerced; a numeric column
// accidentally passed here reports zero populated values. Parse failures
// on HTML-looking values are ignored, so a stray '<' in prose never fails
// the profile.
func TextField(recs []records.Record, field string) TextStat {
	stat := TextStat{Field: field, TagCounts: make(map[string]int)}

	var totalLen int
	for _, r := range recs {
		s, ok := r[field].(string)
		if !ok || s == "" {
			continue
		}

		stat.PopulatedCount++
		n := len([]rune(s))
		totalLen += n
		if stat.MinLen == 0 || n < stat.MinLen {
			stat.MinLen = n
		}
		if n > stat.MaxLen {
			stat.MaxLen = n
		}

		if !strings.Contains(s, "<") {
			continue
		}
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
		if err != nil {
			continue
		}
		// html/x parsers wrap fragments in html/head/body; only count
		// elements the value itself contributed.
		elems := 0
		doc.Find("body *").Each(func(_ int, sel *goquery.Selection) {
			elems++
			stat.TagCounts[goquery.NodeName(sel)]++
		})
		if elems == 0 {
			continue
		}
		stat.HTMLCount++
		doc.Find("a[href]").Each(func(_ int, _ *goquery.Selection) {
			stat.LinkCount++
		})
	}

	if stat.PopulatedCount > 0 {
		stat.AvgLen = float64(totalLen) / float64(stat.PopulatedCount)
	}
	return stat
}
