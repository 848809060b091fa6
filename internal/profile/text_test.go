package profile

import (
	"testing"

	"tablescan/pkg/records"
)

// TestTextField_PlainText verifies length stats for prose values and that
// non-string values are skipped.
func TestTextField_PlainText(t *testing.T) {
	t.Parallel()

	recs := []records.Record{
		{"desc": "abcd"},
		{"desc": "ab"},
		{"desc": float64(5)},
		{"desc": ""},
	}

	stat := TextField(recs, "desc")
	if stat.PopulatedCount != 2 {
		t.Fatalf("PopulatedCount = %d, want 2", stat.PopulatedCount)
	}
	if stat.MinLen != 2 || stat.MaxLen != 4 {
		t.Fatalf("MinLen/MaxLen = %d/%d, want 2/4", stat.MinLen, stat.MaxLen)
	}
	if stat.AvgLen != 3 {
		t.Fatalf("AvgLen = %v, want 3", stat.AvgLen)
	}
	if stat.HTMLCount != 0 {
		t.Fatalf("HTMLCount = %d, want 0", stat.HTMLCount)
	}
}

// TestTextField_HTMLDetection verifies HTML values are detected and their
// anchors and tags counted, while a lone '<' in prose is not HTML.
func TestTextField_HTMLDetection(t *testing.T) {
	t.Parallel()

	recs := []records.Record{
		{"desc": `<p>See <a href="https://example.org">site</a></p>`},
		{"desc": "age < 65 years"},
	}

	stat := TextField(recs, "desc")
	if stat.PopulatedCount != 2 {
		t.Fatalf("PopulatedCount = %d, want 2", stat.PopulatedCount)
	}
	if stat.HTMLCount != 1 {
		t.Fatalf("HTMLCount = %d, want 1", stat.HTMLCount)
	}
	if stat.LinkCount != 1 {
		t.Fatalf("LinkCount = %d, want 1", stat.LinkCount)
	}
	if stat.TagCounts["p"] != 1 || stat.TagCounts["a"] != 1 {
		t.Fatalf("TagCounts = %v, want p:1 a:1", stat.TagCounts)
	}
}

// TestTextField_Empty verifies graceful degradation on an empty sample.
func TestTextField_Empty(t *testing.T) {
	t.Parallel()

	stat := TextField(nil, "desc")
	if stat.PopulatedCount != 0 || stat.AvgLen != 0 {
		t.Fatalf("unexpected stats for empty input: %#v", stat)
	}
}
