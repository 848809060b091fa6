package profile

import (
	"reflect"
	"sort"
	"strings"
	"testing"

	"tablescan/pkg/records"
)

// TestColumns_EmptyInput verifies the corrected empty-sample contract:
// an empty record sequence yields an empty map and never divides by zero.
func TestColumns_EmptyInput(t *testing.T) {
	t.Parallel()

	got := Columns(nil)
	if len(got) != 0 {
		t.Fatalf("Columns(nil) = %#v, want empty map", got)
	}

	got = Columns([]records.Record{})
	if len(got) != 0 {
		t.Fatalf("Columns([]) = %#v, want empty map", got)
	}
}

// TestColumns_KeyUnion verifies that the output key set equals the union of
// keys across all records, including keys absent from some records.
func TestColumns_KeyUnion(t *testing.T) {
	t.Parallel()

	recs := []records.Record{
		{"a": 1, "b": "x"},
		{"b": "y", "c": nil},
		{"d": []any{1}},
	}

	got := Columns(recs)

	keys := make([]string, 0, len(got))
	for k := range got {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	want := []string{"a", "b", "c", "d"}
	if !reflect.DeepEqual(keys, want) {
		t.Fatalf("key set = %v, want %v", keys, want)
	}
}

// TestColumns_PopulatedAsymmetry verifies the asymmetric population rule:
// nil, "", and [] never count; 0, false, and {} always count.
func TestColumns_PopulatedAsymmetry(t *testing.T) {
	t.Parallel()

	recs := []records.Record{
		{"col": nil},
		{"col": ""},
		{"col": []any{}},
		{"col": float64(0)},
		{"col": false},
		{"col": map[string]any{}},
	}

	stat := Columns(recs)["col"]
	if stat.PopulatedCount != 3 {
		t.Fatalf("PopulatedCount = %d, want 3 (0, false, and {} count; nil, \"\", [] do not)", stat.PopulatedCount)
	}
	if stat.Total != 6 {
		t.Fatalf("Total = %d, want 6", stat.Total)
	}
	if p := stat.Percentage(); p != 50 {
		t.Fatalf("Percentage() = %v, want 50", p)
	}
}

// TestColumns_Bounds verifies populated <= total, percentage range, and
// sample list bounds for a mixed sample.
func TestColumns_Bounds(t *testing.T) {
	t.Parallel()

	recs := []records.Record{
		{"v": "a"},
		{"v": "b"},
		{"v": "c"},
		{"v": "d"},
		{"v": nil},
	}

	stat := Columns(recs)["v"]
	if stat.PopulatedCount > stat.Total {
		t.Fatalf("populated %d > total %d", stat.PopulatedCount, stat.Total)
	}
	if p := stat.Percentage(); p < 0 || p > 100 {
		t.Fatalf("Percentage() = %v out of range", p)
	}
	if len(stat.Samples) > 3 {
		t.Fatalf("len(Samples) = %d, want <= 3", len(stat.Samples))
	}
	if len(stat.Samples) > stat.PopulatedCount {
		t.Fatalf("len(Samples) = %d > populated %d", len(stat.Samples), stat.PopulatedCount)
	}
	// Record order, first three.
	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(stat.Samples, want) {
		t.Fatalf("Samples = %v, want %v", stat.Samples, want)
	}
}

// TestColumns_SampleTruncation verifies the 50-rune cut with ellipsis for
// long scalars and exact reproduction of short ones.
func TestColumns_SampleTruncation(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("x", 80)
	recs := []records.Record{
		{"s": long},
		{"s": "short"},
	}

	stat := Columns(recs)["s"]
	if got, want := stat.Samples[0], strings.Repeat("x", 50)+"..."; got != want {
		t.Fatalf("long sample = %q, want %q", got, want)
	}
	if stat.Samples[1] != "short" {
		t.Fatalf("short sample = %q, want %q", stat.Samples[1], "short")
	}

	// Exactly 50 runes is reproduced without a marker.
	exact := strings.Repeat("y", 50)
	stat = Columns([]records.Record{{"s": exact}})["s"]
	if stat.Samples[0] != exact {
		t.Fatalf("exact-length sample = %q, want unmodified", stat.Samples[0])
	}
}

// TestColumns_ContainerSamples verifies that arrays and objects are
// rendered as bounded descriptors rather than their content.
func TestColumns_ContainerSamples(t *testing.T) {
	t.Parallel()

	recs := []records.Record{
		{"j": []any{1, 2, 3}},
		{"j": map[string]any{"a": 1, "b": 2}},
	}

	stat := Columns(recs)["j"]
	want := []string{"array with 3 items", "object with 2 items"}
	if !reflect.DeepEqual(stat.Samples, want) {
		t.Fatalf("Samples = %v, want %v", stat.Samples, want)
	}

	wantKinds := []string{"array", "object"}
	if !reflect.DeepEqual(stat.Kinds, wantKinds) {
		t.Fatalf("Kinds = %v, want %v", stat.Kinds, wantKinds)
	}
}

// TestColumns_KindInference verifies the coarse kind tags per value shape.
func TestColumns_KindInference(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		v    any
		want string
	}{
		{"bool", true, "bool"},
		{"float", 1.5, "number"},
		{"int64", int64(7), "number"},
		{"string", "s", "string"},
		{"array", []any{1}, "array"},
		{"object", map[string]any{"k": 1}, "object"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			stat := Columns([]records.Record{{"c": tt.v}})["c"]
			if !reflect.DeepEqual(stat.Kinds, []string{tt.want}) {
				t.Fatalf("Kinds = %v, want [%s]", stat.Kinds, tt.want)
			}
		})
	}
}

// TestColumns_NumberStringification verifies that JSON-decoded numbers
// print without a float mantissa.
func TestColumns_NumberStringification(t *testing.T) {
	t.Parallel()

	stat := Columns([]records.Record{{"n": float64(5)}})["n"]
	if stat.Samples[0] != "5" {
		t.Fatalf("sample = %q, want %q", stat.Samples[0], "5")
	}
}
