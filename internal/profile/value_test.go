package profile

import (
	"testing"
	"time"
)

// TestPopulatedVsTruthy pins down exactly where the two predicates agree
// and where they diverge. The divergence ({}, 0, false) is a preserved
// behavior of the analyzer this package replaces.
func TestPopulatedVsTruthy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		v         any
		populated bool
		truthy    bool
	}{
		{"nil", nil, false, false},
		{"empty string", "", false, false},
		{"empty array", []any{}, false, false},
		{"empty object", map[string]any{}, true, false},
		{"zero", float64(0), true, false},
		{"false", false, true, false},
		{"string", "x", true, true},
		{"nonzero", float64(1), true, true},
		{"true", true, true, true},
		{"array", []any{1}, true, true},
		{"object", map[string]any{"k": 1}, true, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Populated(tt.v); got != tt.populated {
				t.Errorf("Populated(%v) = %v, want %v", tt.v, got, tt.populated)
			}
			if got := Truthy(tt.v); got != tt.truthy {
				t.Errorf("Truthy(%v) = %v, want %v", tt.v, got, tt.truthy)
			}
		})
	}
}

// TestKindOf_SQLScannedTypes verifies classification of values as SQL
// drivers hand them over, not just JSON-decoded shapes.
func TestKindOf_SQLScannedTypes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		v    any
		want Kind
	}{
		{"int64", int64(3), KindNumber},
		{"float64", 3.5, KindNumber},
		{"bytes", []byte("x"), KindString},
		{"time", time.Now(), KindString},
		{"nil", nil, KindNull},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := KindOf(tt.v); got != tt.want {
				t.Fatalf("KindOf(%T) = %v, want %v", tt.v, got, tt.want)
			}
		})
	}
}

// TestLooksLikeDate covers the loose layouts used for date-column
// detection.
func TestLooksLikeDate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want bool
	}{
		{"2024-03-01", true},
		{"01.02.2023", true},
		{"2024-03-01T10:00:00Z", true},
		{"2024-03-01 10:00:00", true},
		{"not a date", false},
		{"", false},
		{"123456", false},
	}

	for _, tt := range tests {
		if got := LooksLikeDate(tt.in); got != tt.want {
			t.Errorf("LooksLikeDate(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
