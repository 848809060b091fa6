package main

import (
	"reflect"
	"testing"
)

func TestSplitColumns(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"empty_means_auto", "", nil},
		{"none_means_skip", "none", []string{}},
		{"none_case_insensitive", "NONE", []string{}},
		{"single", "locations", []string{"locations"}},
		{"list_trims_and_skips_blanks", " locations , contact_info, ,status ", []string{"locations", "contact_info", "status"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := splitColumns(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("splitColumns(%q) = %#v, want %#v", tt.in, got, tt.want)
			}
			if (got == nil) != (tt.want == nil) {
				t.Fatalf("splitColumns(%q) nil-ness = %v, want %v", tt.in, got == nil, tt.want == nil)
			}
		})
	}
}
