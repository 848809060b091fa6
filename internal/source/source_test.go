package source

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"tablescan/pkg/records"
)

type stubSource struct{}

func (stubSource) FetchSample(context.Context, string, int) ([]records.Record, error) {
	return nil, nil
}
func (stubSource) Count(context.Context, string) (int64, error)              { return 0, nil }
func (stubSource) CountNull(context.Context, string, string) (int64, error)  { return 0, nil }
func (stubSource) CountEmpty(context.Context, string, string) (int64, error) { return 0, nil }
func (stubSource) ValueCounts(context.Context, string, string) (map[string]int64, error) {
	return nil, nil
}
func (stubSource) ElementCounts(context.Context, string, string, string) (map[string]int64, error) {
	return nil, nil
}
func (stubSource) MinMax(context.Context, string, string) (string, string, bool, error) {
	return "", "", false, nil
}
func (stubSource) Close() {}

func TestRegistry(t *testing.T) {
	Register("stub", func(ctx context.Context, cfg Config) (Source, error) {
		return stubSource{}, nil
	})
	Register("failing", func(ctx context.Context, cfg Config) (Source, error) {
		return nil, errors.New("dial refused")
	})

	src, err := Open(context.Background(), "stub", Config{})
	if err != nil {
		t.Fatalf("Open(stub) err = %v", err)
	}
	src.Close()

	// Factory errors come back wrapped with the kind.
	_, err = Open(context.Background(), "failing", Config{})
	if err == nil || !strings.Contains(err.Error(), "open failing") || !strings.Contains(err.Error(), "dial refused") {
		t.Fatalf("Open(failing) err = %v, want wrapped factory error", err)
	}

	// Unknown kinds name the registered backends.
	_, err = Open(context.Background(), "oracle", Config{})
	if err == nil || !strings.Contains(err.Error(), `unknown backend "oracle"`) || !strings.Contains(err.Error(), "stub") {
		t.Fatalf("Open(oracle) err = %v, want unknown-backend error listing kinds", err)
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("duplicate Register should panic")
		}
	}()
	Register("dup", func(ctx context.Context, cfg Config) (Source, error) { return stubSource{}, nil })
	Register("dup", func(ctx context.Context, cfg Config) (Source, error) { return stubSource{}, nil })
}

func TestNormalizeValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   any
		want any
	}{
		{"json_object_text", `{"city":"Oslo"}`, map[string]any{"city": "Oslo"}},
		{"json_array_bytes", []byte(`[1,2]`), []any{float64(1), float64(2)}},
		{"plain_text", "recruiting", "recruiting"},
		{"scalar_json_left_alone", "123", "123"},
		{"quoted_string_left_alone", `"x"`, `"x"`},
		{"invalid_json_container", "{not json", "{not json"},
		{"bytes_become_string", []byte("abc"), "abc"},
		{"passthrough_number", int64(7), int64(7)},
		{"passthrough_nil", nil, nil},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := NormalizeValue(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("NormalizeValue(%#v) = %#v, want %#v", tt.in, got, tt.want)
			}
		})
	}
}
