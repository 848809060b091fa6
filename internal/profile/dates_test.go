package profile

import (
	"reflect"
	"testing"
	"time"

	"tablescan/pkg/records"
)

func TestDateColumns(t *testing.T) {
	t.Parallel()

	recs := []records.Record{
		{
			"start_date":      "2020-01-15",
			"completion_date": "2021-06-01T10:30:00",
			"updated_at":      time.Date(2022, 3, 1, 0, 0, 0, 0, time.UTC),
			"title":           "A study",
			"mixed":           "2020-01-15",
			"empty_col":       nil,
		},
		{
			"start_date":      "2019-03-20",
			"completion_date": nil, // nil values don't disqualify
			"updated_at":      time.Date(2023, 7, 9, 0, 0, 0, 0, time.UTC),
			"title":           "Another study",
			"mixed":           "not a date",
			"empty_col":       "",
		},
	}

	got := DateColumns(recs)
	want := []string{"completion_date", "start_date", "updated_at"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("DateColumns() = %v, want %v", got, want)
	}
}

func TestDateColumnsEmpty(t *testing.T) {
	t.Parallel()

	if got := DateColumns(nil); got != nil {
		t.Fatalf("DateColumns(nil) = %v, want nil", got)
	}
}
