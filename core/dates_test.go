package core

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Time
		wantErr error
	}{
		{in: "2024-03-15", want: time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)},
		{in: "2024-02-29", want: time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC)},
		{in: "2023-02-29", wantErr: ErrInvalidDate},
		{in: "2024-3-15", wantErr: ErrInvalidDate},
		{in: "15/03/2024", wantErr: ErrInvalidDate},
		{in: "2024-03-15T10:00:00Z", wantErr: ErrInvalidDate},
		{in: "", wantErr: ErrInvalidDate},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDate(tt.in)
			if err != tt.wantErr {
				t.Fatalf("ParseDate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseDate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestToday(t *testing.T) {
	kinshasa := time.FixedZone("WAT", 1*60*60)
	honolulu := time.FixedZone("HST", -10*60*60)
	now := time.Date(2024, time.March, 15, 23, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		loc  *time.Location
		want string
	}{
		{name: "utc", loc: time.UTC, want: "2024-03-15"},
		{name: "ahead of utc", loc: kinshasa, want: "2024-03-16"},
		{name: "behind utc", loc: honolulu, want: "2024-03-15"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatDate(Today(now, tt.loc)); got != tt.want {
				t.Errorf("Today() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDaysBetween(t *testing.T) {
	day := func(s string) time.Time {
		d, err := ParseDate(s)
		if err != nil {
			t.Fatal(err)
		}
		return d
	}

	tests := []struct {
		a, b string
		want int
	}{
		{a: "2024-03-15", b: "2024-03-15", want: 0},
		{a: "2024-03-15", b: "2024-03-16", want: 1},
		{a: "2024-03-16", b: "2024-03-15", want: -1},
		{a: "2024-02-28", b: "2024-03-01", want: 2},
		{a: "2023-12-31", b: "2024-12-31", want: 366},
		// spans the european DST switch
		{a: "2024-03-30", b: "2024-04-01", want: 2},
	}
	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			if got := DaysBetween(day(tt.a), day(tt.b)); got != tt.want {
				t.Errorf("DaysBetween() = %d, want %d", got, tt.want)
			}
		})
	}

	if got := FormatDate(AddDays(day("2024-02-28"), 2)); got != "2024-03-01" {
		t.Errorf("AddDays() = %s, want 2024-03-01", got)
	}
}
