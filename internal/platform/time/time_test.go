package time

import (
	"testing"
	"time"
)

func TestParse_Layouts(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
	}{
		{"2020-01-01", time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"2020-06-01 13:45:10", time.Date(2020, 6, 1, 13, 45, 10, 0, time.UTC)},
		{"2020-06-01T13:45", time.Date(2020, 6, 1, 13, 45, 0, 0, time.UTC)},
		{"2020-06-01T13:45:10+03:00", time.Date(2020, 6, 1, 10, 45, 10, 0, time.UTC)},
		{" 2020-06-01T13:45:10.5Z ", time.Date(2020, 6, 1, 13, 45, 10, 500_000_000, time.UTC)},
	}
	for _, c := range cases {
		got, ok := Parse(c.in)
		if !ok || !got.Equal(c.want) {
			t.Fatalf("Parse(%q) = %v, %v; want %v", c.in, got, ok, c.want)
		}
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, in := range []string{"", "yesterday", "2020-13-01", "01.06.2020"} {
		if _, ok := Parse(in); ok {
			t.Fatalf("Parse(%q) should fail", in)
		}
	}
}

func TestIsDateAndEndOfDay(t *testing.T) {
	if !IsDate("2025-06-30") || IsDate("2025-06-30T10:00:00Z") {
		t.Fatalf("IsDate mismatch")
	}
	day := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	eod := EndOfDay(day)
	if eod.Day() != 30 || !eod.Add(time.Nanosecond).Equal(time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("EndOfDay = %v", eod)
	}
}

func TestPtr(t *testing.T) {
	if Ptr(time.Time{}) != nil {
		t.Fatalf("Ptr(zero) should be nil")
	}
	now := time.Now()
	if p := Ptr(now); p == nil || !p.Equal(now) {
		t.Fatalf("Ptr(now) mismatch")
	}
}
