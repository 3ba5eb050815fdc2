package dates

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAddUnits(t *testing.T) {
	cases := []struct {
		name     string
		start    time.Time
		kind     string
		interval int
		want     time.Time
	}{
		{"daily", date(2024, time.January, 1), "daily", 1, date(2024, time.January, 2)},
		{"daily interval 3", date(2024, time.January, 30), "daily", 3, date(2024, time.February, 2)},
		{"weekly", date(2024, time.January, 1), "weekly", 1, date(2024, time.January, 8)},
		{"weekly interval 2", date(2024, time.January, 1), "weekly", 2, date(2024, time.January, 15)},
		{"monthly", date(2024, time.March, 15), "monthly", 1, date(2024, time.April, 15)},
		{"monthly clamps to month end", date(2024, time.January, 31), "monthly", 1, date(2024, time.February, 29)},
		{"monthly clamp non-leap", date(2023, time.January, 31), "monthly", 1, date(2023, time.February, 28)},
		{"monthly across year", date(2024, time.November, 30), "monthly", 3, date(2025, time.February, 28)},
		{"yearly", date(2024, time.June, 10), "yearly", 1, date(2025, time.June, 10)},
		{"yearly leap day clamps", date(2024, time.February, 29), "yearly", 1, date(2025, time.February, 28)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := AddUnits(tc.start, tc.kind, tc.interval)
			if !got.Equal(tc.want) {
				t.Fatalf("AddUnits(%v, %s, %d)=%v, want %v", tc.start, tc.kind, tc.interval, got, tc.want)
			}
		})
	}
}

func TestDayNormalizesToMidnightUTC(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	in := time.Date(2024, time.July, 4, 2, 30, 0, 0, loc) // 2024-07-03 21:30 UTC
	got := Day(in)
	want := date(2024, time.July, 3)
	if !got.Equal(want) {
		t.Fatalf("Day(%v)=%v, want %v", in, got, want)
	}
}

func TestComparisons(t *testing.T) {
	a := date(2024, time.January, 15)
	b := date(2024, time.January, 16)

	if !Before(a, b) {
		t.Fatalf("Before(%v, %v)=false, want true", a, b)
	}
	if Before(a, a) {
		t.Fatalf("Before(a, a)=true, want false")
	}
	if !SameOrBefore(a, a) {
		t.Fatalf("SameOrBefore(a, a)=false, want true")
	}
	if SameOrBefore(b, a) {
		t.Fatalf("SameOrBefore(%v, %v)=true, want false", b, a)
	}
	// Same calendar day, different clock times.
	if !SameOrBefore(a.Add(23*time.Hour), a) {
		t.Fatalf("SameOrBefore ignores intra-day time, want true")
	}
}

func TestFixedClock(t *testing.T) {
	clock := Fixed(time.Date(2024, time.May, 1, 13, 45, 0, 0, time.UTC))
	want := date(2024, time.May, 1)
	if got := clock.Today(); !got.Equal(want) {
		t.Fatalf("Today()=%v, want %v", got, want)
	}
}
