package bazi

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
}

func TestComputeReferenceChart1984(t *testing.T) {
	chart := Compute(date(1984, time.June, 30, 22, 0))

	want := [4]string{"甲子", "庚午", "乙未", "丁亥"}
	got := chart.Pillars()
	for i, p := range got {
		if p.String() != want[i] {
			t.Fatalf("pillar %d: expected %s, got %s (chart %s)", i, want[i], p, chart.Sizhu())
		}
	}
}

func TestComputeReferenceChart1982(t *testing.T) {
	chart := Compute(date(1982, time.December, 3, 12, 0))

	if chart.Sizhu() != "壬戌辛亥庚申壬午" {
		t.Fatalf("expected 壬戌辛亥庚申壬午, got %s", chart.Sizhu())
	}
}

func TestComputeIsDeterministic(t *testing.T) {
	birth := date(1991, time.March, 17, 8, 45)

	first := Compute(birth)
	for i := 0; i < 10; i++ {
		if got := Compute(birth); got != first {
			t.Fatalf("run %d: chart changed from %s to %s", i, first.Sizhu(), got.Sizhu())
		}
	}
}

func TestYearBoundaryIsLiChun(t *testing.T) {
	// Late January belongs to the previous cyclical year.
	before := Compute(date(1984, time.January, 20, 12, 0))
	if before.Year.String() != "癸亥" {
		t.Fatalf("pre-lichun date should fall in the 癸亥 year, got %s", before.Year)
	}

	after := Compute(date(1984, time.June, 30, 12, 0))
	if after.Year.String() != "甲子" {
		t.Fatalf("post-lichun date should fall in the 甲子 year, got %s", after.Year)
	}
}

func TestHourBranchTable(t *testing.T) {
	cases := []struct {
		hour   int
		branch string
	}{
		{0, "子"},
		{1, "丑"},
		{6, "卯"},
		{12, "午"},
		{23, "子"},
	}

	for _, tc := range cases {
		// Mid-February keeps the equation-of-time shift well inside the
		// two-hour branch window.
		chart := Compute(date(1990, time.February, 15, tc.hour, 30))
		if chart.Hour.Branch != tc.branch {
			t.Errorf("hour %d: expected branch %s, got %s", tc.hour, tc.branch, chart.Hour.Branch)
		}
	}
}

func TestDayPillarKnownDates(t *testing.T) {
	// Anchor dates the epoch was calibrated against.
	cases := []struct {
		y    int
		m    time.Month
		d    int
		want string
	}{
		{1982, time.December, 3, "庚申"},
		{1984, time.January, 16, "己酉"},
		{1987, time.June, 30, "庚戌"},
	}

	for _, tc := range cases {
		chart := Compute(date(tc.y, tc.m, tc.d, 12, 0))
		if chart.Day.String() != tc.want {
			t.Errorf("%d-%02d-%02d: expected day pillar %s, got %s", tc.y, tc.m, tc.d, tc.want, chart.Day)
		}
	}
}

func TestTermDayFloorsNegativeYearDrift(t *testing.T) {
	// 1982 is 18 years before the anchor; floor(-18/4) = -5 pushes 大雪 from
	// the 7th to the 12th, which is what puts Dec 3 in the 亥 month.
	if got := termDay(1982, "大雪"); got != 12 {
		t.Fatalf("expected 大雪 1982 on day 12, got %d", got)
	}
	if got := termDay(2000, "立春"); got != 4 {
		t.Fatalf("expected 立春 2000 on day 4, got %d", got)
	}
}
