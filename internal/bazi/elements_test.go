package bazi

import (
	"testing"
	"time"
)

func TestCountElementsBalancedChart(t *testing.T) {
	chart := Compute(time.Date(1984, time.June, 30, 22, 0, 0, 0, time.UTC))
	tally := CountElements(chart)

	wantCounts := map[Element]int{Metal: 1, Wood: 2, Water: 2, Fire: 2, Earth: 1}
	for el, want := range wantCounts {
		if got := tally.Counts[el]; got != want {
			t.Errorf("count %s: expected %d, got %d", el, want, got)
		}
	}

	wantPercent := map[Element]int{Metal: 50, Wood: 100, Water: 100, Fire: 100, Earth: 50}
	for el, want := range wantPercent {
		if got := tally.Percentages[el]; got != want {
			t.Errorf("percentage %s: expected %d, got %d", el, want, got)
		}
	}
}

func TestCountElementsSkewedChart(t *testing.T) {
	chart := Compute(time.Date(1982, time.December, 3, 12, 0, 0, 0, time.UTC))
	tally := CountElements(chart)

	wantCounts := map[Element]int{Metal: 3, Wood: 0, Water: 3, Fire: 1, Earth: 1}
	for el, want := range wantCounts {
		if got := tally.Counts[el]; got != want {
			t.Errorf("count %s: expected %d, got %d", el, want, got)
		}
	}

	wantPercent := map[Element]int{Metal: 100, Wood: 0, Water: 100, Fire: 33, Earth: 33}
	for el, want := range wantPercent {
		if got := tally.Percentages[el]; got != want {
			t.Errorf("percentage %s: expected %d, got %d", el, want, got)
		}
	}
}

func TestCountElementsTotalIsEight(t *testing.T) {
	births := []time.Time{
		time.Date(1955, time.March, 1, 3, 15, 0, 0, time.UTC),
		time.Date(1999, time.December, 31, 23, 59, 0, 0, time.UTC),
		time.Date(2012, time.July, 7, 7, 7, 0, 0, time.UTC),
	}

	for _, b := range births {
		tally := CountElements(Compute(b))
		if got := tally.Total(); got != 8 {
			t.Errorf("%s: tally total expected 8, got %d", b, got)
		}
		if len(tally.Counts) != 5 {
			t.Errorf("%s: every element must appear in the tally, got %d entries", b, len(tally.Counts))
		}
	}
}

func TestDominantBreaksTiesInCanonicalOrder(t *testing.T) {
	tally := Tally{Counts: map[Element]int{Metal: 2, Wood: 2, Water: 2, Fire: 1, Earth: 1}}
	if got := tally.Dominant(); got != Metal {
		t.Fatalf("expected 金 to win the tie, got %s", got)
	}

	tally = Tally{Counts: map[Element]int{Metal: 0, Wood: 1, Water: 4, Fire: 2, Earth: 1}}
	if got := tally.Dominant(); got != Water {
		t.Fatalf("expected 水, got %s", got)
	}
}
