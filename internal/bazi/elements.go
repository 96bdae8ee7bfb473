package bazi

import "math"

// Tally is the five-element distribution of a chart's eight symbols. Counts
// always sum to 8; percentages are scaled against the largest count so the
// dominant element reads 100%.
type Tally struct {
	Counts      map[Element]int `json:"counts"`
	Percentages map[Element]int `json:"percentages"`
}

// CountElements tallies the chart's four stems and four branches into the
// five element buckets.
func CountElements(c Chart) Tally {
	counts := make(map[Element]int, len(ElementOrder))
	for _, e := range ElementOrder {
		counts[e] = 0
	}

	for _, p := range c.Pillars() {
		if e, ok := StemElement(p.Stem); ok {
			counts[e]++
		}
		if e, ok := BranchElement(p.Branch); ok {
			counts[e]++
		}
	}

	maxCount := 0
	for _, n := range counts {
		if n > maxCount {
			maxCount = n
		}
	}

	percentages := make(map[Element]int, len(counts))
	for e, n := range counts {
		if maxCount == 0 {
			percentages[e] = 0
			continue
		}
		percentages[e] = int(math.Round(float64(n) / float64(maxCount) * 100))
	}

	return Tally{Counts: counts, Percentages: percentages}
}

// Total returns the number of tallied symbols (8 for any full chart).
func (t Tally) Total() int {
	sum := 0
	for _, n := range t.Counts {
		sum += n
	}
	return sum
}

// Dominant returns the element with the highest count; ties resolve in
// canonical 金木水火土 order.
func (t Tally) Dominant() Element {
	best := ElementOrder[0]
	bestCount := -1
	for _, e := range ElementOrder {
		if t.Counts[e] > bestCount {
			best = e
			bestCount = t.Counts[e]
		}
	}
	return best
}
