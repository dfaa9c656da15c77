package stats

import "sort"

// Summary holds descriptive order statistics over a numeric series.
type Summary struct {
	Count int     `json:"count"`
	Min   float64 `json:"min"`
	P25   float64 `json:"p25"`
	P50   float64 `json:"p50"`
	P75   float64 `json:"p75"`
	Max   float64 `json:"max"`
	Avg   float64 `json:"avg"`
}

// Summarize computes count/min/p25/p50/p75/max/avg over values. Empty input
// yields the zero Summary, not an error.
func Summarize(values []float64) Summary {
	n := len(values)
	if n == 0 {
		return Summary{}
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	sum := 0.0
	for _, v := range sorted {
		sum += v
	}

	return Summary{
		Count: n,
		Min:   sorted[0],
		P25:   Percentile(sorted, 0.25),
		P50:   Percentile(sorted, 0.50),
		P75:   Percentile(sorted, 0.75),
		Max:   sorted[n-1],
		Avg:   sum / float64(n),
	}
}

// Percentile computes the p-th percentile (p in [0,1]) of a pre-sorted
// slice by linear interpolation at fractional rank p*(n-1).
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}

	idx := p * float64(n-1)
	lower := int(idx)
	upper := lower + 1
	if upper >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lower)
	return sorted[lower] + frac*(sorted[upper]-sorted[lower])
}
