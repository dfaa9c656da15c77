// Package stats provides the generic numeric folds shared by the
// aggregation passes: histogram bucketing, order-statistic summaries and
// trailing moving averages.
package stats

import (
	"math"
	"strconv"
)

// BinCount is one histogram bin with its display label.
type BinCount struct {
	Bucket string `json:"bucket"`
	Count  int    `json:"count"`
}

func formatEdge(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Bucketize partitions values into len(edges) half-open bins
// [edges[i], edges[i+1]) plus one open-ended overflow bin [edges[last], inf).
// Each value lands in the first matching bin by linear scan; a finite value
// matching no bounded bin goes to overflow. Non-finite values are skipped,
// so the bin counts sum to the number of finite inputs.
func Bucketize(values []float64, edges []float64) []BinCount {
	bins := make([]BinCount, len(edges))
	for i := range edges {
		if i+1 < len(edges) {
			bins[i].Bucket = formatEdge(edges[i]) + ".." + formatEdge(edges[i+1])
		} else {
			bins[i].Bucket = formatEdge(edges[i]) + "+"
		}
	}
	if len(bins) == 0 {
		return bins
	}

	overflow := len(bins) - 1
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		placed := false
		for i := 0; i+1 < len(edges); i++ {
			if v >= edges[i] && v < edges[i+1] {
				bins[i].Count++
				placed = true
				break
			}
		}
		if !placed {
			bins[overflow].Count++
		}
	}
	return bins
}
