package stats

import "math"

// MovingAverage computes a trailing moving average of size window over a
// chronologically sorted series. The window is clipped at the series start
// (it shrinks near index 0 instead of looking outside bounds). Non-finite
// points are skipped: they contribute zero weight to the average, not a
// zero value. An index whose window holds no finite point yields NaN.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	for i := range values {
		start := i - window + 1
		if start < 0 {
			start = 0
		}
		sum := 0.0
		n := 0
		for j := start; j <= i; j++ {
			v := values[j]
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			sum += v
			n++
		}
		if n == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = sum / float64(n)
	}
	return out
}

// RatioMovingAverage computes the trailing aggregate-then-divide moving
// average of two aligned series: out[i] = sum(nums[w]) / sum(dens[w]) over
// the trailing window, not a mean of per-point ratios. A window whose
// denominator sums to zero yields 0 (chart-friendly, not NaN).
func RatioMovingAverage(nums, dens []float64, window int) []float64 {
	n := len(nums)
	if len(dens) < n {
		n = len(dens)
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		start := i - window + 1
		if start < 0 {
			start = 0
		}
		numSum, denSum := 0.0, 0.0
		for j := start; j <= i; j++ {
			numSum += nums[j]
			denSum += dens[j]
		}
		if denSum == 0 {
			out[i] = 0
			continue
		}
		out[i] = numSum / denSum
	}
	return out
}
