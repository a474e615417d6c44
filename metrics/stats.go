package metrics

import "math"

// minSharpePoints is the shortest series Sharpe is reported for.
const minSharpePoints = 5

// Sharpe annualizes the mean/stddev ratio of step deltas with
// sqrt(periodsPerYear). The factor assumes one decision per trading period;
// it is a reporting convention and says nothing about the actual cadence.
// Sample standard deviation (n-1) is used; zero dispersion reports 0.
func Sharpe(cumulative []float64, periodsPerYear float64) float64 {
	if len(cumulative) < minSharpePoints {
		return 0
	}
	diffs := make([]float64, len(cumulative)-1)
	for i := 1; i < len(cumulative); i++ {
		diffs[i-1] = cumulative[i] - cumulative[i-1]
	}

	var sum float64
	for _, d := range diffs {
		sum += d
	}
	mean := sum / float64(len(diffs))

	var ss float64
	for _, d := range diffs {
		ss += (d - mean) * (d - mean)
	}
	std := math.Sqrt(ss / float64(len(diffs)-1))
	if std == 0 || math.IsNaN(std) {
		return 0
	}
	return math.Sqrt(periodsPerYear) * mean / std
}

// MaxDrawdown returns the deepest fall below the running peak, as a
// non-positive number.
func MaxDrawdown(cumulative []float64) float64 {
	if len(cumulative) == 0 {
		return 0
	}
	peak := cumulative[0]
	worst := 0.0
	for _, v := range cumulative {
		if v > peak {
			peak = v
		}
		if dd := v - peak; dd < worst {
			worst = dd
		}
	}
	return worst
}
