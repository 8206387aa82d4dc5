package metrics

import (
	"math"
	"slices"
)

// Mean averages a sample, undefined for an empty one.
func Mean(values []float64) Scalar {
	if len(values) == 0 {
		return NoData()
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return ScalarOf(sum / float64(len(values)))
}

// Median finds the median of a sample, undefined for an empty one.
func Median(values []float64) Scalar {
	if len(values) == 0 {
		return NoData()
	}

	// Work on a copy to avoid mutating the original
	temp := make([]float64, len(values))
	copy(temp, values)
	slices.Sort(temp)

	n := len(temp)
	if n%2 == 1 {
		return ScalarOf(temp[n/2])
	}
	return ScalarOf((temp[n/2-1] + temp[n/2]) / 2.0)
}

// Round1 rounds to one decimal place, for display-facing aggregates.
func Round1(value float64) float64 {
	return math.Round(value*10) / 10
}
