package emistat

import (
	"math"
	"sort"
)

// mean returns the arithmetic mean of values, 0 for an empty slice.
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stdDev computes the standard deviation of values under the given mode.
// Sample mode needs at least two values; both modes return 0 when
// undefined.
func stdDev(values []float64, mode StdDevMode) float64 {
	n := len(values)
	if n == 0 || (mode == StdDevSample && n < 2) {
		return 0
	}
	m := mean(values)
	var ss float64
	for _, v := range values {
		d := v - m
		ss += d * d
	}
	if mode == StdDevSample {
		return math.Sqrt(ss / float64(n-1))
	}
	return math.Sqrt(ss / float64(n))
}

// percentile computes the p-th percentile (0..1) of values using the
// continuous (linearly interpolated) definition used by common statistical
// libraries. The input is not modified.
func percentile(values []float64, p float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	pos := p * float64(n-1)
	lower := int(math.Floor(pos))
	frac := pos - float64(lower)
	if lower+1 >= n {
		return sorted[n-1]
	}
	return sorted[lower] + frac*(sorted[lower+1]-sorted[lower])
}

// median is the interpolated 50th percentile.
func median(values []float64) float64 {
	return percentile(values, 0.5)
}

// decadeOf buckets a year into its decade with floor semantics:
// 1949 belongs to 1940, -5 belongs to -10.
func decadeOf(year int) int {
	d := year / 10
	if year%10 != 0 && year < 0 {
		d--
	}
	return d * 10
}
