// Package quantmath holds the statistical primitives shared by every indicator.
// All functions are total: empty or degenerate input yields 0 instead of NaN or Inf.
package quantmath

import (
	"math"
	"sort"
)

// Sum returns the sum of values.
func Sum(values []float64) float64 {
	s := 0.0
	for _, v := range values {
		s += v
	}
	return s
}

// Mean returns the arithmetic mean, or 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return Sum(values) / float64(len(values))
}

// Variance returns the population variance. A constant series returns exactly 0
// even when its values are not exact in binary floating point.
func Variance(values []float64) float64 {
	if isFlat(values) {
		return 0
	}
	m := Mean(values)
	ss := 0.0
	for _, v := range values {
		d := v - m
		ss += d * d
	}
	return ss / float64(len(values))
}

// SampleVariance returns the n-1 normalised variance.
func SampleVariance(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	return Variance(values) * float64(n) / float64(n-1)
}

// StdDev returns the population standard deviation.
func StdDev(values []float64) float64 {
	v := Variance(values)
	if v <= 0 {
		return 0
	}
	return math.Sqrt(v)
}

// Covariance returns the population covariance of the tail-aligned overlap of a and b.
func Covariance(a, b []float64) float64 {
	a, b = TailAlign(a, b)
	if isFlat(a) || isFlat(b) {
		return 0
	}
	ma, mb := Mean(a), Mean(b)
	s := 0.0
	for i := range a {
		s += (a[i] - ma) * (b[i] - mb)
	}
	return s / float64(len(a))
}

// Correlation returns the Pearson correlation of the tail-aligned overlap of a and b.
// Zero variance on either side yields 0.
func Correlation(a, b []float64) float64 {
	a, b = TailAlign(a, b)
	if len(a) < 2 {
		return 0
	}
	sa, sb := StdDev(a), StdDev(b)
	if sa == 0 || sb == 0 {
		return 0
	}
	return Clamp(Covariance(a, b)/(sa*sb), -1, 1)
}

// isFlat reports whether every value equals the first; empty input is flat.
func isFlat(values []float64) bool {
	for _, v := range values {
		if v != values[0] {
			return false
		}
	}
	return true
}

// TailAlign trims the longer slice so both end at the same (most recent) index.
func TailAlign(a, b []float64) ([]float64, []float64) {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	return a[len(a)-n:], b[len(b)-n:]
}

// Percentile returns the p-th percentile (0..100) using linear interpolation
// between closest ranks. Empty input returns 0.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	p = Clamp(p, 0, 100)
	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// Median is Percentile(values, 50).
func Median(values []float64) float64 {
	return Percentile(values, 50)
}

// ZScore returns how many standard deviations x sits from the mean of values.
func ZScore(x float64, values []float64) float64 {
	sd := StdDev(values)
	if sd == 0 {
		return 0
	}
	return (x - Mean(values)) / sd
}

// EMAAlpha returns the smoothing factor 2/(period+1).
func EMAAlpha(period int) float64 {
	if period <= 0 {
		return 1
	}
	return 2 / float64(period+1)
}

// Min returns the smallest value, or 0 for an empty slice.
func Min(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

// Max returns the largest value, or 0 for an empty slice.
func Max(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

// Clamp bounds x into [lo, hi]. NaN collapses to lo.
func Clamp(x, lo, hi float64) float64 {
	if math.IsNaN(x) || x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// Clamp100 bounds x into [0, 100].
func Clamp100(x float64) float64 { return Clamp(x, 0, 100) }

// Normalize maps x from [lo, hi] onto [0, 100].
func Normalize(x, lo, hi float64) float64 {
	if hi <= lo {
		return 0
	}
	return Clamp100((x - lo) / (hi - lo) * 100)
}

// SafeDiv returns a/b, or 0 when b is zero or the result is not finite.
func SafeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	r := a / b
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return r
}

// PctChange returns (to-from)/from*100.
func PctChange(from, to float64) float64 {
	return SafeDiv(to-from, from) * 100
}

// IsFinite reports whether x is neither NaN nor Inf.
func IsFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
