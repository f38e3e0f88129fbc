package quantmath

import (
	"math"

	"github.com/shopspring/decimal"
)

// SimpleReturns computes r_t = (P_t - P_{t-1}) / P_{t-1}.
// Non-positive prices contribute a 0 return. The result has len(prices)-1 entries.
func SimpleReturns(prices []float64) []float64 {
	if len(prices) < 2 {
		return nil
	}
	out := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		prev, cur := prices[i-1], prices[i]
		if prev <= 0 || cur <= 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, (cur-prev)/prev)
	}
	return out
}

// LogReturns computes r_t = ln(P_t / P_{t-1}).
func LogReturns(prices []float64) []float64 {
	if len(prices) < 2 {
		return nil
	}
	out := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		prev, cur := prices[i-1], prices[i]
		if prev <= 0 || cur <= 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, math.Log(cur/prev))
	}
	return out
}

// Round rounds x half away from zero to the given number of decimal places.
// Non-finite values round to 0.
func Round(x float64, places int) float64 {
	if !IsFinite(x) {
		return 0
	}
	return decimal.NewFromFloat(x).Round(int32(places)).InexactFloat64()
}

// Round2 rounds to 2 decimal places.
func Round2(x float64) float64 { return Round(x, 2) }

// Round4 rounds to 4 decimal places.
func Round4(x float64) float64 { return Round(x, 4) }
