// Package indicators implements the technical and statistical formulas used by the
// signal engine. Every function is pure and total: too little data, zero
// denominators and misaligned arrays produce a documented neutral result, never an
// error. Series variants delegate the rolling kernels to go-talib once the input is
// long enough; Snapshot variants derive proxies from a single PricePoint.
package indicators

import (
	"QuantSignal/internal/domain/models"
	qm "QuantSignal/pkg/quantmath"
)

// Default windows.
const (
	DefaultADXPeriod        = 14
	DefaultRSIPeriod        = 14
	DefaultDivergenceWindow = 14
	DefaultBollingerPeriod  = 20
	DefaultBollingerK       = 2.0
	DefaultKeltnerPeriod    = 20
	DefaultKeltnerATRPeriod = 10
	DefaultKeltnerMult      = 2.0
	DefaultSupertrendPeriod = 10
	DefaultSupertrendMult   = 3.0
	DefaultATRPeriod        = 14
	DefaultSARAcceleration  = 0.02
	DefaultSARMaximum       = 0.2
	DefaultVolumeROCPeriod  = 14
	DefaultZScoreWindow     = 20
	DefaultVaRConfidence    = 0.95
	DefaultAnnualization    = 365.0

	MinGarmanKlassBars = 30

	macdFast   = 12
	macdSlow   = 26
	macdSignal = 9
)

func last(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return xs[len(xs)-1]
}

func tail(xs []float64, n int) []float64 {
	if n <= 0 || len(xs) <= n {
		return xs
	}
	return xs[len(xs)-n:]
}

func sameLen(n int, arrays ...[]float64) bool {
	for _, a := range arrays {
		if len(a) != n {
			return false
		}
	}
	return true
}

// typicalPrice is (high + low + close) / 3.
func typicalPrice(h, l, c float64) float64 {
	return (h + l + c) / 3
}

// snapshotRange reports whether a snapshot carries a usable high/low range.
func snapshotRange(p models.PricePoint) bool {
	return p.Price > 0 && p.High24h > p.Low24h && p.Low24h > 0
}

// openFromChange back-solves the 24h open from the current price and percent change.
func openFromChange(p models.PricePoint) float64 {
	d := 1 + p.PriceChangePct24h/100
	if d <= 0 {
		return p.Price
	}
	return p.Price / d
}

func finiteOr(x, fallback float64) float64 {
	if qm.IsFinite(x) {
		return x
	}
	return fallback
}
