package indicators

import (
	"QuantSignal/internal/domain/models"
	qm "QuantSignal/pkg/quantmath"

	talib "github.com/markcheno/go-talib"
)

// ClassifyPercentB buckets %B; anything outside [0,1] is a band breach.
func ClassifyPercentB(pb float64) models.PercentBZone {
	switch {
	case pb < 0:
		return models.PercentBBelowBand
	case pb < 0.2:
		return models.PercentBOversold
	case pb <= 0.8:
		return models.PercentBNeutral
	case pb <= 1:
		return models.PercentBOverbought
	default:
		return models.PercentBAboveBand
	}
}

// PercentB reads the price position out of an already computed band.
func PercentB(b models.BollingerResult) models.PercentBResult {
	return models.PercentBResult{
		Value:  b.PercentB,
		Zone:   ClassifyPercentB(b.PercentB),
		Breach: b.PercentB < 0 || b.PercentB > 1,
	}
}

// BandWidth reads the normalised width out of an already computed band.
func BandWidth(b models.BollingerResult) models.BandWidthResult {
	return models.BandWidthResult{Value: b.Width, Level: b.WidthBand}
}

// ClassifyDistance buckets the percent distance of price from its moving average.
func ClassifyDistance(pct float64) models.DistanceLevel {
	switch {
	case pct < -10:
		return models.DistanceFarBelow
	case pct < -5:
		return models.DistanceBelow
	case pct <= 5:
		return models.DistanceNear
	case pct <= 10:
		return models.DistanceAbove
	default:
		return models.DistanceFarAbove
	}
}

// DistanceFromMA returns (price-ma)/ma in percent. A non-positive average reads as NEAR.
func DistanceFromMA(price, ma float64) models.DistanceResult {
	if ma <= 0 || price <= 0 {
		return models.DistanceResult{Level: models.DistanceNear}
	}
	pct := (price - ma) / ma * 100
	return models.DistanceResult{
		MovingAverage: qm.Round4(ma),
		Percent:       qm.Round2(pct),
		Level:         ClassifyDistance(pct),
	}
}

// ClassifyKeltnerWidth buckets the normalised Keltner channel width.
func ClassifyKeltnerWidth(width float64) models.KeltnerLevel {
	switch {
	case width < 0.05:
		return models.KeltnerVeryLow
	case width < 0.10:
		return models.KeltnerLow
	case width < 0.20:
		return models.KeltnerNormal
	default:
		return models.KeltnerHigh
	}
}

func newKeltner(middle, atr, mult float64) models.KeltnerResult {
	upper := middle + mult*atr
	lower := middle - mult*atr
	width := qm.SafeDiv(upper-lower, middle)
	return models.KeltnerResult{
		Upper:  qm.Round4(upper),
		Middle: qm.Round4(middle),
		Lower:  qm.Round4(lower),
		Width:  qm.Round4(width),
		Level:  ClassifyKeltnerWidth(width),
	}
}

func neutralKeltner(price float64) models.KeltnerResult {
	r := qm.Round4(price)
	return models.KeltnerResult{Upper: r, Middle: r, Lower: r, Level: models.KeltnerNormal}
}

// Keltner builds EMA(period) +/- mult*ATR(atrPeriod) channels.
func Keltner(highs, lows, closes []float64, period, atrPeriod int, mult float64) models.KeltnerResult {
	if period <= 0 {
		period = DefaultKeltnerPeriod
	}
	if atrPeriod <= 0 {
		atrPeriod = DefaultKeltnerATRPeriod
	}
	if mult <= 0 {
		mult = DefaultKeltnerMult
	}
	n := len(closes)
	if n < period || n < atrPeriod+1 || !sameLen(n, highs, lows) {
		return neutralKeltner(last(closes))
	}
	middle := last(talib.Ema(closes, period))
	atr := last(talib.Atr(highs, lows, closes, atrPeriod))
	return newKeltner(middle, atr, mult)
}

// KeltnerSnapshot centres on the typical price and uses the 24h range as ATR.
func KeltnerSnapshot(p models.PricePoint, mult float64) models.KeltnerResult {
	if mult <= 0 {
		mult = DefaultKeltnerMult
	}
	if !snapshotRange(p) {
		return neutralKeltner(p.Price)
	}
	return newKeltner(typicalPrice(p.High24h, p.Low24h, p.Price), p.High24h-p.Low24h, mult)
}
