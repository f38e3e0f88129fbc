package indicators

import (
	"math"

	"QuantSignal/internal/domain/models"
	qm "QuantSignal/pkg/quantmath"

	talib "github.com/markcheno/go-talib"
)

// ClassifyTrendStrength buckets an ADX reading.
func ClassifyTrendStrength(adx float64) models.TrendStrength {
	switch {
	case adx < 20:
		return models.TrendAbsent
	case adx < 25:
		return models.TrendWeak
	case adx < 40:
		return models.TrendStrong
	case adx < 50:
		return models.TrendVeryStrong
	default:
		return models.TrendExtreme
	}
}

// ClassifyDIDirection is BULLISH when +DI leads -DI by more than 5 points,
// BEARISH for the reverse, NEUTRAL otherwise.
func ClassifyDIDirection(plusDI, minusDI float64) models.Direction {
	switch {
	case plusDI-minusDI > 5:
		return models.DirectionBullish
	case minusDI-plusDI > 5:
		return models.DirectionBearish
	default:
		return models.DirectionNeutral
	}
}

func newADXResult(adx, plusDI, minusDI float64) models.ADXResult {
	adx = qm.Clamp100(adx)
	plusDI = qm.Clamp100(plusDI)
	minusDI = qm.Clamp100(minusDI)
	return models.ADXResult{
		ADX:       qm.Round2(adx),
		PlusDI:    qm.Round2(plusDI),
		MinusDI:   qm.Round2(minusDI),
		Strength:  ClassifyTrendStrength(adx),
		Direction: ClassifyDIDirection(plusDI, minusDI),
	}
}

// ADX computes Wilder's ADX with +DI/-DI. It needs 2*period+1 bars.
func ADX(highs, lows, closes []float64, period int) models.ADXResult {
	if period <= 0 {
		period = DefaultADXPeriod
	}
	n := len(closes)
	if n < 2*period+1 || !sameLen(n, highs, lows) {
		return newADXResult(0, 0, 0)
	}
	return newADXResult(
		last(talib.Adx(highs, lows, closes, period)),
		last(talib.PlusDI(highs, lows, closes, period)),
		last(talib.MinusDI(highs, lows, closes, period)),
	)
}

// ADXSnapshot approximates trend strength as the share of the 24h range covered by
// the 24h move, and the DI spread from the sign and size of that move.
func ADXSnapshot(p models.PricePoint) models.ADXResult {
	rng := p.RangePct()
	if !snapshotRange(p) || rng <= 0 {
		return newADXResult(0, 0, 0)
	}
	adx := math.Abs(p.PriceChangePct24h) / rng * 50
	plus := qm.Clamp100(50 + 2.5*p.PriceChangePct24h)
	return newADXResult(adx, plus, 100-plus)
}

func newSARResult(sar, price float64) models.SARResult {
	if sar <= 0 || price <= 0 {
		return models.SARResult{Trend: models.DirectionNeutral}
	}
	trend := models.DirectionNeutral
	switch {
	case price > sar:
		trend = models.DirectionBullish
	case price < sar:
		trend = models.DirectionBearish
	}
	return models.SARResult{
		SAR:         qm.Round4(sar),
		DistancePct: qm.Round2((price - sar) / price * 100),
		Trend:       trend,
	}
}

// ParabolicSAR returns the latest stop-and-reverse level. It needs 3 bars.
func ParabolicSAR(highs, lows, closes []float64, accel, maximum float64) models.SARResult {
	if accel <= 0 {
		accel = DefaultSARAcceleration
	}
	if maximum <= 0 {
		maximum = DefaultSARMaximum
	}
	n := len(closes)
	if n < 3 || !sameLen(n, highs, lows) {
		return newSARResult(0, 0)
	}
	return newSARResult(last(talib.Sar(highs, lows, accel, maximum)), last(closes))
}

// SARSnapshot places the stop at the 24h extreme opposite to the day's move.
func SARSnapshot(p models.PricePoint) models.SARResult {
	if !snapshotRange(p) {
		return newSARResult(0, 0)
	}
	if p.PriceChangePct24h >= 0 {
		return newSARResult(p.Low24h, p.Price)
	}
	return newSARResult(p.High24h, p.Price)
}

// Supertrend runs the ATR band ratchet over the series. It needs period+1 bars.
func Supertrend(highs, lows, closes []float64, period int, mult float64) models.SupertrendResult {
	if period <= 0 {
		period = DefaultSupertrendPeriod
	}
	if mult <= 0 {
		mult = DefaultSupertrendMult
	}
	n := len(closes)
	if n < period+1 || !sameLen(n, highs, lows) {
		return models.SupertrendResult{Trend: models.DirectionNeutral}
	}

	atr := talib.Atr(highs, lows, closes, period)

	var upper, lower float64
	trend := models.DirectionNeutral
	prevTrend := models.DirectionNeutral
	for i := period; i < n; i++ {
		hl2 := (highs[i] + lows[i]) / 2
		basicUpper := hl2 + mult*atr[i]
		basicLower := hl2 - mult*atr[i]

		if i == period {
			upper, lower = basicUpper, basicLower
			if closes[i] >= hl2 {
				trend = models.DirectionBullish
			} else {
				trend = models.DirectionBearish
			}
			prevTrend = trend
			continue
		}

		if basicUpper < upper || closes[i-1] > upper {
			upper = basicUpper
		}
		if basicLower > lower || closes[i-1] < lower {
			lower = basicLower
		}

		prevTrend = trend
		switch {
		case trend == models.DirectionBearish && closes[i] > upper:
			trend = models.DirectionBullish
		case trend == models.DirectionBullish && closes[i] < lower:
			trend = models.DirectionBearish
		}
	}

	value := lower
	if trend == models.DirectionBearish {
		value = upper
	}
	return models.SupertrendResult{
		Value:   qm.Round4(value),
		ATR:     qm.Round4(last(atr)),
		Trend:   trend,
		Flipped: trend != prevTrend,
	}
}

// SupertrendSnapshot treats the 24h range as a single-bar ATR.
func SupertrendSnapshot(p models.PricePoint, mult float64) models.SupertrendResult {
	if mult <= 0 {
		mult = DefaultSupertrendMult
	}
	if !snapshotRange(p) {
		return models.SupertrendResult{Trend: models.DirectionNeutral}
	}
	atr := p.High24h - p.Low24h
	hl2 := (p.High24h + p.Low24h) / 2
	if p.Price >= hl2 {
		return models.SupertrendResult{Value: qm.Round4(hl2 - mult*atr), ATR: qm.Round4(atr), Trend: models.DirectionBullish}
	}
	return models.SupertrendResult{Value: qm.Round4(hl2 + mult*atr), ATR: qm.Round4(atr), Trend: models.DirectionBearish}
}

// smaOrMean falls back to the mean of what is available when the window is longer than the series.
func smaOrMean(closes []float64, period int) float64 {
	if len(closes) < period {
		return qm.Mean(closes)
	}
	return last(talib.Sma(closes, period))
}

func emaOrMean(closes []float64, period int) float64 {
	if len(closes) < period {
		return qm.Mean(closes)
	}
	return last(talib.Ema(closes, period))
}

// MovingAverages reports SMA20/50 and EMA12/26 and their alignment with price.
func MovingAverages(closes []float64) models.MovingAverageResult {
	if len(closes) == 0 {
		return models.MovingAverageResult{Alignment: models.DirectionNeutral}
	}
	price := last(closes)
	sma20 := smaOrMean(closes, 20)
	sma50 := smaOrMean(closes, 50)

	align := models.DirectionNeutral
	switch {
	case price > sma20 && sma20 > sma50:
		align = models.DirectionBullish
	case price < sma20 && sma20 < sma50:
		align = models.DirectionBearish
	}
	return models.MovingAverageResult{
		SMA20:     qm.Round4(sma20),
		SMA50:     qm.Round4(sma50),
		EMA12:     qm.Round4(emaOrMean(closes, 12)),
		EMA26:     qm.Round4(emaOrMean(closes, 26)),
		Alignment: align,
	}
}

// MovingAveragesSnapshot uses the 24h typical price for every average, so alignment
// reduces to price versus typical price.
func MovingAveragesSnapshot(p models.PricePoint) models.MovingAverageResult {
	if !snapshotRange(p) {
		return models.MovingAverageResult{SMA20: p.Price, SMA50: p.Price, EMA12: p.Price, EMA26: p.Price, Alignment: models.DirectionNeutral}
	}
	tp := typicalPrice(p.High24h, p.Low24h, p.Price)
	align := models.DirectionNeutral
	switch {
	case p.Price > tp:
		align = models.DirectionBullish
	case p.Price < tp:
		align = models.DirectionBearish
	}
	r := qm.Round4(tp)
	return models.MovingAverageResult{SMA20: r, SMA50: r, EMA12: r, EMA26: r, Alignment: align}
}
