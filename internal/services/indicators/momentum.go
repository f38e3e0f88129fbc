package indicators

import (
	"math"

	"QuantSignal/internal/domain/models"
	qm "QuantSignal/pkg/quantmath"

	talib "github.com/markcheno/go-talib"
)

const neutralRSI = 50.0

// ClassifyRSI buckets an RSI reading.
func ClassifyRSI(rsi float64) models.RSIZone {
	switch {
	case rsi < 20:
		return models.RSIExtremeOversold
	case rsi < 30:
		return models.RSIOversold
	case rsi <= 70:
		return models.RSINeutral
	case rsi <= 80:
		return models.RSIOverbought
	default:
		return models.RSIExtremeOverbought
	}
}

func newRSIResult(v float64) models.RSIResult {
	v = qm.Clamp100(v)
	return models.RSIResult{Value: qm.Round2(v), Zone: ClassifyRSI(v)}
}

// rsiSeries returns Wilder RSI aligned to closes. talib reports 0 for a window with
// no movement at all; those points are rewritten to the neutral 50.
func rsiSeries(closes []float64, period int) []float64 {
	out := talib.Rsi(closes, period)
	for i := period; i < len(out) && i < len(closes); i++ {
		if out[i] == 0 && flat(closes[i-period:i+1]) {
			out[i] = neutralRSI
		}
	}
	return out
}

func flat(xs []float64) bool {
	return len(xs) == 0 || qm.Max(xs) == qm.Min(xs)
}

// RSI computes Wilder's RSI. It needs period+1 closes, otherwise returns 50.
func RSI(closes []float64, period int) models.RSIResult {
	if period <= 0 {
		period = DefaultRSIPeriod
	}
	if len(closes) < period+1 {
		return newRSIResult(neutralRSI)
	}
	return newRSIResult(last(rsiSeries(closes, period)))
}

// RSISnapshot maps the 24h change onto the oscillator: each percent moves RSI by 2 points.
func RSISnapshot(p models.PricePoint) models.RSIResult {
	return newRSIResult(50 + 2*finiteOr(p.PriceChangePct24h, 0))
}

// RSIDivergence compares the direction of price against the direction of RSI over
// the lookback window. Moves smaller than 0.5% (price) or 1 point (RSI) are ignored.
// It needs period+lookback+1 closes.
func RSIDivergence(closes []float64, period, lookback int) models.DivergenceResult {
	if period <= 0 {
		period = DefaultRSIPeriod
	}
	if lookback <= 0 {
		lookback = DefaultDivergenceWindow
	}
	none := models.DivergenceResult{Type: models.BiasNone}
	n := len(closes)
	if n < period+lookback+1 {
		return none
	}

	rsi := rsiSeries(closes, period)
	end, start := n-1, n-1-lookback
	priceChg := qm.PctChange(closes[start], closes[end])
	rsiChg := rsi[end] - rsi[start]

	res := models.DivergenceResult{
		Type:           models.BiasNone,
		PriceChangePct: qm.Round2(priceChg),
		RSIChange:      qm.Round2(rsiChg),
	}
	if math.Abs(priceChg) < 0.5 || math.Abs(rsiChg) < 1 {
		return res
	}
	switch {
	case priceChg < 0 && rsiChg > 0:
		res.Type = models.BiasBullish
	case priceChg > 0 && rsiChg < 0:
		res.Type = models.BiasBearish
	default:
		return res
	}
	res.HasDivergence = true
	res.Strength = qm.Round2(qm.Clamp100(math.Abs(priceChg)*5 + math.Abs(rsiChg)))
	return res
}

// MACDTrend reports MACD(12,26,9) and the histogram sign. It needs 35 closes.
func MACDTrend(closes []float64) models.MACDResult {
	if len(closes) < macdSlow+macdSignal {
		return models.MACDResult{Trend: models.DirectionNeutral}
	}
	macd, signal, hist := talib.Macd(closes, macdFast, macdSlow, macdSignal)
	h := last(hist)
	trend := models.DirectionNeutral
	switch {
	case h > 0:
		trend = models.DirectionBullish
	case h < 0:
		trend = models.DirectionBearish
	}
	return models.MACDResult{
		MACD:      qm.Round4(last(macd)),
		Signal:    qm.Round4(last(signal)),
		Histogram: qm.Round4(h),
		Trend:     trend,
	}
}

// MACDSnapshot falls back to the sign of a 24h move larger than 1%.
func MACDSnapshot(p models.PricePoint) models.MACDResult {
	trend := models.DirectionNeutral
	switch {
	case p.PriceChangePct24h > 1:
		trend = models.DirectionBullish
	case p.PriceChangePct24h < -1:
		trend = models.DirectionBearish
	}
	return models.MACDResult{Trend: trend}
}
