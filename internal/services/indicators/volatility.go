package indicators

import (
	"math"

	"QuantSignal/internal/domain/models"
	qm "QuantSignal/pkg/quantmath"

	talib "github.com/markcheno/go-talib"
)

// garmanKlassK is 2*ln(2) - 1.
const garmanKlassK = 2*math.Ln2 - 1

// ClassifyBandWidth buckets a normalised band width (upper-lower)/middle.
func ClassifyBandWidth(width float64) models.BandWidthLevel {
	switch {
	case width < 0.05:
		return models.WidthTight
	case width < 0.10:
		return models.WidthModerate
	case width < 0.20:
		return models.WidthNormal
	default:
		return models.WidthWide
	}
}

func classifyBandPosition(pb float64) models.BandPosition {
	switch {
	case pb > 1:
		return models.BandAboveUpper
	case pb >= 0.5:
		return models.BandUpperHalf
	case pb >= 0:
		return models.BandLowerHalf
	default:
		return models.BandBelowLower
	}
}

func newBollinger(upper, middle, lower, price float64) models.BollingerResult {
	width := qm.SafeDiv(upper-lower, middle)
	pb := 0.5
	if upper > lower {
		pb = (price - lower) / (upper - lower)
	}
	return models.BollingerResult{
		Upper:     qm.Round4(upper),
		Middle:    qm.Round4(middle),
		Lower:     qm.Round4(lower),
		Width:     qm.Round4(width),
		PercentB:  qm.Round4(pb),
		Position:  classifyBandPosition(pb),
		WidthBand: ClassifyBandWidth(width),
	}
}

// neutralBollinger collapses the bands onto price with a NORMAL width so that
// missing data never reads as a squeeze.
func neutralBollinger(price float64) models.BollingerResult {
	return models.BollingerResult{
		Upper:     qm.Round4(price),
		Middle:    qm.Round4(price),
		Lower:     qm.Round4(price),
		PercentB:  0.5,
		Position:  models.BandUpperHalf,
		WidthBand: models.WidthNormal,
	}
}

// Bollinger computes rolling SMA +/- k standard deviations. It needs period closes.
func Bollinger(closes []float64, period int, k float64) models.BollingerResult {
	if period <= 0 {
		period = DefaultBollingerPeriod
	}
	if k <= 0 {
		k = DefaultBollingerK
	}
	if len(closes) < period {
		return neutralBollinger(last(closes))
	}
	upper, middle, lower := talib.BBands(closes, period, k, k, talib.SMA)
	return newBollinger(last(upper), last(middle), last(lower), last(closes))
}

// BollingerSnapshot builds bands around the 24h typical price, using a quarter of the
// 24h range as the standard deviation proxy.
func BollingerSnapshot(p models.PricePoint, k float64) models.BollingerResult {
	if k <= 0 {
		k = DefaultBollingerK
	}
	if !snapshotRange(p) {
		return neutralBollinger(p.Price)
	}
	middle := typicalPrice(p.High24h, p.Low24h, p.Price)
	sigma := (p.High24h - p.Low24h) / 4
	return newBollinger(middle+k*sigma, middle, middle-k*sigma, p.Price)
}

// Squeeze flags TIGHT or MODERATE bands and a breakout when %B sits in the outer fifth.
// Confidence runs from 50 at width 0.10 to 100 at width 0.
func Squeeze(b models.BollingerResult) models.SqueezeResult {
	res := models.SqueezeResult{
		Width:    b.Width,
		Level:    b.WidthBand,
		Breakout: models.BiasNone,
	}
	res.IsSqueeze = b.WidthBand == models.WidthTight || b.WidthBand == models.WidthModerate
	if !res.IsSqueeze {
		return res
	}
	switch {
	case b.PercentB >= 0.8:
		res.Breakout = models.BiasBullish
	case b.PercentB <= 0.2:
		res.Breakout = models.BiasBearish
	default:
		return res
	}
	res.Confidence = qm.Round2(qm.Clamp100(50 + (0.10-b.Width)*500))
	return res
}

// ClassifyVolatility buckets annualised volatility in percent.
func ClassifyVolatility(annualPct float64) models.VolatilityLevel {
	switch {
	case annualPct < 10:
		return models.VolVeryLow
	case annualPct < 20:
		return models.VolLow
	case annualPct < 40:
		return models.VolModerate
	case annualPct < 60:
		return models.VolHigh
	default:
		return models.VolExtreme
	}
}

// GarmanKlass estimates volatility from OHLC bars:
//
//	sigma^2 = mean( 0.5*ln(H/L)^2 - (2ln2-1)*ln(C/O)^2 )
//
// annualised as sqrt(sigma^2)*sqrt(factor)*100. Bars with a non-positive price are
// skipped; fewer than 30 usable bars yields a zero result.
func GarmanKlass(opens, highs, lows, closes []float64, factor float64) models.GarmanKlassResult {
	if factor <= 0 {
		factor = DefaultAnnualization
	}
	insufficient := models.GarmanKlassResult{Level: ClassifyVolatility(0)}
	n := len(closes)
	if n < MinGarmanKlassBars || !sameLen(n, opens, highs, lows) {
		return insufficient
	}

	sum := 0.0
	used := 0
	for i := 0; i < n; i++ {
		o, h, l, c := opens[i], highs[i], lows[i], closes[i]
		if o <= 0 || h <= 0 || l <= 0 || c <= 0 {
			continue
		}
		hl := math.Log(h / l)
		co := math.Log(c / o)
		sum += 0.5*hl*hl - garmanKlassK*co*co
		used++
	}
	if used < MinGarmanKlassBars {
		return insufficient
	}

	variance := sum / float64(used)
	if variance < 0 {
		variance = 0
	}
	daily := math.Sqrt(variance)
	annual := daily * math.Sqrt(factor) * 100
	return models.GarmanKlassResult{
		DailyVol:      qm.Round4(daily),
		AnnualizedVol: qm.Round2(annual),
		Level:         ClassifyVolatility(annual),
		Sufficient:    true,
	}
}

// ATR returns the average true range and its size relative to the last close.
func ATR(highs, lows, closes []float64, period int) models.ATRResult {
	if period <= 0 {
		period = DefaultATRPeriod
	}
	n := len(closes)
	if n < period+1 || !sameLen(n, highs, lows) {
		return models.ATRResult{}
	}
	atr := last(talib.Atr(highs, lows, closes, period))
	return models.ATRResult{
		ATR:    qm.Round4(atr),
		ATRPct: qm.Round4(qm.SafeDiv(atr, last(closes)) * 100),
	}
}

// ATRSnapshot uses the 24h range as a single true range.
func ATRSnapshot(p models.PricePoint) models.ATRResult {
	if !snapshotRange(p) {
		return models.ATRResult{}
	}
	atr := p.High24h - p.Low24h
	return models.ATRResult{ATR: qm.Round4(atr), ATRPct: qm.Round4(atr / p.Price * 100)}
}
