package indicators

import (
	"QuantSignal/internal/domain/models"
	qm "QuantSignal/pkg/quantmath"
)

// LinearRegression fits y = slope*x + intercept over x = 0..n-1.
// SlopePct is the slope relative to the mean level; |SlopePct| <= 0.1 reads as FLAT.
func LinearRegression(values []float64) models.RegressionResult {
	n := len(values)
	if n < 2 {
		return models.RegressionResult{Trend: models.RegressionFlat}
	}
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = float64(i)
	}
	slope := qm.SafeDiv(qm.Covariance(xs, values), qm.Variance(xs))
	meanY := qm.Mean(values)
	intercept := meanY - slope*qm.Mean(xs)
	r := qm.Correlation(xs, values)
	slopePct := qm.SafeDiv(slope, meanY) * 100

	trend := models.RegressionFlat
	switch {
	case slopePct > 0.1:
		trend = models.RegressionUp
	case slopePct < -0.1:
		trend = models.RegressionDown
	}
	return models.RegressionResult{
		Slope:     qm.Round4(slope),
		Intercept: qm.Round4(intercept),
		RSquared:  qm.Round4(r * r),
		SlopePct:  qm.Round4(slopePct),
		Trend:     trend,
	}
}

// RegressionSnapshot fits the two-point line from the implied 24h open to price.
func RegressionSnapshot(p models.PricePoint) models.RegressionResult {
	if p.Price <= 0 {
		return models.RegressionResult{Trend: models.RegressionFlat}
	}
	return LinearRegression([]float64{openFromChange(p), p.Price})
}

// ClassifyZScore buckets a z-score.
func ClassifyZScore(z float64) models.ZScoreLevel {
	switch {
	case z < -2:
		return models.ZExtremeLow
	case z < -1:
		return models.ZLow
	case z <= 1:
		return models.ZNormal
	case z <= 2:
		return models.ZHigh
	default:
		return models.ZExtremeHigh
	}
}

func newZScore(z float64) models.ZScoreResult {
	return models.ZScoreResult{Value: qm.Round4(z), Level: ClassifyZScore(z)}
}

// ZScore measures price against the last window closes.
func ZScore(price float64, closes []float64, window int) models.ZScoreResult {
	if window <= 0 {
		window = DefaultZScoreWindow
	}
	return newZScore(qm.ZScore(price, tail(closes, window)))
}

// ZScoreSnapshot uses the typical price as mean and a quarter of the 24h range as deviation.
func ZScoreSnapshot(p models.PricePoint) models.ZScoreResult {
	if !snapshotRange(p) {
		return newZScore(0)
	}
	mean := typicalPrice(p.High24h, p.Low24h, p.Price)
	sd := (p.High24h - p.Low24h) / 4
	return newZScore(qm.SafeDiv(p.Price-mean, sd))
}

// ClassifyCorrelation buckets a Pearson coefficient.
func ClassifyCorrelation(r float64) models.CorrelationStrength {
	switch {
	case r <= -0.7:
		return models.CorrStrongNegative
	case r <= -0.3:
		return models.CorrNegative
	case r < 0.3:
		return models.CorrNone
	case r < 0.7:
		return models.CorrPositive
	default:
		return models.CorrStrongPositive
	}
}

// Correlation relates asset returns to benchmark returns, tail-aligned.
// StdDev is the standard deviation of the asset returns in percent.
func Correlation(assetReturns, benchmarkReturns []float64) models.CorrelationResult {
	r := qm.Correlation(assetReturns, benchmarkReturns)
	return models.CorrelationResult{
		Correlation: qm.Round4(r),
		Covariance:  qm.Round(qm.Covariance(assetReturns, benchmarkReturns), 8),
		StdDev:      qm.Round4(qm.StdDev(assetReturns) * 100),
		Strength:    ClassifyCorrelation(r),
	}
}

// Agreement is the percentage of directional votes held by the majority side.
// Neutral votes count toward the total but never toward a side. No votes yields 0.
func Agreement(votes ...models.Direction) float64 {
	if len(votes) == 0 {
		return 0
	}
	bull, bear := 0, 0
	for _, v := range votes {
		switch v {
		case models.DirectionBullish:
			bull++
		case models.DirectionBearish:
			bear++
		}
	}
	majority := bull
	if bear > majority {
		majority = bear
	}
	return float64(majority) / float64(len(votes)) * 100
}

// ClassifyNoise buckets a noise score.
func ClassifyNoise(score float64) models.Severity {
	switch {
	case score < 30:
		return models.SeverityLow
	case score < 55:
		return models.SeverityModerate
	case score < 75:
		return models.SeverityHigh
	default:
		return models.SeverityExtreme
	}
}

// NoiseScore blends weak trend (100-ADX), ATR extremity (ATR% * 20, so 5% saturates)
// and indicator disagreement (100-agreement) with weights 40/30/30. Higher is noisier.
func NoiseScore(adx, atrPct, agreement float64) models.NoiseResult {
	adxPart := 100 - qm.Clamp100(adx)
	atrPart := qm.Clamp100(atrPct * 20)
	disagreement := 100 - qm.Clamp100(agreement)
	score := qm.Clamp100(0.4*adxPart + 0.3*atrPart + 0.3*disagreement)
	return models.NoiseResult{
		Score:        qm.Round2(score),
		ADXComponent: qm.Round2(adxPart),
		ATRComponent: qm.Round2(atrPart),
		Agreement:    qm.Round2(qm.Clamp100(agreement)),
		Level:        ClassifyNoise(score),
	}
}
