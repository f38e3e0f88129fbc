package indicators

import (
	"math"

	"QuantSignal/internal/domain/models"
	qm "QuantSignal/pkg/quantmath"
)

// z-scores of the standard normal at 95%: quantile and expected shortfall multiplier.
const (
	normalQuantile95 = 1.6449
	normalES95       = 2.0627
)

// ClassifyBeta buckets systematic risk.
func ClassifyBeta(beta float64) models.BetaClass {
	switch {
	case beta < 0:
		return models.BetaInverse
	case beta < 0.8:
		return models.BetaDefensive
	case beta < 1.2:
		return models.BetaNeutral
	default:
		return models.BetaAggressive
	}
}

// Beta is Cov(asset, market) / Var(market) over the tail-aligned overlap.
// Without at least two points or with a flat market it assumes a market-neutral 1.
func Beta(assetReturns, marketReturns []float64) models.BetaResult {
	a, m := qm.TailAlign(assetReturns, marketReturns)
	mv := qm.Variance(m)
	if len(a) < 2 || mv == 0 {
		return models.BetaResult{Beta: 1, Classification: models.BetaNeutral}
	}
	beta := qm.Covariance(a, m) / mv
	return models.BetaResult{Beta: qm.Round4(beta), Classification: ClassifyBeta(beta)}
}

// ClassifyTailRisk buckets a one-period VaR in percent.
func ClassifyTailRisk(varPct float64) models.Severity {
	switch {
	case varPct < 2:
		return models.SeverityLow
	case varPct < 5:
		return models.SeverityModerate
	case varPct < 10:
		return models.SeverityHigh
	default:
		return models.SeverityExtreme
	}
}

// ValueAtRisk is historical VaR and CVaR at the given confidence, reported as positive
// loss percentages. CVaR averages every return at or below the VaR threshold.
func ValueAtRisk(returns []float64, confidence float64) models.VaRResult {
	if confidence <= 0 || confidence >= 1 {
		confidence = DefaultVaRConfidence
	}
	if len(returns) == 0 {
		return models.VaRResult{Level: ClassifyTailRisk(0)}
	}
	threshold := qm.Percentile(returns, (1-confidence)*100)

	tailSum, tailN := 0.0, 0
	for _, r := range returns {
		if r <= threshold {
			tailSum += r
			tailN++
		}
	}
	varPct := math.Max(0, -threshold) * 100
	cvarPct := varPct
	if tailN > 0 {
		cvarPct = math.Max(0, -tailSum/float64(tailN)) * 100
	}
	return models.VaRResult{
		VaR95:  qm.Round2(varPct),
		CVaR95: qm.Round2(cvarPct),
		Level:  ClassifyTailRisk(varPct),
	}
}

// ValueAtRiskSnapshot is a parametric estimate with a quarter of the 24h range as sigma.
func ValueAtRiskSnapshot(p models.PricePoint) models.VaRResult {
	sigma := p.RangePct() / 4
	if !snapshotRange(p) || sigma <= 0 {
		return models.VaRResult{Level: ClassifyTailRisk(0)}
	}
	v := normalQuantile95 * sigma
	return models.VaRResult{
		VaR95:  qm.Round2(v),
		CVaR95: qm.Round2(normalES95 * sigma),
		Level:  ClassifyTailRisk(v),
	}
}

// ClassifyDrawdown buckets a drawdown in percent.
func ClassifyDrawdown(ddPct float64) models.DrawdownLevel {
	switch {
	case ddPct < 10:
		return models.DrawdownLow
	case ddPct < 20:
		return models.DrawdownModerate
	case ddPct < 40:
		return models.DrawdownHigh
	default:
		return models.DrawdownSevere
	}
}

// MaxDrawdown finds the deepest peak-to-trough decline, as a positive percentage.
func MaxDrawdown(closes []float64) models.DrawdownResult {
	res := models.DrawdownResult{Level: models.DrawdownLow}
	if len(closes) < 2 {
		return res
	}
	peak, peakIdx := closes[0], 0
	maxDD := 0.0
	for i, c := range closes {
		if c > peak {
			peak, peakIdx = c, i
			continue
		}
		if peak <= 0 {
			continue
		}
		if dd := (peak - c) / peak * 100; dd > maxDD {
			maxDD = dd
			res.PeakIndex = peakIdx
			res.TroughIndex = i
		}
	}
	res.MaxDrawdown = qm.Round2(maxDD)
	res.Level = ClassifyDrawdown(maxDD)
	return res
}

// DrawdownSnapshot measures the distance below the all-time high.
func DrawdownSnapshot(p models.PricePoint) models.DrawdownResult {
	if p.ATH <= 0 || p.Price <= 0 || p.Price >= p.ATH {
		return models.DrawdownResult{Level: models.DrawdownLow}
	}
	dd := (p.ATH - p.Price) / p.ATH * 100
	return models.DrawdownResult{MaxDrawdown: qm.Round2(dd), Level: ClassifyDrawdown(dd)}
}

// ClassifyCalmar rates a Calmar ratio.
func ClassifyCalmar(ratio float64) models.CalmarRating {
	switch {
	case ratio < 0:
		return models.CalmarNegative
	case ratio < 0.5:
		return models.CalmarPoor
	case ratio < 1:
		return models.CalmarAcceptable
	case ratio < 3:
		return models.CalmarGood
	default:
		return models.CalmarExcellent
	}
}

// Calmar divides the annualised return (compounded over periodsPerYear) by the
// maximum drawdown. A series without drawdown reports a ratio of 0.
func Calmar(closes []float64, periodsPerYear float64) models.CalmarResult {
	if periodsPerYear <= 0 {
		periodsPerYear = DefaultAnnualization
	}
	n := len(closes)
	if n < 2 || closes[0] <= 0 || closes[n-1] <= 0 {
		return models.CalmarResult{Rating: ClassifyCalmar(0)}
	}
	years := float64(n-1) / periodsPerYear
	annual := finiteOr((math.Pow(closes[n-1]/closes[0], 1/years)-1)*100, 0)
	dd := MaxDrawdown(closes)
	ratio := qm.SafeDiv(annual, dd.MaxDrawdown)
	return models.CalmarResult{
		Ratio:            qm.Round4(ratio),
		AnnualizedReturn: qm.Round2(annual),
		MaxDrawdown:      dd.MaxDrawdown,
		Rating:           ClassifyCalmar(ratio),
	}
}
