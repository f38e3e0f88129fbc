package indicators

import (
	"QuantSignal/internal/domain/models"
	qm "QuantSignal/pkg/quantmath"
)

func newVWAP(vwap, price float64) models.VWAPResult {
	if vwap <= 0 || price <= 0 {
		return models.VWAPResult{Position: models.VWAPAt}
	}
	dev := (price - vwap) / vwap * 100
	pos := models.VWAPAt
	switch {
	case dev > 0.5:
		pos = models.VWAPAbove
	case dev < -0.5:
		pos = models.VWAPBelow
	}
	return models.VWAPResult{
		VWAP:         qm.Round4(vwap),
		DeviationPct: qm.Round2(dev),
		Position:     pos,
	}
}

// VWAP weights the typical price of each bar by its volume. Empty input or zero total
// volume yields 0.
func VWAP(highs, lows, closes, volumes []float64) models.VWAPResult {
	n := len(closes)
	if n == 0 || !sameLen(n, highs, lows, volumes) {
		return newVWAP(0, 0)
	}
	pv, vol := 0.0, 0.0
	for i := 0; i < n; i++ {
		if volumes[i] <= 0 {
			continue
		}
		pv += typicalPrice(highs[i], lows[i], closes[i]) * volumes[i]
		vol += volumes[i]
	}
	return newVWAP(qm.SafeDiv(pv, vol), last(closes))
}

// VWAPSnapshot treats the whole 24h session as one bar.
func VWAPSnapshot(p models.PricePoint) models.VWAPResult {
	if !snapshotRange(p) || p.Volume24h <= 0 {
		return newVWAP(0, 0)
	}
	return newVWAP(typicalPrice(p.High24h, p.Low24h, p.Price), p.Price)
}

// ClassifyVolumeROC buckets a volume rate of change in percent.
func ClassifyVolumeROC(roc float64) models.VolumeTrend {
	switch {
	case roc > 50:
		return models.VolumeSurging
	case roc > 10:
		return models.VolumeRising
	case roc >= -10:
		return models.VolumeStable
	case roc >= -50:
		return models.VolumeFalling
	default:
		return models.VolumeCollapsing
	}
}

// VolumeROC compares the last volume against the one period bars earlier.
func VolumeROC(volumes []float64, period int) models.VolumeROCResult {
	if period <= 0 {
		period = DefaultVolumeROCPeriod
	}
	n := len(volumes)
	if n < period+1 {
		return models.VolumeROCResult{Trend: models.VolumeStable}
	}
	roc := qm.PctChange(volumes[n-1-period], volumes[n-1])
	return models.VolumeROCResult{ROC: qm.Round2(roc), Trend: ClassifyVolumeROC(roc)}
}
