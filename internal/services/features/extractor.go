package features

import (
	"time"

	"QuantSignal/internal/domain/models"
	domrepo "QuantSignal/internal/domain/repository"
	"QuantSignal/pkg/quantmath"
)

// SeriesFromCandles turns ascending candles into an OHLCV series. Every valid
// asset bar is kept. Benchmark closes are matched by bucket from the newest bar
// backwards and stop at the first gap, so Benchmark is tail-aligned with Close
// and may be shorter.
func SeriesFromCandles(asset, bench []models.Candle) *models.Series {
	if len(asset) == 0 {
		return nil
	}
	s := &models.Series{
		Open:   make([]float64, 0, len(asset)),
		High:   make([]float64, 0, len(asset)),
		Low:    make([]float64, 0, len(asset)),
		Close:  make([]float64, 0, len(asset)),
		Volume: make([]float64, 0, len(asset)),
	}
	buckets := make([]int64, 0, len(asset))
	for _, c := range asset {
		if !validCandle(c) {
			continue
		}
		s.Open = append(s.Open, c.Open)
		s.High = append(s.High, c.High)
		s.Low = append(s.Low, c.Low)
		s.Close = append(s.Close, c.Close)
		s.Volume = append(s.Volume, c.Volume)
		buckets = append(buckets, c.Bucket.Unix())
	}
	if s.Len() == 0 {
		return nil
	}
	s.Benchmark = tailMatched(buckets, bench)
	return s
}

// tailMatched returns bench closes for the longest run of trailing buckets
// that all have a usable benchmark bar, oldest first.
func tailMatched(buckets []int64, bench []models.Candle) []float64 {
	if len(bench) == 0 {
		return nil
	}
	closes := make(map[int64]float64, len(bench))
	for _, b := range bench {
		if quantmath.IsFinite(b.Close) && b.Close > 0 {
			closes[b.Bucket.Unix()] = b.Close
		}
	}
	n := 0
	for i := len(buckets) - 1; i >= 0; i-- {
		if _, ok := closes[buckets[i]]; !ok {
			break
		}
		n++
	}
	if n == 0 {
		return nil
	}
	out := make([]float64, n)
	for i, b := range buckets[len(buckets)-n:] {
		out[i] = closes[b]
	}
	return out
}

func validCandle(c models.Candle) bool {
	for _, v := range []float64{c.Open, c.High, c.Low, c.Close, c.Volume} {
		if !quantmath.IsFinite(v) {
			return false
		}
	}
	return c.Close > 0 && c.High >= c.Low
}

// Window returns the [from, to] range covering the last n bars ending at to,
// aligned to bar boundaries.
func Window(to time.Time, n int, tf domrepo.Timeframe) (time.Time, time.Time) {
	d := tf.Duration()
	if d <= 0 {
		d = domrepo.DefaultTimeframe().Duration()
	}
	to = to.Truncate(d)
	if n < 1 {
		n = 1
	}
	return to.Add(-time.Duration(n-1) * d), to
}
