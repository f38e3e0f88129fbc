package quantmath

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStdDev(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{name: "empty", values: nil, want: 0},
		{name: "constant series is exactly zero", values: []float64{7, 7, 7, 7}, want: 0},
		{name: "inexact constant series is exactly zero", values: []float64{0.1, 0.1, 0.1}, want: 0},
		{name: "population", values: []float64{2, 4, 4, 4, 5, 5, 7, 9}, want: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StdDev(tt.values))
		})
	}
}

func TestCorrelationAndCovarianceDegenerate(t *testing.T) {
	flat := []float64{3, 3, 3, 3}
	moving := []float64{1, 2, 3, 4}

	assert.Equal(t, 0.0, Correlation(flat, moving))
	assert.Equal(t, 0.0, Covariance(flat, moving))
	assert.Equal(t, 0.0, Correlation(nil, moving))
	assert.Equal(t, 0.0, ZScore(5, flat))

	inexact := []float64{0.1, 0.1, 0.1}
	assert.Equal(t, 0.0, Variance(inexact))
	assert.Equal(t, 0.0, ZScore(0.2, inexact))
	assert.Equal(t, 0.0, Covariance(inexact, moving))
	assert.Equal(t, 0.0, Correlation(moving, inexact))
}

func TestCorrelationPerfect(t *testing.T) {
	a := []float64{1, 2, 3, 4, 5}
	b := []float64{2, 4, 6, 8, 10}
	assert.InDelta(t, 1.0, Correlation(a, b), 1e-12)

	inv := []float64{10, 8, 6, 4, 2}
	assert.InDelta(t, -1.0, Correlation(a, inv), 1e-12)
}

func TestCorrelationTailAligned(t *testing.T) {
	a := []float64{100, 1, 2, 3}
	b := []float64{2, 4, 6}
	assert.InDelta(t, 1.0, Correlation(a, b), 1e-12)
}

func TestPercentile(t *testing.T) {
	values := []float64{5, 1, 4, 2, 3}

	assert.Equal(t, 0.0, Percentile(nil, 50))
	assert.Equal(t, 0.0, Median([]float64{}))
	assert.Equal(t, 3.0, Median(values))
	assert.Equal(t, 1.0, Percentile(values, 0))
	assert.Equal(t, 5.0, Percentile(values, 100))
	assert.InDelta(t, 1.2, Percentile(values, 5), 1e-12)
	// input must not be reordered
	assert.Equal(t, []float64{5, 1, 4, 2, 3}, values)
}

func TestClampAndNormalize(t *testing.T) {
	assert.Equal(t, 0.0, Clamp(math.NaN(), 0, 100))
	assert.Equal(t, 100.0, Clamp100(140))
	assert.Equal(t, -100.0, Clamp(-250, -100, 100))
	assert.Equal(t, 50.0, Normalize(5, 0, 10))
	assert.Equal(t, 0.0, Normalize(5, 10, 10))
}

func TestReturns(t *testing.T) {
	prices := []float64{100, 110, 0, 121}

	simple := SimpleReturns(prices)
	assert.Len(t, simple, 3)
	assert.InDelta(t, 0.1, simple[0], 1e-12)
	assert.Equal(t, 0.0, simple[1])
	assert.Equal(t, 0.0, simple[2])

	logs := LogReturns([]float64{100, 100 * math.E})
	assert.InDelta(t, 1.0, logs[0], 1e-12)
	assert.Nil(t, LogReturns([]float64{1}))
}

func TestRound(t *testing.T) {
	assert.Equal(t, 1.24, Round2(1.235))
	assert.Equal(t, -1.24, Round2(-1.235))
	assert.Equal(t, 0.1235, Round4(0.12345))
	assert.Equal(t, 0.0, Round2(math.Inf(1)))
}

func TestEMAAlpha(t *testing.T) {
	assert.InDelta(t, 2.0/15.0, EMAAlpha(14), 1e-12)
	assert.Equal(t, 1.0, EMAAlpha(0))
}
