package scoring

import (
	"testing"

	"QuantSignal/internal/domain/models"

	"github.com/stretchr/testify/assert"
)

func bullishFormulas() models.FormulaResults {
	return models.FormulaResults{
		ADX:            models.ADXResult{ADX: 40, Direction: models.DirectionBullish},
		RSI:            models.RSIResult{Value: 70},
		Divergence:     models.DivergenceResult{HasDivergence: true, Type: models.BiasBullish, Strength: 50},
		MACD:           models.MACDResult{Trend: models.DirectionBullish},
		Bollinger:      models.BollingerResult{PercentB: 0.9},
		PercentB:       models.PercentBResult{Value: 0.9},
		BandWidth:      models.BandWidthResult{Level: models.WidthTight},
		DistanceFromMA: models.DistanceResult{Percent: 4},
		Keltner:        models.KeltnerResult{Level: models.KeltnerNormal},
		ATR:            models.ATRResult{ATRPct: 4},
		Noise:          models.NoiseResult{Score: 20},
	}
}

func TestMomentum(t *testing.T) {
	s := NewScorer()
	got := s.Momentum(bullishFormulas())
	// (40*30 + 50*20 + 100*25 + 80*25) / 100
	assert.Equal(t, 67.0, got.Score)
	assert.Equal(t, 40.0, got.Components.RSI)
	assert.Equal(t, 50.0, got.Components.Divergence)
	assert.Equal(t, 100.0, got.Components.MACD)
	assert.Equal(t, 80.0, got.Components.ADX)

	neutral := s.Momentum(models.FormulaResults{RSI: models.RSIResult{Value: 50}})
	assert.Equal(t, 0.0, neutral.Score)

	staleDivergence := bullishFormulas()
	staleDivergence.Divergence.HasDivergence = false
	assert.Equal(t, 0.0, s.Momentum(staleDivergence).Components.Divergence)
}

func TestMomentumBounded(t *testing.T) {
	s := NewScorer()
	extreme := models.FormulaResults{
		ADX:        models.ADXResult{ADX: 100, Direction: models.DirectionBearish},
		RSI:        models.RSIResult{Value: -40},
		Divergence: models.DivergenceResult{HasDivergence: true, Type: models.BiasBearish, Strength: 400},
		MACD:       models.MACDResult{Trend: models.DirectionBearish},
	}
	assert.Equal(t, -100.0, s.Momentum(extreme).Score)
}

func TestMeanReversion(t *testing.T) {
	s := NewScorer()
	got := s.MeanReversion(bullishFormulas())
	// (80*30 + 100*25 + 20*25 + 40*20) / 100
	assert.Equal(t, 62.0, got.Score)
	assert.Equal(t, models.ReversionSell, got.Direction)
	assert.Equal(t, -62.0, got.Signed())

	outside := models.FormulaResults{
		PercentB:       models.PercentBResult{Value: -0.2},
		DistanceFromMA: models.DistanceResult{Percent: -30},
		BandWidth:      models.BandWidthResult{Level: models.WidthTight},
		Keltner:        models.KeltnerResult{Level: models.KeltnerVeryLow},
	}
	full := s.MeanReversion(outside)
	assert.Equal(t, 100.0, full.Score)
	assert.Equal(t, models.ReversionBuy, full.Direction)
}

func TestReversionDirection(t *testing.T) {
	tests := []struct {
		pb, dist float64
		want     models.ReversionDirection
	}{
		{0.19, 0, models.ReversionBuy},
		{0.5, -5.01, models.ReversionBuy},
		{0.81, 0, models.ReversionSell},
		{0.5, 5.01, models.ReversionSell},
		{0.2, -5, models.ReversionNeutral},
		{0.8, 5, models.ReversionNeutral},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ReversionDirection(tt.pb, tt.dist), "pb=%v dist=%v", tt.pb, tt.dist)
	}
}

func TestVolatility(t *testing.T) {
	s := NewScorer()

	snap := s.Volatility(bullishFormulas(), models.ModeSnapshot)
	// (80*30 + 40*40 + 20*30) / 100
	assert.Equal(t, 46.0, snap.Score)
	assert.Equal(t, models.SeverityModerate, snap.Level)

	series := bullishFormulas()
	series.GarmanKlass = models.GarmanKlassResult{AnnualizedVol: 90, Sufficient: true}
	got := s.Volatility(series, models.ModeSeries)
	assert.Equal(t, 90.0, got.Components.NormalizedVol)
	assert.Equal(t, 67.0, got.Score)
	assert.Equal(t, models.SeverityHigh, got.Level)

	calm := s.Volatility(models.FormulaResults{RSI: models.RSIResult{Value: 50}, Bollinger: models.BollingerResult{PercentB: 0.5}}, models.ModeSnapshot)
	assert.Equal(t, 0.0, calm.Score)
	assert.Equal(t, models.SeverityLow, calm.Level)

	assert.Equal(t, models.SeverityExtreme, ClassifyVolatilityScore(75))
}

func TestQuality(t *testing.T) {
	s := NewScorer()
	assert.Equal(t, 100.0, s.Quality(0, -100, 100))
	assert.Equal(t, 0.0, s.Quality(100, 0, 0))
	assert.Equal(t, 72.5, s.Quality(20, 67, 62))

	got := Round(s.Score(bullishFormulas(), models.ModeSnapshot))
	assert.Equal(t, 72.5, got.OverallQuality)
}

func TestScoreKeepsFullPrecision(t *testing.T) {
	s := NewScorer()
	f := models.FormulaResults{RSI: models.RSIResult{Value: 50.333}, Bollinger: models.BollingerResult{PercentB: 0.5}}

	raw := s.Score(f, models.ModeSnapshot)
	rounded := Round(raw)
	assert.NotEqual(t, raw.Momentum.Score, rounded.Momentum.Score)
	assert.InDelta(t, raw.Momentum.Score, rounded.Momentum.Score, 0.005)
	assert.Equal(t, s.Momentum(f), rounded.Momentum)
	assert.Equal(t, s.Volatility(f, models.ModeSnapshot), rounded.Volatility)
	assert.Equal(t, ClassifyVolatilityScore(rounded.Volatility.Score), rounded.Volatility.Level)
}

func TestWithWeightsFallsBackOnEmptyGroups(t *testing.T) {
	w := DefaultWeights()
	w.Momentum = MomentumWeights{}
	w.Volatility = VolatilityWeights{RSIExtremity: 1}
	s := NewScorer(WithWeights(w))
	assert.Equal(t, DefaultWeights().Momentum, s.Weights().Momentum)
	assert.Equal(t, VolatilityWeights{RSIExtremity: 1}, s.Weights().Volatility)

	got := s.Volatility(bullishFormulas(), models.ModeSnapshot)
	assert.Equal(t, 40.0, got.Score)
}
