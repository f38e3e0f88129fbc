package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"QuantSignal/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestAnalyzer() *QuantAnalyzer {
	return NewQuantAnalyzer(WithClock(func() time.Time { return fixedNow }))
}

func pricePoint(symbol string, price, chg float64) models.PricePoint {
	return models.PricePoint{
		Symbol:            symbol,
		Price:             price,
		High24h:           price * 1.05,
		Low24h:            price * 0.95,
		Volume24h:         1e6,
		PriceChangePct24h: chg,
		ATH:               price * 1.5,
		ATL:               price * 0.2,
	}
}

func waveSeries(n int) *models.Series {
	s := &models.Series{}
	for i := 0; i < n; i++ {
		c := 100 + float64(i)*0.5 + 3*math.Sin(float64(i)/3)
		s.Open = append(s.Open, c-0.4)
		s.High = append(s.High, c+1.5)
		s.Low = append(s.Low, c-1.5)
		s.Close = append(s.Close, c)
		s.Volume = append(s.Volume, 1000+50*math.Cos(float64(i)))
		s.Benchmark = append(s.Benchmark, 50+float64(i)*0.2+math.Sin(float64(i)/2))
	}
	return s
}

func assertBounded(t *testing.T, a *models.QuantitativeAnalysis) {
	t.Helper()
	assert.True(t, a.Signal.Valid(), "signal %q", a.Signal)
	assert.True(t, a.Risk.Level.Valid(), "risk level %q", a.Risk.Level)
	assert.GreaterOrEqual(t, a.Confidence, 0)
	assert.LessOrEqual(t, a.Confidence, 100)
	assert.GreaterOrEqual(t, a.RiskScore, 0)
	assert.LessOrEqual(t, a.RiskScore, 100)
	assert.InDelta(t, 0, a.Composite.Momentum.Score, 100)
	assert.InDelta(t, 0, a.Composite.MeanReversion.Signed(), 100)
	assert.InDelta(t, 50, a.Composite.Volatility.Score, 50)
	assert.InDelta(t, 50, a.Composite.OverallQuality, 50)
	assert.InDelta(t, 50, a.Formulas.RSI.Value, 50)
	assert.InDelta(t, 50, a.Formulas.ADX.ADX, 50)
	assert.InDelta(t, 0, a.CombinedScore, 100)
}

func TestAnalyzeSnapshot(t *testing.T) {
	q := newTestAnalyzer()
	in := models.AssetInput{Price: pricePoint("BTC", 100, 10)}

	got, err := q.Analyze(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "BTC", got.Symbol)
	assert.Equal(t, models.ModeSnapshot, got.Mode)
	assert.Equal(t, fixedNow, got.Timestamp)
	assert.Equal(t, models.DirectionBullish, got.Formulas.MACD.Trend)
	assert.Equal(t, 70.0, got.Formulas.RSI.Value)
	assert.Equal(t, 1.0, got.Formulas.Beta.Beta)
	assert.False(t, got.Formulas.GarmanKlass.Sufficient)
	assert.Equal(t, "Risk derived from technical indicators only", got.Risk.Explanation)
	assertBounded(t, got)
}

func TestAnalyzeIsIdempotent(t *testing.T) {
	q := newTestAnalyzer()
	inputs := []models.AssetInput{
		{Price: pricePoint("ETH", 2500, -4)},
		{Price: pricePoint("SOL", 150, 2), Series: waveSeries(80)},
	}
	for _, in := range inputs {
		first, err := q.Analyze(context.Background(), in)
		require.NoError(t, err)
		for i := 0; i < 5; i++ {
			again, err := q.Analyze(context.Background(), in)
			require.NoError(t, err)
			assert.Equal(t, first, again)
		}
	}
}

func TestAnalyzeSeries(t *testing.T) {
	q := newTestAnalyzer()
	ts := time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC)
	p := pricePoint("SOL", 140, 1)
	p.Timestamp = ts

	got, err := q.Analyze(context.Background(), models.AssetInput{Price: p, Series: waveSeries(80)})
	require.NoError(t, err)
	assert.Equal(t, models.ModeSeries, got.Mode)
	assert.Equal(t, ts, got.Timestamp)
	assert.True(t, got.Formulas.GarmanKlass.Sufficient)
	assert.NotZero(t, got.Formulas.VWAP.VWAP)
	assert.Greater(t, got.Formulas.Drawdown.MaxDrawdown, 0.0)
	assertBounded(t, got)

	short, err := q.Analyze(context.Background(), models.AssetInput{Price: p, Series: waveSeries(20)})
	require.NoError(t, err)
	assert.Equal(t, models.ModeSnapshot, short.Mode)
}

func TestAnalyzeRejectsMalformedInput(t *testing.T) {
	q := newTestAnalyzer()

	tests := []struct {
		name string
		in   models.AssetInput
		want error
	}{
		{name: "zero price", in: models.AssetInput{Price: pricePoint("X", 0, 0)}, want: ErrInvalidPrice},
		{name: "negative price", in: models.AssetInput{Price: pricePoint("X", -3, 0)}, want: ErrInvalidPrice},
		{name: "nan change", in: models.AssetInput{Price: pricePoint("X", 10, math.NaN())}, want: ErrInvalidPrice},
		{
			name: "misaligned series",
			in: func() models.AssetInput {
				s := waveSeries(40)
				s.High = s.High[:39]
				return models.AssetInput{Price: pricePoint("X", 10, 0), Series: s}
			}(),
			want: ErrSeriesMismatch,
		},
		{
			name: "non-finite series",
			in: func() models.AssetInput {
				s := waveSeries(40)
				s.Close[7] = math.Inf(1)
				return models.AssetInput{Price: pricePoint("X", 10, 0), Series: s}
			}(),
			want: ErrSeriesMismatch,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := q.Analyze(context.Background(), tt.in)
			assert.Nil(t, got)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestAnalyzeDefaultsMissingRange(t *testing.T) {
	q := newTestAnalyzer()
	got, err := q.Analyze(context.Background(), models.AssetInput{Price: models.PricePoint{Symbol: "BARE", Price: 42}})
	require.NoError(t, err)
	assert.Equal(t, models.WidthNormal, got.Formulas.Bollinger.WidthBand)
	assert.False(t, got.Formulas.Squeeze.IsSqueeze)
	assertBounded(t, got)
}

func TestAnalyzeAppliesContext(t *testing.T) {
	q := newTestAnalyzer()
	in := models.AssetInput{
		Price:       pricePoint("BTC", 100, 0),
		Treasury:    &models.TreasuryContext{HasInstitutionalHoldings: true, AccumulationSignal: models.AccumulationStrongSell, NetChange30d: -2},
		Liquidation: &models.LiquidationContext{HasLiquidationData: true, NearbyLiquidationRisk: models.LiquidationHigh, DominantSide: "longs"},
		Derivatives: &models.DerivativesContext{FundingRate: 0.0003},
	}
	got, err := q.Analyze(context.Background(), in)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, got.RiskScore, 60)
	assert.Equal(t, 60.0, got.Risk.RiskFloor)
	assert.Len(t, got.Risk.Multipliers, 2)
	assert.Len(t, got.Insights, 3)
}

func TestAnalyzeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestAnalyzer().Analyze(ctx, models.AssetInput{Price: pricePoint("BTC", 1, 0)})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunFormulasRecoversPanics(t *testing.T) {
	tasks := []formulaTask{
		{formulaRSI, func() any { return models.RSIResult{Value: 50} }},
		{formulaVWAP, func() any { panic("index out of range") }},
	}
	_, err := runFormulas(tasks)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFormulaPanic)
	assert.Contains(t, err.Error(), "vwap")
}

func TestRunFormulasJoinIgnoresOrder(t *testing.T) {
	q := newTestAnalyzer()
	tasks := q.seriesTasks(pricePoint("SOL", 140, 1), waveSeries(60))

	reversed := make([]formulaTask, len(tasks))
	for i, task := range tasks {
		reversed[len(tasks)-1-i] = task
	}

	a, err := runFormulas(tasks)
	require.NoError(t, err)
	b, err := runFormulas(reversed)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestAnalyzeBatchPreservesOrder(t *testing.T) {
	q := newTestAnalyzer()
	prices := make([]models.PricePoint, 20)
	for i := range prices {
		prices[i] = pricePoint(fmt.Sprintf("A%02d", i), float64(10+i), float64(i-10))
	}

	for _, concurrency := range []int{0, 1, 3, 50} {
		got, err := q.AnalyzePrices(context.Background(), prices, BatchOptions{Concurrency: concurrency})
		require.NoError(t, err)
		require.Len(t, got, len(prices))
		for i, r := range got {
			assert.Equal(t, prices[i].Symbol, r.Symbol)
			require.NoError(t, r.Err)
			assert.Equal(t, prices[i].Symbol, r.Analysis.Symbol)
		}
	}

	empty, err := q.AnalyzeBatch(context.Background(), nil, BatchOptions{})
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestAnalyzeBatchPolicies(t *testing.T) {
	q := newTestAnalyzer()
	prices := []models.PricePoint{
		pricePoint("OK1", 10, 1),
		pricePoint("OK2", 20, -1),
		pricePoint("BAD", 0, 0),
		pricePoint("OK3", 30, 2),
	}

	t.Run("isolate", func(t *testing.T) {
		got, err := q.AnalyzePrices(context.Background(), prices, BatchOptions{Concurrency: 2, Policy: BatchIsolate})
		require.NoError(t, err)
		require.Len(t, got, 4)
		assert.ErrorIs(t, got[2].Err, ErrInvalidPrice)
		assert.Nil(t, got[2].Analysis)
		for _, i := range []int{0, 1, 3} {
			assert.NoError(t, got[i].Err)
			assert.NotNil(t, got[i].Analysis)
		}
		assert.Len(t, Analyses(got), 3)
	})

	t.Run("fail fast", func(t *testing.T) {
		got, err := q.AnalyzePrices(context.Background(), prices, BatchOptions{Policy: BatchFailFast})
		assert.Nil(t, got)
		assert.ErrorIs(t, err, ErrInvalidPrice)
	})

	t.Run("default is fail fast", func(t *testing.T) {
		_, err := q.AnalyzePrices(context.Background(), prices, BatchOptions{})
		assert.True(t, errors.Is(err, ErrInvalidPrice))
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := q.AnalyzePrices(ctx, prices[:2], BatchOptions{Policy: BatchIsolate})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestFilterHighConfidence(t *testing.T) {
	in := []*models.QuantitativeAnalysis{
		{Symbol: "A", Confidence: 80},
		nil,
		{Symbol: "B", Confidence: 69},
		{Symbol: "C", Confidence: 70},
	}
	got := FilterHighConfidence(in, 70)
	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].Symbol)
	assert.Equal(t, "C", got[1].Symbol)
	assert.Empty(t, FilterHighConfidence(nil, 0))
}

func TestRankByQuality(t *testing.T) {
	in := make([]*models.QuantitativeAnalysis, 20)
	for i := range in {
		// distinct qualities, deliberately shuffled
		k := (i * 7) % 20
		in[i] = &models.QuantitativeAnalysis{Symbol: fmt.Sprintf("S%02d", k), Confidence: 40 + k*3, RiskScore: 80 - k*2}
	}
	got := RankByQuality(in)
	require.Len(t, got, 20)
	for i := 1; i < len(got); i++ {
		assert.Greater(t, got[i-1].Quality(), got[i].Quality())
	}
	assert.Equal(t, "S00", in[0].Symbol, "input must not be reordered")

	ties := RankByQuality([]*models.QuantitativeAnalysis{
		{Symbol: "B", Confidence: 50, RiskScore: 20},
		{Symbol: "A", Confidence: 50, RiskScore: 20},
		{Symbol: "C", Confidence: 90, RiskScore: 10},
	})
	assert.Equal(t, []string{"C", "A", "B"}, []string{ties[0].Symbol, ties[1].Symbol, ties[2].Symbol})
}

func TestRankAnalysedBatch(t *testing.T) {
	q := newTestAnalyzer()
	prices := make([]models.PricePoint, 20)
	for i := range prices {
		prices[i] = pricePoint(fmt.Sprintf("B%02d", i), float64(5+i*3), float64(i*2-19))
	}
	res, err := q.AnalyzePrices(context.Background(), prices, BatchOptions{Concurrency: 4})
	require.NoError(t, err)

	ranked := RankByQuality(Analyses(res))
	require.Len(t, ranked, 20)
	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i-1].Quality(), ranked[i].Quality())
	}
}
