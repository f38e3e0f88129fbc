package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"QuantSignal/internal/domain/models"
	domrepo "QuantSignal/internal/domain/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rangeStore struct {
	candles  []models.Candle
	err      error
	latestN  int
	ranged   bool
	gotTF    domrepo.Timeframe
	gotRange [2]time.Time
}

func (r *rangeStore) GetCandles(_ context.Context, _ string, from, to time.Time, tf domrepo.Timeframe) ([]models.Candle, error) {
	r.ranged = true
	r.gotTF = tf
	r.gotRange = [2]time.Time{from, to}
	return r.candles, r.err
}

func (r *rangeStore) GetLatestNCandles(_ context.Context, _ string, n int, tf domrepo.Timeframe) ([]models.Candle, error) {
	r.latestN = n
	r.gotTF = tf
	return r.candles, r.err
}

func (r *rangeStore) Health(context.Context) error { return r.err }

func closesOnly(symbol string, closes ...float64) []models.Candle {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]models.Candle, len(closes))
	for i, c := range closes {
		out[i] = models.Candle{Bucket: start.Add(time.Duration(i) * time.Hour), Symbol: symbol, Open: c, High: c, Low: c, Close: c, Volume: 1}
	}
	return out
}

func TestCandlesUseCase_Validation(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name  string
		store domrepo.SeriesStore
		p     GetCandlesParams
		want  error
	}{
		{"no store", nil, GetCandlesParams{Symbol: "BTC"}, ErrHistoryUnavailable},
		{"blank symbol", &rangeStore{}, GetCandlesParams{Symbol: "  "}, ErrSymbolRequired},
		{"inverted range", &rangeStore{}, GetCandlesParams{Symbol: "BTC", From: now, To: now.Add(-time.Hour)}, ErrInvalidRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCandlesUseCase(tt.store).GetCandles(context.Background(), tt.p)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCandlesUseCase_Latest(t *testing.T) {
	store := &rangeStore{candles: closesOnly("ETH", 1, 2, 3)}
	res, err := NewCandlesUseCase(store).GetCandles(context.Background(), GetCandlesParams{Symbol: "eth"})
	require.NoError(t, err)

	assert.False(t, store.ranged)
	assert.Equal(t, defaultCandleLimit, store.latestN)
	assert.Equal(t, domrepo.DefaultTimeframe(), store.gotTF)
	assert.Equal(t, "ETH", res.Symbol)
	assert.Equal(t, 3, res.Count)
}

func TestCandlesUseCase_RangeKeepsNewest(t *testing.T) {
	store := &rangeStore{candles: closesOnly("BTC", 1, 2, 3, 4, 5)}
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	res, err := NewCandlesUseCase(store).GetCandles(context.Background(), GetCandlesParams{
		Symbol:    "BTC",
		From:      from,
		Timeframe: domrepo.TF1h,
		Limit:     2,
	})
	require.NoError(t, err)

	assert.True(t, store.ranged)
	assert.Equal(t, from, store.gotRange[0])
	assert.False(t, store.gotRange[1].IsZero())
	assert.Equal(t, "1h", res.Timeframe)
	require.Len(t, res.Candles, 2)
	assert.Equal(t, 4.0, res.Candles[0].Close)
	assert.Equal(t, 5.0, res.Candles[1].Close)
}

func TestCandlesUseCase_WindowEndingAt(t *testing.T) {
	to := time.Date(2024, 3, 10, 15, 42, 0, 0, time.UTC)
	tests := []struct {
		name     string
		tf       domrepo.Timeframe
		limit    int
		wantFrom time.Time
		wantTo   time.Time
	}{
		{"hourly", domrepo.TF1h, 3, time.Date(2024, 3, 10, 13, 0, 0, 0, time.UTC), time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)},
		{"daily", domrepo.TF1d, 2, time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &rangeStore{}
			_, err := NewCandlesUseCase(store).GetCandles(context.Background(), GetCandlesParams{
				Symbol:    "BTC",
				To:        to,
				Timeframe: tt.tf,
				Limit:     tt.limit,
			})
			require.NoError(t, err)
			assert.True(t, store.ranged)
			assert.Zero(t, store.latestN)
			assert.Equal(t, tt.wantFrom, store.gotRange[0])
			assert.Equal(t, tt.wantTo, store.gotRange[1])
		})
	}
}

func TestCandlesUseCase_LimitCapped(t *testing.T) {
	store := &rangeStore{}
	_, err := NewCandlesUseCase(store).GetCandles(context.Background(), GetCandlesParams{Symbol: "BTC", Limit: 1 << 20})
	require.NoError(t, err)
	assert.Equal(t, maxCandleLimit, store.latestN)
}

func TestCandlesUseCase_StoreError(t *testing.T) {
	boom := errors.New("boom")
	_, err := NewCandlesUseCase(&rangeStore{err: boom}).GetCandles(context.Background(), GetCandlesParams{Symbol: "BTC"})
	require.ErrorIs(t, err, boom)
}
