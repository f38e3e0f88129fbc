package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"QuantSignal/internal/domain/models"
	domrepo "QuantSignal/internal/domain/repository"
	"QuantSignal/internal/services/features"
	xutil "QuantSignal/pkg/util"
)

const (
	defaultCandleLimit = 500
	maxCandleLimit     = 5000
)

var (
	// ErrHistoryUnavailable is returned when no series store is configured.
	ErrHistoryUnavailable = errors.New("history store not configured")
	ErrInvalidRange       = errors.New("from must be <= to")
)

// CandlesUseCase serves the stored history the engine analyses in series mode.
type CandlesUseCase struct {
	store domrepo.SeriesStore
}

// NewCandlesUseCase accepts a nil store; every call then fails with ErrHistoryUnavailable.
func NewCandlesUseCase(store domrepo.SeriesStore) *CandlesUseCase {
	return &CandlesUseCase{store: store}
}

type GetCandlesParams struct {
	Symbol    string
	From      time.Time
	To        time.Time
	Timeframe domrepo.Timeframe
	Limit     int
}

type GetCandlesResult struct {
	Symbol    string          `json:"symbol"`
	Timeframe string          `json:"timeframe"`
	From      time.Time       `json:"from"`
	To        time.Time       `json:"to"`
	Count     int             `json:"count"`
	Candles   []models.Candle `json:"candles"`
}

// GetCandles returns candles in [From, To], or the latest Limit candles when
// the range is open. A To without From reads the Limit buckets ending at To.
// Results are capped at Limit, keeping the newest bars.
func (uc *CandlesUseCase) GetCandles(ctx context.Context, p GetCandlesParams) (*GetCandlesResult, error) {
	if uc.store == nil {
		return nil, ErrHistoryUnavailable
	}
	p.Symbol = xutil.NormalizeSymbol(p.Symbol)
	if p.Symbol == "" {
		return nil, ErrSymbolRequired
	}
	if !p.From.IsZero() && !p.To.IsZero() && p.From.After(p.To) {
		return nil, ErrInvalidRange
	}
	if p.Timeframe == "" {
		p.Timeframe = domrepo.DefaultTimeframe()
	}
	if p.Limit <= 0 {
		p.Limit = defaultCandleLimit
	}
	if p.Limit > maxCandleLimit {
		p.Limit = maxCandleLimit
	}

	var (
		candles []models.Candle
		err     error
	)
	switch {
	case p.From.IsZero() && p.To.IsZero():
		candles, err = uc.store.GetLatestNCandles(ctx, p.Symbol, p.Limit, p.Timeframe)
	case p.From.IsZero():
		from, to := features.Window(p.To, p.Limit, p.Timeframe)
		candles, err = uc.store.GetCandles(ctx, p.Symbol, from, to, p.Timeframe)
	default:
		to := p.To
		if to.IsZero() {
			to = time.Now().UTC()
		}
		candles, err = uc.store.GetCandles(ctx, p.Symbol, p.From, to, p.Timeframe)
	}
	if err != nil {
		return nil, fmt.Errorf("get candles: %w", err)
	}
	if len(candles) > p.Limit {
		candles = candles[len(candles)-p.Limit:]
	}

	return &GetCandlesResult{
		Symbol:    p.Symbol,
		Timeframe: string(p.Timeframe),
		From:      p.From,
		To:        p.To,
		Count:     len(candles),
		Candles:   candles,
	}, nil
}
