package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"QuantSignal/internal/domain/models"
	domrepo "QuantSignal/internal/domain/repository"
	pkgch "QuantSignal/pkg/clickhouse"
	applogger "QuantSignal/pkg/logger"
)

// CHSeriesStore implements SeriesStore over per-timeframe candle tables named
// <prefix>_<tf>, e.g. market.candles_1h.
type CHSeriesStore struct {
	db     *sql.DB
	prefix string
	l      *applogger.Logger
}

func NewCHSeriesStore(ch *pkgch.Client, tablePrefix string, l *applogger.Logger) *CHSeriesStore {
	if l == nil {
		l = applogger.Nop()
	}
	return &CHSeriesStore{db: ch.DB(), prefix: tablePrefix, l: l}
}

func (s *CHSeriesStore) GetCandles(ctx context.Context, symbol string, from, to time.Time, tf domrepo.Timeframe) ([]models.Candle, error) {
	table, err := tableFor(s.prefix, tf)
	if err != nil {
		return nil, err
	}
	q := fmt.Sprintf(`
        SELECT bucket, symbol, open, high, low, close, volume
        FROM %s
        WHERE symbol = ? AND bucket >= ? AND bucket <= ?
        ORDER BY bucket ASC
    `, table)
	out, err := s.query(ctx, "get_candles", table, symbol, tf, q, symbol, from, to)
	if err != nil {
		return nil, fmt.Errorf("get candles: %w", err)
	}
	return out, nil
}

func (s *CHSeriesStore) GetLatestNCandles(ctx context.Context, symbol string, n int, tf domrepo.Timeframe) ([]models.Candle, error) {
	table, err := tableFor(s.prefix, tf)
	if err != nil {
		return nil, err
	}
	if n <= 0 {
		return nil, nil
	}
	q := fmt.Sprintf(`
        SELECT bucket, symbol, open, high, low, close, volume
        FROM %s
        WHERE symbol = ?
        ORDER BY bucket DESC
        LIMIT ?
    `, table)
	out, err := s.query(ctx, "latest_candles", table, symbol, tf, q, symbol, n)
	if err != nil {
		return nil, fmt.Errorf("get latest candles: %w", err)
	}
	reverseCandles(out)
	return out, nil
}

func (s *CHSeriesStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *CHSeriesStore) query(ctx context.Context, op, table, symbol string, tf domrepo.Timeframe, q string, args ...any) ([]models.Candle, error) {
	start := time.Now()
	fields := []applogger.Field{
		applogger.String("table", table),
		applogger.String("symbol", symbol),
		applogger.String("tf", string(tf)),
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		s.l.Error("clickhouse "+op+" query error", append(fields, applogger.Error(err))...)
		return nil, err
	}
	defer rows.Close()

	out := make([]models.Candle, 0, 256)
	for rows.Next() {
		var c models.Candle
		if err := rows.Scan(&c.Bucket, &c.Symbol, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume); err != nil {
			s.l.Error("clickhouse "+op+" scan error", append(fields, applogger.Error(err))...)
			return nil, fmt.Errorf("scan candle: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		s.l.Error("clickhouse "+op+" rows error", append(fields, applogger.Error(err))...)
		return nil, fmt.Errorf("rows: %w", err)
	}
	s.l.Debug("clickhouse "+op+" ok", append(fields,
		applogger.Int("rows", len(out)),
		applogger.Duration("duration_ms", time.Since(start)),
	)...)
	return out, nil
}

func reverseCandles(cs []models.Candle) {
	for i, j := 0, len(cs)-1; i < j; i, j = i+1, j-1 {
		cs[i], cs[j] = cs[j], cs[i]
	}
}

func tableFor(prefix string, tf domrepo.Timeframe) (string, error) {
	if !domrepo.IsValidTimeframe(tf) {
		return "", fmt.Errorf("unsupported timeframe: %s", tf)
	}
	if !validIdentifier(prefix) {
		return "", fmt.Errorf("invalid table prefix: %q", prefix)
	}
	return prefix + "_" + string(tf), nil
}

// validIdentifier allows db.table style names built from [A-Za-z0-9_].
func validIdentifier(s string) bool {
	if s == "" || s[0] == '.' || s[len(s)-1] == '.' {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '.':
		default:
			return false
		}
	}
	return true
}

var _ domrepo.SeriesStore = (*CHSeriesStore)(nil)
