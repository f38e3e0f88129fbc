package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	models "QuantSignal/internal/domain/models"
	domrepo "QuantSignal/internal/domain/repository"
	"QuantSignal/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestEcho(opts ...usecase.ServiceOption) *echo.Echo {
	svc := usecase.NewAnalysisService(usecase.NewQuantAnalyzer(), opts...)
	e := echo.New()
	NewAnalysisEchoHandler(nil, svc).RegisterRoutes(e)
	return e
}

func do(t *testing.T, e *echo.Echo, method, target, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec, env
}

func TestAnalyzeQuery(t *testing.T) {
	e := newTestEcho()

	rec, env := do(t, e, http.MethodGet, "/api/analysis?symbol=btc&price=100&high=105&low=95&change_pct=8&ts=1710000000", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "private, max-age=15", rec.Header().Get(echo.HeaderCacheControl))

	var a models.QuantitativeAnalysis
	require.NoError(t, json.Unmarshal(env.Data, &a))
	assert.Equal(t, "BTC", a.Symbol)
	assert.Equal(t, models.ModeSnapshot, a.Mode)
	assert.Equal(t, int64(1710000000), a.Timestamp.Unix())
	assert.True(t, a.Signal.Valid())
}

func TestAnalyzeQueryValidation(t *testing.T) {
	e := newTestEcho()
	tests := []struct {
		name   string
		target string
		code   string
	}{
		{"missing symbol", "/api/analysis?price=100", "ERR_REQUIRED"},
		{"zero price", "/api/analysis?symbol=BTC", "ERR_GT"},
		{"negative volume", "/api/analysis?symbol=BTC&price=1&volume=-3", "ERR_GTE"},
		{"bad ts", "/api/analysis?symbol=BTC&price=1&ts=yesterday", "ERR_BAD_REQUEST"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := do(t, e, http.MethodGet, tt.target, "")
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, http.StatusBadRequest, env.Status)
			assert.Contains(t, string(env.Data), tt.code)
		})
	}
}

func TestAnalyzeAsset(t *testing.T) {
	e := newTestEcho()

	rec, env := do(t, e, http.MethodPost, "/api/analysis", `{"price":{"symbol":"eth","price":2500,"price_change_pct_24h":-4}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var a models.QuantitativeAnalysis
	require.NoError(t, json.Unmarshal(env.Data, &a))
	assert.Equal(t, "ETH", a.Symbol)

	rec, _ = do(t, e, http.MethodPost, "/api/analysis", `{"price":{"symbol":"eth","price":-1}}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec, env = do(t, e, http.MethodPost, "/api/analysis", `{"price":{"price":10}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, string(env.Data), "symbol is required")
}

func TestAnalyzeBatchEndpoint(t *testing.T) {
	e := newTestEcho()

	rec, _ := do(t, e, http.MethodPost, "/api/analysis/batch", `{"assets":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body := `{"assets":[{"price":{"symbol":"BTC","price":100,"price_change_pct_24h":6}},{"price":{"symbol":"ETH","price":50}}]}`
	rec, env := do(t, e, http.MethodPost, "/api/analysis/batch", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp models.BatchResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	require.Len(t, resp.Items, 2)
	assert.Equal(t, "BTC", resp.Items[0].Symbol)
	assert.Equal(t, "ETH", resp.Items[1].Symbol)
	assert.Equal(t, 2, resp.Succeeded)
	assert.Zero(t, resp.Failed)

	bad := `{"assets":[{"price":{"symbol":"BTC","price":100}},{"price":{"symbol":"BAD","price":-1}}]}`
	rec, _ = do(t, e, http.MethodPost, "/api/analysis/batch", bad)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestAnalyzeBatchEndpointIsolate(t *testing.T) {
	e := newTestEcho(usecase.WithBatchOptions(usecase.BatchOptions{Policy: usecase.BatchIsolate}))

	bad := `{"assets":[{"price":{"symbol":"BTC","price":100}},{"price":{"symbol":"BAD","price":-1}}]}`
	rec, env := do(t, e, http.MethodPost, "/api/analysis/batch", bad)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp models.BatchResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.Equal(t, 1, resp.Succeeded)
	assert.Equal(t, 1, resp.Failed)
	assert.NotNil(t, resp.Items[0].Analysis)
	assert.Nil(t, resp.Items[1].Analysis)
	assert.Contains(t, resp.Items[1].Error, "price must be")
}

func TestRankEndpoint(t *testing.T) {
	e := newTestEcho()

	var assets []string
	for i, chg := range []float64{-12, 0, 12, 4} {
		assets = append(assets, fmt.Sprintf(`{"price":{"symbol":"S%d","price":100,"price_change_pct_24h":%g}}`, i, chg))
	}
	body := `{"assets":[` + strings.Join(assets, ",") + `]}`
	rec, env := do(t, e, http.MethodPost, "/api/analysis/rank", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp models.RankResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	require.Len(t, resp.Items, 4)
	for i, it := range resp.Items {
		assert.Equal(t, i+1, it.Rank)
		if i > 0 {
			assert.GreaterOrEqual(t, resp.Items[i-1].Quality, it.Quality)
		}
	}

	rec, _ = do(t, e, http.MethodPost, "/api/analysis/rank", `{"assets":[{"price":{"symbol":"A","price":1}}],"min_confidence":101}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRiskEndpoint(t *testing.T) {
	e := newTestEcho()

	rec, env := do(t, e, http.MethodPost, "/api/risk", `{"base_risk":40}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var rc models.RiskContext
	require.NoError(t, json.Unmarshal(env.Data, &rc))
	assert.Equal(t, 40.0, rc.BaseRisk)
	assert.Equal(t, 40, rc.FinalRisk)

	rec, _ = do(t, e, http.MethodPost, "/api/risk", `{"base_risk":140}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type staticStore struct {
	candles []models.Candle
	tf      domrepo.Timeframe
}

func (s *staticStore) GetCandles(ctx context.Context, symbol string, _, _ time.Time, tf domrepo.Timeframe) ([]models.Candle, error) {
	return s.GetLatestNCandles(ctx, symbol, 0, tf)
}

func (s *staticStore) GetLatestNCandles(_ context.Context, _ string, _ int, tf domrepo.Timeframe) ([]models.Candle, error) {
	s.tf = tf
	return s.candles, nil
}

func (s *staticStore) Health(context.Context) error { return nil }

func TestCandles(t *testing.T) {
	bucket := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	store := &staticStore{candles: []models.Candle{{Bucket: bucket, Symbol: "BTC", Open: 1, High: 2, Low: 1, Close: 2, Volume: 10}}}
	svc := usecase.NewAnalysisService(usecase.NewQuantAnalyzer())
	e := echo.New()
	NewAnalysisEchoHandler(nil, svc).WithCandles(usecase.NewCandlesUseCase(store)).RegisterRoutes(e)

	rec, env := do(t, e, http.MethodGet, "/api/candles?symbol=btc&tf=1h&from=1709251200", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, domrepo.TF1h, store.tf)

	var res usecase.GetCandlesResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, "BTC", res.Symbol)
	assert.Equal(t, 1, res.Count)

	rec, _ = do(t, e, http.MethodGet, "/api/candles?symbol=btc&tf=2d", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, e, http.MethodGet, "/api/candles?symbol=btc&to=soon", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCandles_NoStore(t *testing.T) {
	rec, env := do(t, newTestEcho(), http.MethodGet, "/api/candles?symbol=BTC", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, http.StatusServiceUnavailable, env.Status)
}

func TestToAppError(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("asset 0: %w", usecase.ErrSymbolRequired), http.StatusBadRequest},
		{usecase.ErrEmptyBatch, http.StatusBadRequest},
		{usecase.ErrBatchTooLarge, http.StatusBadRequest},
		{fmt.Errorf("X: %w", usecase.ErrInvalidPrice), http.StatusUnprocessableEntity},
		{usecase.ErrSeriesMismatch, http.StatusUnprocessableEntity},
		{usecase.ErrInvalidRange, http.StatusBadRequest},
		{usecase.ErrHistoryUnavailable, http.StatusServiceUnavailable},
		{context.DeadlineExceeded, http.StatusRequestTimeout},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		got := toAppError(tt.err)
		assert.Equal(t, tt.status, got.Status, tt.err.Error())
		assert.ErrorIs(t, got, tt.err)
	}
}
