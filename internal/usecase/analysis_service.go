package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"QuantSignal/internal/domain/models"
	domrepo "QuantSignal/internal/domain/repository"
	"QuantSignal/internal/service/cache"
	"QuantSignal/internal/services/features"
	"QuantSignal/pkg/logger"
	pkgmetrics "QuantSignal/pkg/metrics"
	xutil "QuantSignal/pkg/util"
)

// ErrBatchTooLarge is returned when a batch exceeds the configured cap.
var ErrBatchTooLarge = errors.New("batch exceeds maximum size")

// AnalysisService wraps the analyzer with history loading, caching,
// publishing and metrics. Every collaborator is optional.
type AnalysisService struct {
	analyzer  *QuantAnalyzer
	store     domrepo.SeriesStore
	timeframe domrepo.Timeframe
	lookback  int
	benchmark string
	cache     domrepo.AnalysisCache
	ttl       time.Duration
	publisher domrepo.AnalysisPublisher
	metrics   domrepo.Metrics
	log       *logger.Logger
	batch     BatchOptions
	maxBatch  int
}

type ServiceOption func(*AnalysisService)

// WithSeriesStore loads history for inputs that arrive without a series.
// benchmark may be empty, in which case correlation and beta fall back to
// their no-data values.
func WithSeriesStore(store domrepo.SeriesStore, tf domrepo.Timeframe, lookback int, benchmark string) ServiceOption {
	return func(s *AnalysisService) {
		s.store = store
		s.timeframe = tf
		if lookback > 0 {
			s.lookback = lookback
		}
		s.benchmark = xutil.NormalizeSymbol(benchmark)
	}
}

func WithAnalysisCache(c domrepo.AnalysisCache, ttl time.Duration) ServiceOption {
	return func(s *AnalysisService) {
		s.cache = c
		s.ttl = ttl
	}
}

func WithPublisher(p domrepo.AnalysisPublisher) ServiceOption {
	return func(s *AnalysisService) { s.publisher = p }
}

func WithMetrics(m domrepo.Metrics) ServiceOption {
	return func(s *AnalysisService) {
		if m != nil {
			s.metrics = m
		}
	}
}

func WithServiceLogger(l *logger.Logger) ServiceOption {
	return func(s *AnalysisService) {
		if l != nil {
			s.log = l
		}
	}
}

func WithBatchOptions(opts BatchOptions) ServiceOption {
	return func(s *AnalysisService) { s.batch = opts }
}

// WithMaxBatch caps the number of assets per batch; <= 0 disables the cap.
func WithMaxBatch(n int) ServiceOption {
	return func(s *AnalysisService) { s.maxBatch = n }
}

func NewAnalysisService(analyzer *QuantAnalyzer, opts ...ServiceOption) *AnalysisService {
	s := &AnalysisService{
		analyzer:  analyzer,
		timeframe: domrepo.DefaultTimeframe(),
		lookback:  200,
		metrics:   pkgmetrics.Nop{},
		log:       logger.Nop(),
		batch:     BatchOptions{Policy: BatchFailFast},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Analyze runs one asset through the full pipeline.
func (s *AnalysisService) Analyze(ctx context.Context, in models.AssetInput) (*models.QuantitativeAnalysis, error) {
	start := time.Now()
	defer func() { s.metrics.RecordLatency("analyze", time.Since(start).Seconds()) }()

	a, err := s.analyzeOne(ctx, in)
	if err != nil {
		return nil, err
	}
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, a); err != nil {
			s.metrics.RecordError("publish")
			s.log.Warn("publish analysis failed", logger.String("symbol", a.Symbol), logger.Error(err))
		}
	}
	return a, nil
}

// AnalyzeBatch analyses the inputs with the configured policy and publishes
// every successful analysis in one batch.
func (s *AnalysisService) AnalyzeBatch(ctx context.Context, inputs []models.AssetInput) ([]BatchResult, error) {
	if len(inputs) == 0 {
		return nil, ErrEmptyBatch
	}
	if s.maxBatch > 0 && len(inputs) > s.maxBatch {
		return nil, fmt.Errorf("%w: %d > %d", ErrBatchTooLarge, len(inputs), s.maxBatch)
	}
	start := time.Now()
	defer func() { s.metrics.RecordLatency("analyze_batch", time.Since(start).Seconds()) }()

	results, err := runBatch(ctx, inputs, s.batch, s.analyzeOne)
	if err != nil {
		return nil, err
	}
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	if failed > 0 {
		s.log.Warn("batch finished with failures",
			logger.Int("assets", len(results)),
			logger.Int("failed", failed))
	}
	if s.publisher != nil {
		if err := s.publisher.PublishBatch(ctx, Analyses(results)); err != nil {
			s.metrics.RecordError("publish")
			s.log.Warn("publish batch failed", logger.Int("assets", len(results)), logger.Error(err))
		}
	}
	return results, nil
}

// Rank analyses the batch, keeps analyses at or above minConfidence and sorts
// them by quality. minConfidence <= 0 keeps everything.
func (s *AnalysisService) Rank(ctx context.Context, inputs []models.AssetInput, minConfidence int) ([]*models.QuantitativeAnalysis, error) {
	results, err := s.AnalyzeBatch(ctx, inputs)
	if err != nil {
		return nil, err
	}
	out := Analyses(results)
	if minConfidence > 0 {
		out = FilterHighConfidence(out, minConfidence)
	}
	return RankByQuality(out), nil
}

// ContextualizeRisk exposes the risk contextualizer on its own.
func (s *AnalysisService) ContextualizeRisk(baseRisk float64, treasury *models.TreasuryContext, liq *models.LiquidationContext) models.RiskContext {
	return s.analyzer.ContextualizeRisk(baseRisk, treasury, liq)
}

func (s *AnalysisService) analyzeOne(ctx context.Context, in models.AssetInput) (*models.QuantitativeAnalysis, error) {
	in.Price.Symbol = xutil.NormalizeSymbol(in.Price.Symbol)
	if in.Price.Symbol == "" {
		s.metrics.RecordError("validation")
		return nil, ErrSymbolRequired
	}
	if in.Series == nil && s.store != nil {
		in.Series = s.loadSeries(ctx, in.Price)
	}

	key := ""
	if s.cache != nil && !in.Price.Timestamp.IsZero() {
		k, err := cache.Key(in, s.analyzer.Mode(in.Series))
		if err != nil {
			s.metrics.RecordError("cache")
			s.log.Warn("cache key failed", logger.String("symbol", in.Price.Symbol), logger.Error(err))
		} else {
			key = k
			cached, ok, err := s.cache.Get(ctx, key)
			if err != nil {
				s.metrics.RecordError("cache")
				s.log.Warn("cache get failed", logger.String("key", key), logger.Error(err))
			}
			s.metrics.RecordCache(ok)
			if ok {
				return cached, nil
			}
		}
	}

	a, err := s.analyzer.Analyze(ctx, in)
	if err != nil {
		s.metrics.RecordError(errorKind(err))
		return nil, err
	}
	s.metrics.RecordAnalysis(a)

	if key != "" {
		if err := s.cache.Set(ctx, key, a, s.ttl); err != nil {
			s.metrics.RecordError("cache")
			s.log.Warn("cache set failed", logger.String("key", key), logger.Error(err))
		}
	}
	return a, nil
}

// loadSeries returns nil when history is unavailable so the analysis degrades
// to snapshot mode instead of failing.
func (s *AnalysisService) loadSeries(ctx context.Context, p models.PricePoint) *models.Series {
	candles, err := s.store.GetLatestNCandles(ctx, p.Symbol, s.lookback, s.timeframe)
	if err != nil {
		s.metrics.RecordError("store")
		s.log.Warn("load history failed, using snapshot",
			logger.String("symbol", p.Symbol),
			logger.String("timeframe", string(s.timeframe)),
			logger.Error(err))
		return nil
	}
	var bench []models.Candle
	if s.benchmark != "" && s.benchmark != p.Symbol {
		bench, err = s.store.GetLatestNCandles(ctx, s.benchmark, s.lookback, s.timeframe)
		if err != nil {
			s.log.Warn("load benchmark failed",
				logger.String("benchmark", s.benchmark),
				logger.Error(err))
			bench = nil
		}
	}
	series := features.SeriesFromCandles(candles, bench)
	s.log.Debug("history loaded",
		logger.String("symbol", p.Symbol),
		logger.Int("candles", len(candles)),
		logger.Int("bars", series.Len()))
	return series
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, ErrInvalidPrice), errors.Is(err, ErrSeriesMismatch), errors.Is(err, ErrSymbolRequired):
		return "validation"
	case errors.Is(err, ErrFormulaPanic):
		return "formula"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "internal"
	}
}
