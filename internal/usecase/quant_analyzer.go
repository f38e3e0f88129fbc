package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"QuantSignal/internal/domain/models"
	"QuantSignal/internal/services/indicators"
	"QuantSignal/internal/services/risk"
	"QuantSignal/internal/services/scoring"
	"QuantSignal/internal/services/signal"
	qm "QuantSignal/pkg/quantmath"
)

type formulaID string

const (
	formulaADX        formulaID = "adx"
	formulaSAR        formulaID = "sar"
	formulaSupertrend formulaID = "supertrend"
	formulaMA         formulaID = "moving_averages"
	formulaRSI        formulaID = "rsi"
	formulaDivergence formulaID = "divergence"
	formulaMACD       formulaID = "macd"
	formulaBollinger  formulaID = "bollinger"
	formulaGK         formulaID = "garman_klass"
	formulaATR        formulaID = "atr"
	formulaKeltner    formulaID = "keltner"
	formulaRegression formulaID = "regression"
	formulaZScore     formulaID = "zscore"
	formulaCorr       formulaID = "correlation"
	formulaBeta       formulaID = "beta"
	formulaVaR        formulaID = "var"
	formulaDrawdown   formulaID = "drawdown"
	formulaCalmar     formulaID = "calmar"
	formulaVWAP       formulaID = "vwap"
	formulaVolumeROC  formulaID = "volume_roc"
)

type formulaTask struct {
	id  formulaID
	run func() any
}

type formulaValue struct {
	id  formulaID
	val any
	err error
}

// AnalyzerConfig controls mode selection and annualisation.
type AnalyzerConfig struct {
	MinSeriesLen  int
	Annualization float64
}

func DefaultAnalyzerConfig() AnalyzerConfig {
	return AnalyzerConfig{MinSeriesLen: 35, Annualization: indicators.DefaultAnnualization}
}

// QuantAnalyzer runs the full pipeline for one asset or a batch of assets.
// It holds no mutable state and is safe for concurrent use.
type QuantAnalyzer struct {
	cfg        AnalyzerConfig
	scorer     *scoring.Scorer
	classifier *signal.Classifier
	risk       *risk.Contextualizer
	now        func() time.Time
}

type AnalyzerOption func(*QuantAnalyzer)

func WithAnalyzerConfig(cfg AnalyzerConfig) AnalyzerOption {
	return func(q *QuantAnalyzer) {
		if cfg.MinSeriesLen > 0 {
			q.cfg.MinSeriesLen = cfg.MinSeriesLen
		}
		if cfg.Annualization > 0 {
			q.cfg.Annualization = cfg.Annualization
		}
	}
}

func WithScorer(s *scoring.Scorer) AnalyzerOption {
	return func(q *QuantAnalyzer) { q.scorer = s }
}

func WithClassifier(c *signal.Classifier) AnalyzerOption {
	return func(q *QuantAnalyzer) { q.classifier = c }
}

func WithContextualizer(c *risk.Contextualizer) AnalyzerOption {
	return func(q *QuantAnalyzer) { q.risk = c }
}

// WithClock sets the timestamp source for inputs that carry none.
func WithClock(now func() time.Time) AnalyzerOption {
	return func(q *QuantAnalyzer) { q.now = now }
}

func NewQuantAnalyzer(opts ...AnalyzerOption) *QuantAnalyzer {
	q := &QuantAnalyzer{
		cfg:        DefaultAnalyzerConfig(),
		scorer:     scoring.NewScorer(),
		classifier: signal.NewClassifier(signal.DefaultConfig()),
		risk:       risk.NewContextualizer(risk.DefaultConfig()),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Mode picks SERIES when the series is long enough for every windowed formula.
func (q *QuantAnalyzer) Mode(s *models.Series) models.AnalysisMode {
	if s.Len() >= q.cfg.MinSeriesLen {
		return models.ModeSeries
	}
	return models.ModeSnapshot
}

// Analyze validates the input, computes every formula concurrently, and folds the
// joined results through the scorer, the classifier and the risk contextualizer.
func (q *QuantAnalyzer) Analyze(ctx context.Context, in models.AssetInput) (*models.QuantitativeAnalysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p := in.Price
	if p.Price <= 0 || !p.Finite() {
		return nil, fmt.Errorf("%s: %w", p.Symbol, ErrInvalidPrice)
	}
	if err := in.Series.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w: %v", p.Symbol, ErrSeriesMismatch, err)
	}
	p = p.Normalized()
	mode := q.Mode(in.Series)

	var tasks []formulaTask
	if mode == models.ModeSeries {
		tasks = q.seriesTasks(p, in.Series)
	} else {
		tasks = q.snapshotTasks(p)
	}
	formulas, err := runFormulas(tasks)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.Symbol, err)
	}
	deriveFormulas(&formulas, p)

	raw := q.scorer.Score(formulas, mode)
	cls := q.classifier.Classify(raw, formulas.Squeeze, formulas.Divergence)
	comp := scoring.Round(raw)
	rc := q.risk.Contextualize(comp.Volatility.Score, in.Treasury, in.Liquidation)

	ts := p.Timestamp
	if ts.IsZero() {
		ts = q.now().UTC()
	}
	return &models.QuantitativeAnalysis{
		Symbol:        p.Symbol,
		Timestamp:     ts,
		Mode:          mode,
		Formulas:      formulas,
		Composite:     comp,
		CombinedScore: cls.CombinedScore,
		Signal:        cls.Signal,
		Confidence:    cls.Confidence,
		RiskScore:     rc.FinalRisk,
		Risk:          rc,
		Insights:      q.risk.Insights(in.Treasury, in.Liquidation, in.Derivatives),
	}, nil
}

// ContextualizeRisk applies the institutional and liquidation adjustments to a
// caller-supplied base risk without running any formula.
func (q *QuantAnalyzer) ContextualizeRisk(baseRisk float64, treasury *models.TreasuryContext, liq *models.LiquidationContext) models.RiskContext {
	return q.risk.Contextualize(baseRisk, treasury, liq)
}

func (q *QuantAnalyzer) seriesTasks(p models.PricePoint, s *models.Series) []formulaTask {
	o, h, l, c, v := s.Open, s.High, s.Low, s.Close, s.Volume
	rets := qm.SimpleReturns(c)
	bench := qm.SimpleReturns(s.Benchmark)
	ann := q.cfg.Annualization

	return []formulaTask{
		{formulaADX, func() any { return indicators.ADX(h, l, c, indicators.DefaultADXPeriod) }},
		{formulaSAR, func() any {
			return indicators.ParabolicSAR(h, l, c, indicators.DefaultSARAcceleration, indicators.DefaultSARMaximum)
		}},
		{formulaSupertrend, func() any {
			return indicators.Supertrend(h, l, c, indicators.DefaultSupertrendPeriod, indicators.DefaultSupertrendMult)
		}},
		{formulaMA, func() any { return indicators.MovingAverages(c) }},
		{formulaRSI, func() any { return indicators.RSI(c, indicators.DefaultRSIPeriod) }},
		{formulaDivergence, func() any {
			return indicators.RSIDivergence(c, indicators.DefaultRSIPeriod, indicators.DefaultDivergenceWindow)
		}},
		{formulaMACD, func() any { return indicators.MACDTrend(c) }},
		{formulaBollinger, func() any {
			return indicators.Bollinger(c, indicators.DefaultBollingerPeriod, indicators.DefaultBollingerK)
		}},
		{formulaGK, func() any { return indicators.GarmanKlass(o, h, l, c, ann) }},
		{formulaATR, func() any { return indicators.ATR(h, l, c, indicators.DefaultATRPeriod) }},
		{formulaKeltner, func() any {
			return indicators.Keltner(h, l, c, indicators.DefaultKeltnerPeriod, indicators.DefaultKeltnerATRPeriod, indicators.DefaultKeltnerMult)
		}},
		{formulaRegression, func() any { return indicators.LinearRegression(c) }},
		{formulaZScore, func() any { return indicators.ZScore(p.Price, c, indicators.DefaultZScoreWindow) }},
		{formulaCorr, func() any { return indicators.Correlation(rets, bench) }},
		{formulaBeta, func() any { return indicators.Beta(rets, bench) }},
		{formulaVaR, func() any { return indicators.ValueAtRisk(rets, indicators.DefaultVaRConfidence) }},
		{formulaDrawdown, func() any { return indicators.MaxDrawdown(c) }},
		{formulaCalmar, func() any { return indicators.Calmar(c, ann) }},
		{formulaVWAP, func() any { return indicators.VWAP(h, l, c, v) }},
		{formulaVolumeROC, func() any { return indicators.VolumeROC(v, indicators.DefaultVolumeROCPeriod) }},
	}
}

func (q *QuantAnalyzer) snapshotTasks(p models.PricePoint) []formulaTask {
	ann := q.cfg.Annualization
	return []formulaTask{
		{formulaADX, func() any { return indicators.ADXSnapshot(p) }},
		{formulaSAR, func() any { return indicators.SARSnapshot(p) }},
		{formulaSupertrend, func() any { return indicators.SupertrendSnapshot(p, indicators.DefaultSupertrendMult) }},
		{formulaMA, func() any { return indicators.MovingAveragesSnapshot(p) }},
		{formulaRSI, func() any { return indicators.RSISnapshot(p) }},
		{formulaDivergence, func() any { return models.DivergenceResult{Type: models.BiasNone} }},
		{formulaMACD, func() any { return indicators.MACDSnapshot(p) }},
		{formulaBollinger, func() any { return indicators.BollingerSnapshot(p, indicators.DefaultBollingerK) }},
		{formulaGK, func() any { return indicators.GarmanKlass(nil, nil, nil, nil, ann) }},
		{formulaATR, func() any { return indicators.ATRSnapshot(p) }},
		{formulaKeltner, func() any { return indicators.KeltnerSnapshot(p, indicators.DefaultKeltnerMult) }},
		{formulaRegression, func() any { return indicators.RegressionSnapshot(p) }},
		{formulaZScore, func() any { return indicators.ZScoreSnapshot(p) }},
		{formulaCorr, func() any { return indicators.Correlation(nil, nil) }},
		{formulaBeta, func() any { return indicators.Beta(nil, nil) }},
		{formulaVaR, func() any { return indicators.ValueAtRiskSnapshot(p) }},
		{formulaDrawdown, func() any { return indicators.DrawdownSnapshot(p) }},
		{formulaCalmar, func() any { return indicators.Calmar(nil, ann) }},
		{formulaVWAP, func() any { return indicators.VWAPSnapshot(p) }},
		{formulaVolumeROC, func() any { return indicators.VolumeROC(nil, indicators.DefaultVolumeROCPeriod) }},
	}
}

// runFormulas executes every task on its own goroutine and joins the values by
// formula id, so the result never depends on completion order.
func runFormulas(tasks []formulaTask) (models.FormulaResults, error) {
	ch := make(chan formulaValue, len(tasks))
	var wg sync.WaitGroup
	for _, t := range tasks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					ch <- formulaValue{id: t.id, err: fmt.Errorf("%s: %v", t.id, r)}
				}
			}()
			ch <- formulaValue{id: t.id, val: t.run()}
		}()
	}
	go func() { wg.Wait(); close(ch) }()

	var f models.FormulaResults
	var failed []string
	for it := range ch {
		if it.err != nil {
			failed = append(failed, it.err.Error())
			continue
		}
		switch it.id {
		case formulaADX:
			f.ADX = it.val.(models.ADXResult)
		case formulaSAR:
			f.SAR = it.val.(models.SARResult)
		case formulaSupertrend:
			f.Supertrend = it.val.(models.SupertrendResult)
		case formulaMA:
			f.MovingAverages = it.val.(models.MovingAverageResult)
		case formulaRSI:
			f.RSI = it.val.(models.RSIResult)
		case formulaDivergence:
			f.Divergence = it.val.(models.DivergenceResult)
		case formulaMACD:
			f.MACD = it.val.(models.MACDResult)
		case formulaBollinger:
			f.Bollinger = it.val.(models.BollingerResult)
		case formulaGK:
			f.GarmanKlass = it.val.(models.GarmanKlassResult)
		case formulaATR:
			f.ATR = it.val.(models.ATRResult)
		case formulaKeltner:
			f.Keltner = it.val.(models.KeltnerResult)
		case formulaRegression:
			f.Regression = it.val.(models.RegressionResult)
		case formulaZScore:
			f.ZScore = it.val.(models.ZScoreResult)
		case formulaCorr:
			f.Correlation = it.val.(models.CorrelationResult)
		case formulaBeta:
			f.Beta = it.val.(models.BetaResult)
		case formulaVaR:
			f.VaR = it.val.(models.VaRResult)
		case formulaDrawdown:
			f.Drawdown = it.val.(models.DrawdownResult)
		case formulaCalmar:
			f.Calmar = it.val.(models.CalmarResult)
		case formulaVWAP:
			f.VWAP = it.val.(models.VWAPResult)
		case formulaVolumeROC:
			f.VolumeROC = it.val.(models.VolumeROCResult)
		}
	}
	if len(failed) > 0 {
		sort.Strings(failed)
		return models.FormulaResults{}, fmt.Errorf("%w: %s", ErrFormulaPanic, strings.Join(failed, "; "))
	}
	return f, nil
}

// deriveFormulas fills the results that are functions of other joined results.
func deriveFormulas(f *models.FormulaResults, p models.PricePoint) {
	f.Squeeze = indicators.Squeeze(f.Bollinger)
	f.PercentB = indicators.PercentB(f.Bollinger)
	f.BandWidth = indicators.BandWidth(f.Bollinger)
	f.DistanceFromMA = indicators.DistanceFromMA(p.Price, f.MovingAverages.SMA20)

	agreement := indicators.Agreement(
		f.ADX.Direction,
		f.SAR.Trend,
		f.Supertrend.Trend,
		f.MACD.Trend,
		f.MovingAverages.Alignment,
		rsiSide(f.RSI.Value),
	)
	f.Noise = indicators.NoiseScore(f.ADX.ADX, f.ATR.ATRPct, agreement)
}

func rsiSide(rsi float64) models.Direction {
	switch {
	case rsi > 55:
		return models.DirectionBullish
	case rsi < 45:
		return models.DirectionBearish
	default:
		return models.DirectionNeutral
	}
}

// FilterHighConfidence keeps analyses with Confidence >= minConfidence, preserving order.
func FilterHighConfidence(analyses []*models.QuantitativeAnalysis, minConfidence int) []*models.QuantitativeAnalysis {
	out := make([]*models.QuantitativeAnalysis, 0, len(analyses))
	for _, a := range analyses {
		if a != nil && a.Confidence >= minConfidence {
			out = append(out, a)
		}
	}
	return out
}

// RankByQuality returns a copy sorted by Quality descending, ties by symbol.
func RankByQuality(analyses []*models.QuantitativeAnalysis) []*models.QuantitativeAnalysis {
	out := make([]*models.QuantitativeAnalysis, 0, len(analyses))
	for _, a := range analyses {
		if a != nil {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		qi, qj := out[i].Quality(), out[j].Quality()
		if qi != qj {
			return qi > qj
		}
		return out[i].Symbol < out[j].Symbol
	})
	return out
}
