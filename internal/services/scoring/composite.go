// Package scoring folds raw formula results into the three composite scores
// and an overall quality figure. It never recomputes a formula.
package scoring

import (
	"math"

	"QuantSignal/internal/domain/models"
	qm "QuantSignal/pkg/quantmath"
)

// MomentumWeights weight the components of the momentum composite.
type MomentumWeights struct {
	RSI        float64 `yaml:"rsi"`
	Divergence float64 `yaml:"divergence"`
	MACD       float64 `yaml:"macd"`
	ADX        float64 `yaml:"adx"`
}

func (w MomentumWeights) total() float64 { return w.RSI + w.Divergence + w.MACD + w.ADX }

// MeanReversionWeights weight the components of the mean-reversion composite.
type MeanReversionWeights struct {
	PercentB  float64 `yaml:"percent_b"`
	BandWidth float64 `yaml:"band_width"`
	Distance  float64 `yaml:"distance"`
	Keltner   float64 `yaml:"keltner"`
}

func (w MeanReversionWeights) total() float64 {
	return w.PercentB + w.BandWidth + w.Distance + w.Keltner
}

// VolatilityWeights weight the components of the volatility composite.
type VolatilityWeights struct {
	BandPosition  float64 `yaml:"band_position"`
	RSIExtremity  float64 `yaml:"rsi_extremity"`
	NormalizedVol float64 `yaml:"normalized_vol"`
}

func (w VolatilityWeights) total() float64 {
	return w.BandPosition + w.RSIExtremity + w.NormalizedVol
}

// QualityWeights blend signal cleanliness, momentum conviction and reversion strength.
type QualityWeights struct {
	Clarity       float64 `yaml:"clarity"`
	Momentum      float64 `yaml:"momentum"`
	MeanReversion float64 `yaml:"mean_reversion"`
}

// Weights is the full composite configuration.
type Weights struct {
	Momentum      MomentumWeights      `yaml:"momentum"`
	MeanReversion MeanReversionWeights `yaml:"mean_reversion"`
	Volatility    VolatilityWeights    `yaml:"volatility"`
	Quality       QualityWeights       `yaml:"quality"`
}

func DefaultWeights() Weights {
	return Weights{
		Momentum:      MomentumWeights{RSI: 30, Divergence: 20, MACD: 25, ADX: 25},
		MeanReversion: MeanReversionWeights{PercentB: 30, BandWidth: 25, Distance: 25, Keltner: 20},
		Volatility:    VolatilityWeights{BandPosition: 30, RSIExtremity: 40, NormalizedVol: 30},
		Quality:       QualityWeights{Clarity: 0.5, Momentum: 0.3, MeanReversion: 0.2},
	}
}

// orDefault replaces any group whose weights sum to zero.
func (w Weights) orDefault() Weights {
	d := DefaultWeights()
	if w.Momentum.total() <= 0 {
		w.Momentum = d.Momentum
	}
	if w.MeanReversion.total() <= 0 {
		w.MeanReversion = d.MeanReversion
	}
	if w.Volatility.total() <= 0 {
		w.Volatility = d.Volatility
	}
	if w.Quality.Clarity+w.Quality.Momentum+w.Quality.MeanReversion <= 0 {
		w.Quality = d.Quality
	}
	return w
}

// Scorer computes composites from a completed FormulaResults.
type Scorer struct {
	weights Weights
}

type Option func(*Scorer)

func WithWeights(w Weights) Option {
	return func(s *Scorer) { s.weights = w.orDefault() }
}

func NewScorer(opts ...Option) *Scorer {
	s := &Scorer{weights: DefaultWeights()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Scorer) Weights() Weights { return s.weights }

// Score builds every composite at full precision. mode decides which
// volatility proxy is used. Pass the result through Round before reporting it.
func (s *Scorer) Score(f models.FormulaResults, mode models.AnalysisMode) models.CompositeScores {
	mom := s.momentum(f)
	mr := s.meanReversion(f)
	return models.CompositeScores{
		Momentum:       mom,
		MeanReversion:  mr,
		Volatility:     s.volatility(f, mode),
		OverallQuality: s.quality(f.Noise.Score, mom.Score, mr.Score),
	}
}

// Round rounds every score and component to two decimals. The volatility level
// is reclassified on the rounded score so both always agree.
func Round(c models.CompositeScores) models.CompositeScores {
	c.Momentum = roundMomentum(c.Momentum)
	c.MeanReversion = roundMeanReversion(c.MeanReversion)
	c.Volatility = roundVolatility(c.Volatility)
	c.OverallQuality = qm.Round2(c.OverallQuality)
	return c
}

// Momentum is signed: positive is bullish.
func (s *Scorer) Momentum(f models.FormulaResults) models.MomentumComposite {
	return roundMomentum(s.momentum(f))
}

func (s *Scorer) momentum(f models.FormulaResults) models.MomentumComposite {
	w := s.weights.Momentum
	c := models.MomentumComponents{
		RSI:        qm.Clamp((f.RSI.Value-50)*2, -100, 100),
		Divergence: f.Divergence.Type.Sign() * qm.Clamp100(f.Divergence.Strength),
		MACD:       100 * f.MACD.Trend.Sign(),
		ADX:        f.ADX.Direction.Sign() * qm.Clamp100(2*f.ADX.ADX),
	}
	if !f.Divergence.HasDivergence {
		c.Divergence = 0
	}
	score := (c.RSI*w.RSI + c.Divergence*w.Divergence + c.MACD*w.MACD + c.ADX*w.ADX) / w.total()
	return models.MomentumComposite{
		Score:      qm.Clamp(score, -100, 100),
		Components: c,
	}
}

func percentBScore(pb float64) float64 {
	if pb < 0 || pb > 1 {
		return 100
	}
	return math.Abs(pb-0.5) * 200
}

func bandWidthScore(level models.BandWidthLevel) float64 {
	switch level {
	case models.WidthTight:
		return 100
	case models.WidthModerate:
		return 70
	default:
		return 40
	}
}

func keltnerScore(level models.KeltnerLevel) float64 {
	switch level {
	case models.KeltnerVeryLow:
		return 100
	case models.KeltnerLow:
		return 70
	default:
		return 40
	}
}

// ReversionDirection reads the expected reversion side from %B and distance to the mean.
func ReversionDirection(percentB, distancePct float64) models.ReversionDirection {
	switch {
	case percentB < 0.2 || distancePct < -5:
		return models.ReversionBuy
	case percentB > 0.8 || distancePct > 5:
		return models.ReversionSell
	default:
		return models.ReversionNeutral
	}
}

// MeanReversion is unsigned; Direction tells which way price is expected to revert.
func (s *Scorer) MeanReversion(f models.FormulaResults) models.MeanReversionComposite {
	return roundMeanReversion(s.meanReversion(f))
}

func (s *Scorer) meanReversion(f models.FormulaResults) models.MeanReversionComposite {
	w := s.weights.MeanReversion
	c := models.MeanReversionComponents{
		PercentB:  percentBScore(f.PercentB.Value),
		BandWidth: bandWidthScore(f.BandWidth.Level),
		Distance:  math.Min(math.Abs(f.DistanceFromMA.Percent)*5, 100),
		Keltner:   keltnerScore(f.Keltner.Level),
	}
	score := (c.PercentB*w.PercentB + c.BandWidth*w.BandWidth + c.Distance*w.Distance + c.Keltner*w.Keltner) / w.total()
	return models.MeanReversionComposite{
		Score:      qm.Clamp100(score),
		Direction:  ReversionDirection(f.PercentB.Value, f.DistanceFromMA.Percent),
		Components: c,
	}
}

// ClassifyVolatilityScore buckets the volatility composite.
func ClassifyVolatilityScore(score float64) models.Severity {
	switch {
	case score < 30:
		return models.SeverityLow
	case score < 50:
		return models.SeverityModerate
	case score < 75:
		return models.SeverityHigh
	default:
		return models.SeverityExtreme
	}
}

// normalizedVol maps realised volatility onto 0..100. Series use annualised
// Garman-Klass; snapshots fall back to the 24h range carried in the ATR proxy.
func normalizedVol(f models.FormulaResults, mode models.AnalysisMode) float64 {
	if mode == models.ModeSeries && f.GarmanKlass.Sufficient {
		return qm.Clamp100(f.GarmanKlass.AnnualizedVol)
	}
	return qm.Clamp100(f.ATR.ATRPct * 5)
}

// Volatility is the base risk score.
func (s *Scorer) Volatility(f models.FormulaResults, mode models.AnalysisMode) models.VolatilityComposite {
	return roundVolatility(s.volatility(f, mode))
}

func (s *Scorer) volatility(f models.FormulaResults, mode models.AnalysisMode) models.VolatilityComposite {
	w := s.weights.Volatility
	c := models.VolatilityComponents{
		BandPosition:  qm.Clamp100(math.Abs(f.Bollinger.PercentB-0.5) * 200),
		RSIExtremity:  qm.Clamp100(math.Abs(f.RSI.Value-50) * 2),
		NormalizedVol: normalizedVol(f, mode),
	}
	score := qm.Clamp100((c.BandPosition*w.BandPosition + c.RSIExtremity*w.RSIExtremity + c.NormalizedVol*w.NormalizedVol) / w.total())
	return models.VolatilityComposite{
		Score:      score,
		Level:      ClassifyVolatilityScore(score),
		Components: c,
	}
}

// Quality rewards low noise and strong composites; bounded to [0, 100].
func (s *Scorer) Quality(noise, momentum, meanReversion float64) float64 {
	return qm.Round2(s.quality(noise, momentum, meanReversion))
}

func (s *Scorer) quality(noise, momentum, meanReversion float64) float64 {
	w := s.weights.Quality
	q := w.Clarity*(100-qm.Clamp100(noise)) +
		w.Momentum*math.Min(math.Abs(momentum), 100) +
		w.MeanReversion*qm.Clamp100(meanReversion)
	return qm.Clamp100(q)
}

func roundMomentum(m models.MomentumComposite) models.MomentumComposite {
	m.Score = qm.Round2(m.Score)
	m.Components = models.MomentumComponents{
		RSI:        qm.Round2(m.Components.RSI),
		Divergence: qm.Round2(m.Components.Divergence),
		MACD:       m.Components.MACD,
		ADX:        qm.Round2(m.Components.ADX),
	}
	return m
}

func roundMeanReversion(m models.MeanReversionComposite) models.MeanReversionComposite {
	m.Score = qm.Round2(m.Score)
	m.Components.PercentB = qm.Round2(m.Components.PercentB)
	m.Components.Distance = qm.Round2(m.Components.Distance)
	return m
}

func roundVolatility(v models.VolatilityComposite) models.VolatilityComposite {
	v.Score = qm.Round2(v.Score)
	v.Level = ClassifyVolatilityScore(v.Score)
	v.Components = models.VolatilityComponents{
		BandPosition:  qm.Round2(v.Components.BandPosition),
		RSIExtremity:  qm.Round2(v.Components.RSIExtremity),
		NormalizedVol: qm.Round2(v.Components.NormalizedVol),
	}
	return v
}
