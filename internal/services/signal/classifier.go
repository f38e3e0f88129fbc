// Package signal turns composite scores into a discrete trading action with a confidence.
package signal

import (
	"math"

	"QuantSignal/internal/domain/models"
	qm "QuantSignal/pkg/quantmath"
)

// Config holds the blend weights, boost sizes and action thresholds.
type Config struct {
	MomentumWeight      float64 `yaml:"momentum_weight"`
	MeanReversionWeight float64 `yaml:"mean_reversion_weight"`
	SqueezeBoost        float64 `yaml:"squeeze_boost"`
	DivergenceBoost     float64 `yaml:"divergence_boost"`
	StrongThreshold     float64 `yaml:"strong_threshold"`
	Threshold           float64 `yaml:"threshold"`
	ScoreWeight         float64 `yaml:"confidence_score_weight"`
	QualityWeight       float64 `yaml:"confidence_quality_weight"`
}

func DefaultConfig() Config {
	return Config{
		MomentumWeight:      0.7,
		MeanReversionWeight: 0.3,
		SqueezeBoost:        20,
		DivergenceBoost:     15,
		StrongThreshold:     60,
		Threshold:           20,
		ScoreWeight:         0.6,
		QualityWeight:       0.4,
	}
}

// Classification is the classifier output.
type Classification struct {
	CombinedScore float64
	Signal        models.Signal
	Confidence    int
}

type Classifier struct {
	cfg Config
}

func NewClassifier(cfg Config) *Classifier {
	if cfg.StrongThreshold <= 0 || cfg.Threshold <= 0 || cfg.Threshold >= cfg.StrongThreshold {
		d := DefaultConfig()
		cfg.StrongThreshold, cfg.Threshold = d.StrongThreshold, d.Threshold
	}
	return &Classifier{cfg: cfg}
}

// SqueezeBoost pushes the score toward the breakout side in proportion to squeeze confidence.
func (c *Classifier) SqueezeBoost(sq models.SqueezeResult) float64 {
	if !sq.IsSqueeze {
		return 0
	}
	return c.cfg.SqueezeBoost * qm.Clamp100(sq.Confidence) / 100 * sq.Breakout.Sign()
}

// DivergenceBoost pushes the score toward the divergence side in proportion to its strength.
func (c *Classifier) DivergenceBoost(d models.DivergenceResult) float64 {
	if !d.HasDivergence {
		return 0
	}
	return c.cfg.DivergenceBoost * qm.Clamp100(d.Strength) / 100 * d.Type.Sign()
}

// Combine blends momentum with signed mean reversion and applies both boosts, clamped to [-100, 100].
func (c *Classifier) Combine(comp models.CompositeScores, sq models.SqueezeResult, div models.DivergenceResult) float64 {
	score := c.cfg.MomentumWeight*comp.Momentum.Score +
		c.cfg.MeanReversionWeight*comp.MeanReversion.Signed() +
		c.SqueezeBoost(sq) +
		c.DivergenceBoost(div)
	return qm.Clamp(score, -100, 100)
}

// Action maps a combined score onto a signal. Thresholds are strict.
func (c *Classifier) Action(combined float64) models.Signal {
	switch {
	case combined > c.cfg.StrongThreshold:
		return models.SignalStrongBuy
	case combined > c.cfg.Threshold:
		return models.SignalBuy
	case combined < -c.cfg.StrongThreshold:
		return models.SignalStrongSell
	case combined < -c.cfg.Threshold:
		return models.SignalSell
	default:
		return models.SignalHold
	}
}

// Confidence grows with conviction and overall quality, capped at 100.
func (c *Classifier) Confidence(combined, quality float64) int {
	v := math.Abs(combined)*c.cfg.ScoreWeight + qm.Clamp100(quality)*c.cfg.QualityWeight
	return int(math.Min(100, math.Max(0, math.Round(v))))
}

func (c *Classifier) Classify(comp models.CompositeScores, sq models.SqueezeResult, div models.DivergenceResult) Classification {
	combined := qm.Round2(c.Combine(comp, sq, div))
	return Classification{
		CombinedScore: combined,
		Signal:        c.Action(combined),
		Confidence:    c.Confidence(combined, comp.OverallQuality),
	}
}
