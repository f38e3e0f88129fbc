package models

import "time"

// MomentumComposite is bounded to [-100, 100].
type MomentumComposite struct {
	Score      float64            `json:"score"`
	Components MomentumComponents `json:"components"`
}

type MomentumComponents struct {
	RSI        float64 `json:"rsi"`
	Divergence float64 `json:"divergence"`
	MACD       float64 `json:"macd"`
	ADX        float64 `json:"adx"`
}

// MeanReversionComposite is bounded to [0, 100]; Direction carries the sign.
type MeanReversionComposite struct {
	Score      float64                 `json:"score"`
	Direction  ReversionDirection      `json:"direction"`
	Components MeanReversionComponents `json:"components"`
}

type MeanReversionComponents struct {
	PercentB  float64 `json:"percent_b"`
	BandWidth float64 `json:"band_width"`
	Distance  float64 `json:"distance"`
	Keltner   float64 `json:"keltner"`
}

// Signed maps the score onto [-100, 100] using its direction.
func (m MeanReversionComposite) Signed() float64 {
	return m.Score * m.Direction.Sign()
}

// VolatilityComposite is bounded to [0, 100] and becomes the base risk score.
type VolatilityComposite struct {
	Score      float64              `json:"score"`
	Level      Severity             `json:"level"`
	Components VolatilityComponents `json:"components"`
}

type VolatilityComponents struct {
	BandPosition  float64 `json:"band_position"`
	RSIExtremity  float64 `json:"rsi_extremity"`
	NormalizedVol float64 `json:"normalized_vol"`
}

type CompositeScores struct {
	Momentum       MomentumComposite      `json:"momentum"`
	MeanReversion  MeanReversionComposite `json:"mean_reversion"`
	Volatility     VolatilityComposite    `json:"volatility"`
	OverallQuality float64                `json:"overall_quality"`
}

// RiskMultiplier is one external factor that fired during contextualisation.
type RiskMultiplier struct {
	Source string  `json:"source"`
	Factor float64 `json:"factor"`
	Reason string  `json:"reason"`
}

type RiskContext struct {
	BaseRisk    float64          `json:"base_risk"`
	Multipliers []RiskMultiplier `json:"multipliers,omitempty"`
	RiskFloor   float64          `json:"risk_floor"`
	FinalRisk   int              `json:"final_risk"`
	Level       RiskLevel        `json:"level"`
	Explanation string           `json:"explanation"`
}

// QuantitativeAnalysis is the immutable output of one analysis call.
type QuantitativeAnalysis struct {
	Symbol        string          `json:"symbol"`
	Timestamp     time.Time       `json:"timestamp"`
	Mode          AnalysisMode    `json:"mode"`
	Formulas      FormulaResults  `json:"formulas"`
	Composite     CompositeScores `json:"composite"`
	CombinedScore float64         `json:"combined_score"`
	Signal        Signal          `json:"signal"`
	Confidence    int             `json:"confidence"`
	RiskScore     int             `json:"risk_score"`
	Risk          RiskContext     `json:"risk"`
	Insights      []string        `json:"insights,omitempty"`
}

// Quality ranks analyses: confident, low-risk calls first.
func (a *QuantitativeAnalysis) Quality() float64 {
	return float64(a.Confidence) - float64(a.RiskScore)/2
}
