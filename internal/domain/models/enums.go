package models

// Classification enums. Every formula result carries exactly one of these;
// the thresholds that select a value live next to the formula.

// Signal is the discrete trading action.
type Signal string

const (
	SignalStrongBuy  Signal = "STRONG_BUY"
	SignalBuy        Signal = "BUY"
	SignalHold       Signal = "HOLD"
	SignalSell       Signal = "SELL"
	SignalStrongSell Signal = "STRONG_SELL"
)

func (s Signal) Valid() bool {
	switch s {
	case SignalStrongBuy, SignalBuy, SignalHold, SignalSell, SignalStrongSell:
		return true
	}
	return false
}

// Direction is a three-way trend direction.
type Direction string

const (
	DirectionBullish Direction = "BULLISH"
	DirectionBearish Direction = "BEARISH"
	DirectionNeutral Direction = "NEUTRAL"
)

// Sign returns +1, -1 or 0.
func (d Direction) Sign() float64 {
	switch d {
	case DirectionBullish:
		return 1
	case DirectionBearish:
		return -1
	}
	return 0
}

// Bias marks a one-off event such as a divergence or a squeeze breakout.
type Bias string

const (
	BiasBullish Bias = "BULLISH"
	BiasBearish Bias = "BEARISH"
	BiasNone    Bias = "NONE"
)

func (b Bias) Sign() float64 {
	switch b {
	case BiasBullish:
		return 1
	case BiasBearish:
		return -1
	}
	return 0
}

// TrendStrength buckets ADX.
type TrendStrength string

const (
	TrendAbsent     TrendStrength = "ABSENT"
	TrendWeak       TrendStrength = "WEAK"
	TrendStrong     TrendStrength = "STRONG"
	TrendVeryStrong TrendStrength = "VERY_STRONG"
	TrendExtreme    TrendStrength = "EXTREME"
)

type RSIZone string

const (
	RSIExtremeOversold   RSIZone = "EXTREME_OVERSOLD"
	RSIOversold          RSIZone = "OVERSOLD"
	RSINeutral           RSIZone = "NEUTRAL"
	RSIOverbought        RSIZone = "OVERBOUGHT"
	RSIExtremeOverbought RSIZone = "EXTREME_OVERBOUGHT"
)

type BandPosition string

const (
	BandAboveUpper BandPosition = "ABOVE_UPPER"
	BandUpperHalf  BandPosition = "UPPER_HALF"
	BandLowerHalf  BandPosition = "LOWER_HALF"
	BandBelowLower BandPosition = "BELOW_LOWER"
)

// BandWidthLevel buckets normalised Bollinger width.
type BandWidthLevel string

const (
	WidthTight    BandWidthLevel = "TIGHT"
	WidthModerate BandWidthLevel = "MODERATE"
	WidthNormal   BandWidthLevel = "NORMAL"
	WidthWide     BandWidthLevel = "WIDE"
)

// VolatilityLevel buckets annualised volatility in percent.
type VolatilityLevel string

const (
	VolVeryLow  VolatilityLevel = "VERY_LOW"
	VolLow      VolatilityLevel = "LOW"
	VolModerate VolatilityLevel = "MODERATE"
	VolHigh     VolatilityLevel = "HIGH"
	VolExtreme  VolatilityLevel = "EXTREME"
)

type PercentBZone string

const (
	PercentBBelowBand  PercentBZone = "BELOW_BAND"
	PercentBOversold   PercentBZone = "OVERSOLD"
	PercentBNeutral    PercentBZone = "NEUTRAL"
	PercentBOverbought PercentBZone = "OVERBOUGHT"
	PercentBAboveBand  PercentBZone = "ABOVE_BAND"
)

type DistanceLevel string

const (
	DistanceFarBelow DistanceLevel = "FAR_BELOW"
	DistanceBelow    DistanceLevel = "BELOW"
	DistanceNear     DistanceLevel = "NEAR"
	DistanceAbove    DistanceLevel = "ABOVE"
	DistanceFarAbove DistanceLevel = "FAR_ABOVE"
)

type KeltnerLevel string

const (
	KeltnerVeryLow KeltnerLevel = "VERY_LOW"
	KeltnerLow     KeltnerLevel = "LOW"
	KeltnerNormal  KeltnerLevel = "NORMAL"
	KeltnerHigh    KeltnerLevel = "HIGH"
)

type RegressionTrend string

const (
	RegressionUp   RegressionTrend = "UP"
	RegressionDown RegressionTrend = "DOWN"
	RegressionFlat RegressionTrend = "FLAT"
)

type ZScoreLevel string

const (
	ZExtremeLow  ZScoreLevel = "EXTREME_LOW"
	ZLow         ZScoreLevel = "LOW"
	ZNormal      ZScoreLevel = "NORMAL"
	ZHigh        ZScoreLevel = "HIGH"
	ZExtremeHigh ZScoreLevel = "EXTREME_HIGH"
)

type CorrelationStrength string

const (
	CorrStrongNegative CorrelationStrength = "STRONG_NEGATIVE"
	CorrNegative       CorrelationStrength = "NEGATIVE"
	CorrNone           CorrelationStrength = "NONE"
	CorrPositive       CorrelationStrength = "POSITIVE"
	CorrStrongPositive CorrelationStrength = "STRONG_POSITIVE"
)

// Severity is the shared four-way bucket used by noise, tail risk and the volatility composite.
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityModerate Severity = "MODERATE"
	SeverityHigh     Severity = "HIGH"
	SeverityExtreme  Severity = "EXTREME"
)

func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityModerate, SeverityHigh, SeverityExtreme:
		return true
	}
	return false
}

type BetaClass string

const (
	BetaInverse    BetaClass = "INVERSE"
	BetaDefensive  BetaClass = "DEFENSIVE"
	BetaNeutral    BetaClass = "NEUTRAL"
	BetaAggressive BetaClass = "AGGRESSIVE"
)

type DrawdownLevel string

const (
	DrawdownLow      DrawdownLevel = "LOW"
	DrawdownModerate DrawdownLevel = "MODERATE"
	DrawdownHigh     DrawdownLevel = "HIGH"
	DrawdownSevere   DrawdownLevel = "SEVERE"
)

type CalmarRating string

const (
	CalmarNegative   CalmarRating = "NEGATIVE"
	CalmarPoor       CalmarRating = "POOR"
	CalmarAcceptable CalmarRating = "ACCEPTABLE"
	CalmarGood       CalmarRating = "GOOD"
	CalmarExcellent  CalmarRating = "EXCELLENT"
)

type VWAPPosition string

const (
	VWAPAbove VWAPPosition = "ABOVE"
	VWAPBelow VWAPPosition = "BELOW"
	VWAPAt    VWAPPosition = "AT"
)

type VolumeTrend string

const (
	VolumeSurging    VolumeTrend = "SURGING"
	VolumeRising     VolumeTrend = "RISING"
	VolumeStable     VolumeTrend = "STABLE"
	VolumeFalling    VolumeTrend = "FALLING"
	VolumeCollapsing VolumeTrend = "COLLAPSING"
)

// ReversionDirection is the action implied by the mean-reversion composite.
type ReversionDirection string

const (
	ReversionBuy     ReversionDirection = "BUY"
	ReversionSell    ReversionDirection = "SELL"
	ReversionNeutral ReversionDirection = "NEUTRAL"
)

func (d ReversionDirection) Sign() float64 {
	switch d {
	case ReversionBuy:
		return 1
	case ReversionSell:
		return -1
	}
	return 0
}

// RiskLevel buckets the contextualised risk score.
type RiskLevel string

const (
	RiskLow     RiskLevel = "LOW"
	RiskMedium  RiskLevel = "MEDIUM"
	RiskHigh    RiskLevel = "HIGH"
	RiskExtreme RiskLevel = "EXTREME"
)

func (r RiskLevel) Valid() bool {
	switch r {
	case RiskLow, RiskMedium, RiskHigh, RiskExtreme:
		return true
	}
	return false
}

// AnalysisMode records whether the formulas ran on a series or on a snapshot.
type AnalysisMode string

const (
	ModeSnapshot AnalysisMode = "SNAPSHOT"
	ModeSeries   AnalysisMode = "SERIES"
)
