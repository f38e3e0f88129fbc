package models

// Formula results. Each value is built fresh by one indicator call and never mutated.

// Trend

type ADXResult struct {
	ADX       float64       `json:"adx"`
	PlusDI    float64       `json:"plus_di"`
	MinusDI   float64       `json:"minus_di"`
	Strength  TrendStrength `json:"strength"`
	Direction Direction     `json:"direction"`
}

type SARResult struct {
	SAR         float64   `json:"sar"`
	DistancePct float64   `json:"distance_pct"`
	Trend       Direction `json:"trend"`
}

type SupertrendResult struct {
	Value   float64   `json:"value"`
	ATR     float64   `json:"atr"`
	Trend   Direction `json:"trend"`
	Flipped bool      `json:"flipped"`
}

type MovingAverageResult struct {
	SMA20     float64   `json:"sma20"`
	SMA50     float64   `json:"sma50"`
	EMA12     float64   `json:"ema12"`
	EMA26     float64   `json:"ema26"`
	Alignment Direction `json:"alignment"`
}

// Momentum

type RSIResult struct {
	Value float64 `json:"value"`
	Zone  RSIZone `json:"zone"`
}

type DivergenceResult struct {
	HasDivergence  bool    `json:"has_divergence"`
	Type           Bias    `json:"type"`
	Strength       float64 `json:"strength"`
	PriceChangePct float64 `json:"price_change_pct"`
	RSIChange      float64 `json:"rsi_change"`
}

type MACDResult struct {
	MACD      float64   `json:"macd"`
	Signal    float64   `json:"signal"`
	Histogram float64   `json:"histogram"`
	Trend     Direction `json:"trend"`
}

// Volatility

type BollingerResult struct {
	Upper     float64        `json:"upper"`
	Middle    float64        `json:"middle"`
	Lower     float64        `json:"lower"`
	Width     float64        `json:"width"`
	PercentB  float64        `json:"percent_b"`
	Position  BandPosition   `json:"position"`
	WidthBand BandWidthLevel `json:"width_level"`
}

type SqueezeResult struct {
	Width      float64        `json:"width"`
	Level      BandWidthLevel `json:"level"`
	IsSqueeze  bool           `json:"is_squeeze"`
	Breakout   Bias           `json:"breakout"`
	Confidence float64        `json:"confidence"`
}

type GarmanKlassResult struct {
	DailyVol      float64         `json:"daily_vol"`
	AnnualizedVol float64         `json:"annualized_vol"`
	Level         VolatilityLevel `json:"level"`
	Sufficient    bool            `json:"sufficient"`
}

type ATRResult struct {
	ATR    float64 `json:"atr"`
	ATRPct float64 `json:"atr_pct"`
}

// Mean reversion

type PercentBResult struct {
	Value  float64      `json:"value"`
	Zone   PercentBZone `json:"zone"`
	Breach bool         `json:"breach"`
}

type BandWidthResult struct {
	Value float64        `json:"value"`
	Level BandWidthLevel `json:"level"`
}

type DistanceResult struct {
	MovingAverage float64       `json:"moving_average"`
	Percent       float64       `json:"percent"`
	Level         DistanceLevel `json:"level"`
}

type KeltnerResult struct {
	Upper  float64      `json:"upper"`
	Middle float64      `json:"middle"`
	Lower  float64      `json:"lower"`
	Width  float64      `json:"width"`
	Level  KeltnerLevel `json:"level"`
}

// Statistical

type RegressionResult struct {
	Slope     float64         `json:"slope"`
	Intercept float64         `json:"intercept"`
	RSquared  float64         `json:"r_squared"`
	SlopePct  float64         `json:"slope_pct"`
	Trend     RegressionTrend `json:"trend"`
}

type ZScoreResult struct {
	Value float64     `json:"value"`
	Level ZScoreLevel `json:"level"`
}

type CorrelationResult struct {
	Correlation float64             `json:"correlation"`
	Covariance  float64             `json:"covariance"`
	StdDev      float64             `json:"std_dev"`
	Strength    CorrelationStrength `json:"strength"`
}

type NoiseResult struct {
	Score        float64  `json:"score"`
	ADXComponent float64  `json:"adx_component"`
	ATRComponent float64  `json:"atr_component"`
	Agreement    float64  `json:"agreement"`
	Level        Severity `json:"level"`
}

// Risk

type BetaResult struct {
	Beta           float64   `json:"beta"`
	Classification BetaClass `json:"classification"`
}

type VaRResult struct {
	VaR95  float64  `json:"var_95"`
	CVaR95 float64  `json:"cvar_95"`
	Level  Severity `json:"level"`
}

type DrawdownResult struct {
	MaxDrawdown float64       `json:"max_drawdown"`
	PeakIndex   int           `json:"peak_index"`
	TroughIndex int           `json:"trough_index"`
	Level       DrawdownLevel `json:"level"`
}

type CalmarResult struct {
	Ratio            float64      `json:"ratio"`
	AnnualizedReturn float64      `json:"annualized_return"`
	MaxDrawdown      float64      `json:"max_drawdown"`
	Rating           CalmarRating `json:"rating"`
}

// Volume

type VWAPResult struct {
	VWAP         float64      `json:"vwap"`
	DeviationPct float64      `json:"deviation_pct"`
	Position     VWAPPosition `json:"position"`
}

type VolumeROCResult struct {
	ROC   float64     `json:"roc"`
	Trend VolumeTrend `json:"trend"`
}

// FormulaResults is the joined output of every formula for one asset.
type FormulaResults struct {
	ADX            ADXResult           `json:"adx"`
	SAR            SARResult           `json:"parabolic_sar"`
	Supertrend     SupertrendResult    `json:"supertrend"`
	MovingAverages MovingAverageResult `json:"moving_averages"`

	RSI        RSIResult        `json:"rsi"`
	Divergence DivergenceResult `json:"rsi_divergence"`
	MACD       MACDResult       `json:"macd"`

	Bollinger   BollingerResult   `json:"bollinger"`
	Squeeze     SqueezeResult     `json:"squeeze"`
	GarmanKlass GarmanKlassResult `json:"garman_klass"`
	ATR         ATRResult         `json:"atr"`

	PercentB       PercentBResult  `json:"percent_b"`
	BandWidth      BandWidthResult `json:"band_width"`
	DistanceFromMA DistanceResult  `json:"distance_from_ma"`
	Keltner        KeltnerResult   `json:"keltner"`

	Regression  RegressionResult  `json:"regression"`
	ZScore      ZScoreResult      `json:"z_score"`
	Correlation CorrelationResult `json:"correlation"`
	Noise       NoiseResult       `json:"noise"`

	Beta     BetaResult     `json:"beta"`
	VaR      VaRResult      `json:"var"`
	Drawdown DrawdownResult `json:"drawdown"`
	Calmar   CalmarResult   `json:"calmar"`

	VWAP      VWAPResult      `json:"vwap"`
	VolumeROC VolumeROCResult `json:"volume_roc"`
}
