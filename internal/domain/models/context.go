package models

// External context records supplied by collaborators. They only feed the
// risk contextualizer and the insight helper.

type AccumulationSignal string

const (
	AccumulationStrongBuy  AccumulationSignal = "strong_buy"
	AccumulationBuy        AccumulationSignal = "buy"
	AccumulationNeutral    AccumulationSignal = "neutral"
	AccumulationSell       AccumulationSignal = "sell"
	AccumulationStrongSell AccumulationSignal = "strong_sell"
)

func (a AccumulationSignal) Valid() bool {
	switch a {
	case AccumulationStrongBuy, AccumulationBuy, AccumulationNeutral, AccumulationSell, AccumulationStrongSell:
		return true
	}
	return false
}

type TreasuryContext struct {
	HasInstitutionalHoldings bool               `json:"has_institutional_holdings"`
	AccumulationSignal       AccumulationSignal `json:"accumulation_signal"`
	NetChange30d             float64            `json:"net_change_30d"`
	TotalHoldingsUSD         float64            `json:"total_holdings_usd,omitempty"`
	HolderCount              int                `json:"holder_count,omitempty"`
}

type LiquidationRisk string

const (
	LiquidationLow    LiquidationRisk = "LOW"
	LiquidationMedium LiquidationRisk = "MEDIUM"
	LiquidationHigh   LiquidationRisk = "HIGH"
)

func (l LiquidationRisk) Valid() bool {
	switch l {
	case LiquidationLow, LiquidationMedium, LiquidationHigh:
		return true
	}
	return false
}

type LiquidationContext struct {
	HasLiquidationData    bool            `json:"has_liquidation_data"`
	NearbyLiquidationRisk LiquidationRisk `json:"nearby_liquidation_risk"`
	DominantSide          string          `json:"dominant_side,omitempty"` // longs, shorts or balanced
	LongLiquidationsUSD   float64         `json:"long_liquidations_usd,omitempty"`
	ShortLiquidationsUSD  float64         `json:"short_liquidations_usd,omitempty"`
}

// DerivativesContext carries perpetual-futures positioning.
// FundingRate is a per-interval fraction (0.0001 = 0.01%).
type DerivativesContext struct {
	FundingRate           float64 `json:"funding_rate"`
	OpenInterestUSD       float64 `json:"open_interest_usd,omitempty"`
	OpenInterestChange24h float64 `json:"open_interest_change_24h,omitempty"`
	LongShortRatio        float64 `json:"long_short_ratio,omitempty"`
}
