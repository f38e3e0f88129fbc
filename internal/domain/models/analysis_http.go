package models

// Requests for the analysis HTTP endpoints.

// AnalysisQuery describes a single snapshot passed as query parameters.
type AnalysisQuery struct {
	Symbol    string  `query:"symbol" json:"symbol" validate:"required,max=32"`
	Price     float64 `query:"price" json:"price" validate:"gt=0"`
	High24h   float64 `query:"high" json:"high_24h" validate:"gte=0"`
	Low24h    float64 `query:"low" json:"low_24h" validate:"gte=0"`
	Volume24h float64 `query:"volume" json:"volume_24h" validate:"gte=0"`
	MarketCap float64 `query:"market_cap" json:"market_cap" validate:"gte=0"`
	ChangePct float64 `query:"change_pct" json:"price_change_pct_24h"`
	ATH       float64 `query:"ath" json:"ath" validate:"gte=0"`
	ATL       float64 `query:"atl" json:"atl" validate:"gte=0"`
	TS        string  `query:"ts" json:"ts"`
}

// PricePoint converts the query into a snapshot; ts is resolved by the caller.
func (q *AnalysisQuery) PricePoint() PricePoint {
	return PricePoint{
		Symbol:            q.Symbol,
		Price:             q.Price,
		High24h:           q.High24h,
		Low24h:            q.Low24h,
		Volume24h:         q.Volume24h,
		MarketCap:         q.MarketCap,
		PriceChangePct24h: q.ChangePct,
		ATH:               q.ATH,
		ATL:               q.ATL,
	}
}

// CandlesQuery selects stored history; from and to accept the same formats as ts.
type CandlesQuery struct {
	Symbol    string `query:"symbol" validate:"required,max=32"`
	Timeframe string `query:"tf" default:"1d" validate:"oneof=1m 5m 1h 4h 1d"`
	From      string `query:"from"`
	To        string `query:"to"`
	Limit     int    `query:"limit" validate:"gte=0,lte=5000"`
}

type BatchRequest struct {
	Assets []AssetInput `json:"assets" validate:"required,min=1,dive"`
}

type RankRequest struct {
	Assets        []AssetInput `json:"assets" validate:"required,min=1,dive"`
	MinConfidence int          `json:"min_confidence" default:"0" validate:"gte=0,lte=100"`
}

type RiskRequest struct {
	BaseRisk    float64             `json:"base_risk" validate:"gte=0,lte=100"`
	Treasury    *TreasuryContext    `json:"treasury"`
	Liquidation *LiquidationContext `json:"liquidation"`
}

// BatchItem is one entry of a batch response. Error is set instead of
// Analysis when the asset failed under the isolate policy.
type BatchItem struct {
	Symbol   string                `json:"symbol"`
	Analysis *QuantitativeAnalysis `json:"analysis,omitempty"`
	Error    string                `json:"error,omitempty"`
}

type BatchResponse struct {
	Items     []BatchItem `json:"items"`
	Succeeded int         `json:"succeeded"`
	Failed    int         `json:"failed"`
}

type RankResponse struct {
	Items []RankedAnalysis `json:"items"`
}

type RankedAnalysis struct {
	Rank     int                   `json:"rank"`
	Quality  float64               `json:"quality"`
	Analysis *QuantitativeAnalysis `json:"analysis"`
}
