package models

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// PricePoint is one market-data snapshot for an asset.
type PricePoint struct {
	Symbol            string    `json:"symbol"`
	Price             float64   `json:"price"`
	High24h           float64   `json:"high_24h"`
	Low24h            float64   `json:"low_24h"`
	Volume24h         float64   `json:"volume_24h"`
	MarketCap         float64   `json:"market_cap"`
	PriceChangePct24h float64   `json:"price_change_pct_24h"`
	ATH               float64   `json:"ath"`
	ATL               float64   `json:"atl"`
	Timestamp         time.Time `json:"timestamp"`
}

// Finite reports whether every numeric field is a finite number.
func (p PricePoint) Finite() bool {
	for _, v := range []float64{p.Price, p.High24h, p.Low24h, p.Volume24h, p.MarketCap, p.PriceChangePct24h, p.ATH, p.ATL} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Normalized returns a copy with missing optional fields defaulted from the price.
func (p PricePoint) Normalized() PricePoint {
	if p.High24h <= 0 {
		p.High24h = p.Price
	}
	if p.Low24h <= 0 {
		p.Low24h = p.Price
	}
	if p.Low24h > p.High24h {
		p.Low24h, p.High24h = p.High24h, p.Low24h
	}
	if p.ATH < math.Max(p.Price, p.High24h) {
		p.ATH = math.Max(p.Price, p.High24h)
	}
	if p.ATL <= 0 || p.ATL > math.Min(p.Price, p.Low24h) {
		p.ATL = math.Min(p.Price, p.Low24h)
	}
	if p.Volume24h < 0 {
		p.Volume24h = 0
	}
	return p
}

// RangePct is the 24h high/low range as a percentage of price.
func (p PricePoint) RangePct() float64 {
	if p.Price <= 0 {
		return 0
	}
	return (p.High24h - p.Low24h) / p.Price * 100
}

// Series holds OHLCV arrays aligned by index, oldest first.
// Benchmark is an optional closing-price series for the market the asset is measured against;
// it is aligned to Close from the most recent bar backwards.
type Series struct {
	Open      []float64 `json:"open"`
	High      []float64 `json:"high"`
	Low       []float64 `json:"low"`
	Close     []float64 `json:"close"`
	Volume    []float64 `json:"volume"`
	Benchmark []float64 `json:"benchmark,omitempty"`
}

// Len returns the number of bars, or 0 for a nil series.
func (s *Series) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Close)
}

// Aligned reports whether every OHLCV array has the same length as Close.
func (s *Series) Aligned() bool {
	if s == nil {
		return true
	}
	n := len(s.Close)
	return len(s.Open) == n && len(s.High) == n && len(s.Low) == n && len(s.Volume) == n
}

// Finite reports whether every value in the series is a finite number.
func (s *Series) Finite() bool {
	if s == nil {
		return true
	}
	for _, arr := range [][]float64{s.Open, s.High, s.Low, s.Close, s.Volume, s.Benchmark} {
		for _, v := range arr {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}

// Validate reports the first structural problem with the series, or nil.
func (s *Series) Validate() error {
	switch {
	case s == nil:
		return nil
	case !s.Aligned():
		return fmt.Errorf("ohlcv lengths differ: open=%d high=%d low=%d close=%d volume=%d",
			len(s.Open), len(s.High), len(s.Low), len(s.Close), len(s.Volume))
	case !s.Finite():
		return errors.New("series contains non-finite values")
	}
	return nil
}

// Candle represents an OHLCV bar read from the historical store.
type Candle struct {
	Bucket time.Time
	Symbol string
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// AssetInput bundles everything a single analysis consumes.
type AssetInput struct {
	Price       PricePoint          `json:"price"`
	Series      *Series             `json:"series,omitempty"`
	Treasury    *TreasuryContext    `json:"treasury,omitempty"`
	Liquidation *LiquidationContext `json:"liquidation,omitempty"`
	Derivatives *DerivativesContext `json:"derivatives,omitempty"`
}
