package risk

import (
	"testing"

	"QuantSignal/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func treasury(sig models.AccumulationSignal, change float64) *models.TreasuryContext {
	return &models.TreasuryContext{HasInstitutionalHoldings: true, AccumulationSignal: sig, NetChange30d: change}
}

func liquidation(level models.LiquidationRisk, side string) *models.LiquidationContext {
	return &models.LiquidationContext{HasLiquidationData: true, NearbyLiquidationRisk: level, DominantSide: side}
}

func TestContextualize(t *testing.T) {
	c := NewContextualizer(DefaultConfig())

	tests := []struct {
		name     string
		base     float64
		treasury *models.TreasuryContext
		liq      *models.LiquidationContext
		final    int
		level    models.RiskLevel
		floor    float64
		fired    int
	}{
		{name: "no context", base: 42.4, final: 42, level: models.RiskMedium},
		{name: "accumulation", base: 40, treasury: treasury(models.AccumulationStrongBuy, 5), final: 34, level: models.RiskMedium, fired: 1},
		{name: "distribution floor", base: 30, treasury: treasury(models.AccumulationStrongSell, -3), final: 45, level: models.RiskMedium, floor: 45, fired: 1},
		{name: "distribution above floor", base: 60, treasury: treasury(models.AccumulationSell, 0), final: 66, level: models.RiskHigh, floor: 45, fired: 1},
		{name: "high liquidation and distribution", base: 10, treasury: treasury(models.AccumulationSell, 0), liq: liquidation(models.LiquidationHigh, "longs"), final: 60, level: models.RiskHigh, floor: 60, fired: 2},
		{name: "medium liquidation", base: 40, liq: liquidation(models.LiquidationMedium, ""), final: 46, level: models.RiskMedium, fired: 1},
		{name: "capped at 100", base: 95, treasury: treasury(models.AccumulationSell, 0), liq: liquidation(models.LiquidationHigh, ""), final: 100, level: models.RiskExtreme, floor: 60, fired: 2},
		{name: "low liquidation does not fire", base: 20, liq: liquidation(models.LiquidationLow, ""), final: 20, level: models.RiskLow},
		{name: "flags off", base: 20, treasury: &models.TreasuryContext{AccumulationSignal: models.AccumulationStrongSell}, liq: &models.LiquidationContext{NearbyLiquidationRisk: models.LiquidationHigh}, final: 20, level: models.RiskLow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Contextualize(tt.base, tt.treasury, tt.liq)
			assert.Equal(t, tt.final, got.FinalRisk)
			assert.Equal(t, tt.level, got.Level)
			assert.Equal(t, tt.floor, got.RiskFloor)
			assert.Len(t, got.Multipliers, tt.fired)
			assert.GreaterOrEqual(t, got.FinalRisk, 0)
			assert.LessOrEqual(t, got.FinalRisk, 100)
		})
	}
}

func TestContextualizeExplanation(t *testing.T) {
	c := NewContextualizer(DefaultConfig())

	plain := c.Contextualize(50, nil, nil)
	assert.Equal(t, "Risk derived from technical indicators only", plain.Explanation)

	both := c.Contextualize(50, treasury(models.AccumulationBuy, 0), liquidation(models.LiquidationMedium, "shorts"))
	assert.Equal(t, "Institutional accumulation lowers risk + Moderate liquidation cluster nearby", both.Explanation)
	require.Len(t, both.Multipliers, 2)
	assert.Equal(t, "treasury", both.Multipliers[0].Source)
	assert.Equal(t, "liquidation", both.Multipliers[1].Source)
}

func TestClassifyLevel(t *testing.T) {
	assert.Equal(t, models.RiskLow, ClassifyLevel(29))
	assert.Equal(t, models.RiskMedium, ClassifyLevel(30))
	assert.Equal(t, models.RiskMedium, ClassifyLevel(49))
	assert.Equal(t, models.RiskHigh, ClassifyLevel(50))
	assert.Equal(t, models.RiskHigh, ClassifyLevel(74))
	assert.Equal(t, models.RiskExtreme, ClassifyLevel(75))
}

func TestInsights(t *testing.T) {
	c := NewContextualizer(DefaultConfig())

	assert.Empty(t, c.Insights(nil, nil, nil))

	got := c.Insights(
		treasury(models.AccumulationBuy, 12.34),
		liquidation(models.LiquidationHigh, "longs"),
		&models.DerivativesContext{FundingRate: 0.0005, OpenInterestChange24h: -15},
	)
	assert.Equal(t, []string{
		"Institutions accumulated 12.3% more in 30d",
		"High liquidation cluster nearby, mostly longs",
		"Funding rate 0.050% (longs pay shorts)",
		"Open interest fell 15.0% in 24h",
	}, got)

	reduced := c.Insights(treasury(models.AccumulationSell, -4.26), liquidation(models.LiquidationMedium, "balanced"), &models.DerivativesContext{FundingRate: -0.00002})
	assert.Equal(t, []string{
		"Institutions reduced holdings by 4.3% in 30d",
		"Medium liquidation cluster nearby",
	}, reduced)
}
