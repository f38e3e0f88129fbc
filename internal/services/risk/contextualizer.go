// Package risk adjusts the technical risk score with institutional and
// derivatives context and produces human-readable context insights.
package risk

import (
	"fmt"
	"math"
	"strings"

	"QuantSignal/internal/domain/models"
	qm "QuantSignal/pkg/quantmath"
)

const defaultExplanation = "Risk derived from technical indicators only"

// Config holds the multipliers and floors applied by Contextualize.
type Config struct {
	AccumulationFactor  float64 `yaml:"accumulation_factor"`
	DistributionFactor  float64 `yaml:"distribution_factor"`
	DistributionFloor   float64 `yaml:"distribution_floor"`
	HighLiqFactor       float64 `yaml:"high_liquidation_factor"`
	HighLiqFloor        float64 `yaml:"high_liquidation_floor"`
	MediumLiqFactor     float64 `yaml:"medium_liquidation_factor"`
	FundingInsightMin   float64 `yaml:"funding_insight_min"`
	OpenInterestMinMove float64 `yaml:"open_interest_min_move"`
}

func DefaultConfig() Config {
	return Config{
		AccumulationFactor:  0.85,
		DistributionFactor:  1.1,
		DistributionFloor:   45,
		HighLiqFactor:       1.3,
		HighLiqFloor:        60,
		MediumLiqFactor:     1.15,
		FundingInsightMin:   0.0001,
		OpenInterestMinMove: 10,
	}
}

type Contextualizer struct {
	cfg Config
}

func NewContextualizer(cfg Config) *Contextualizer {
	d := DefaultConfig()
	if cfg.AccumulationFactor <= 0 {
		cfg.AccumulationFactor = d.AccumulationFactor
	}
	if cfg.DistributionFactor <= 0 {
		cfg.DistributionFactor = d.DistributionFactor
	}
	if cfg.HighLiqFactor <= 0 {
		cfg.HighLiqFactor = d.HighLiqFactor
	}
	if cfg.MediumLiqFactor <= 0 {
		cfg.MediumLiqFactor = d.MediumLiqFactor
	}
	return &Contextualizer{cfg: cfg}
}

// ClassifyLevel buckets a final risk score.
func ClassifyLevel(score int) models.RiskLevel {
	switch {
	case score < 30:
		return models.RiskLow
	case score < 50:
		return models.RiskMedium
	case score < 75:
		return models.RiskHigh
	default:
		return models.RiskExtreme
	}
}

// Contextualize multiplies base risk by every factor that fires and raises the
// result to the highest floor. Either context may be nil.
func (c *Contextualizer) Contextualize(baseRisk float64, treasury *models.TreasuryContext, liq *models.LiquidationContext) models.RiskContext {
	base := qm.Clamp100(baseRisk)
	factor, floor := 1.0, 0.0
	var fired []models.RiskMultiplier

	if treasury != nil && treasury.HasInstitutionalHoldings {
		switch treasury.AccumulationSignal {
		case models.AccumulationBuy, models.AccumulationStrongBuy:
			fired = append(fired, models.RiskMultiplier{
				Source: "treasury",
				Factor: c.cfg.AccumulationFactor,
				Reason: "Institutional accumulation lowers risk",
			})
		case models.AccumulationSell, models.AccumulationStrongSell:
			fired = append(fired, models.RiskMultiplier{
				Source: "treasury",
				Factor: c.cfg.DistributionFactor,
				Reason: "Institutional distribution raises risk",
			})
			floor = math.Max(floor, c.cfg.DistributionFloor)
		}
	}

	if liq != nil && liq.HasLiquidationData {
		switch liq.NearbyLiquidationRisk {
		case models.LiquidationHigh:
			fired = append(fired, models.RiskMultiplier{
				Source: "liquidation",
				Factor: c.cfg.HighLiqFactor,
				Reason: "High liquidation cluster nearby",
			})
			floor = math.Max(floor, c.cfg.HighLiqFloor)
		case models.LiquidationMedium:
			fired = append(fired, models.RiskMultiplier{
				Source: "liquidation",
				Factor: c.cfg.MediumLiqFactor,
				Reason: "Moderate liquidation cluster nearby",
			})
		}
	}

	reasons := make([]string, 0, len(fired))
	for _, m := range fired {
		factor *= m.Factor
		reasons = append(reasons, m.Reason)
	}
	explanation := defaultExplanation
	if len(reasons) > 0 {
		explanation = strings.Join(reasons, " + ")
	}

	final := int(math.Round(qm.Clamp100(math.Max(floor, base*factor))))
	return models.RiskContext{
		BaseRisk:    qm.Round2(base),
		Multipliers: fired,
		RiskFloor:   floor,
		FinalRisk:   final,
		Level:       ClassifyLevel(final),
		Explanation: explanation,
	}
}

// Insights renders the context records as short sentences, in a fixed order.
// Nil contexts contribute nothing.
func (c *Contextualizer) Insights(treasury *models.TreasuryContext, liq *models.LiquidationContext, deriv *models.DerivativesContext) []string {
	var out []string
	if treasury != nil && treasury.HasInstitutionalHoldings {
		switch {
		case treasury.NetChange30d > 0:
			out = append(out, fmt.Sprintf("Institutions accumulated %.1f%% more in 30d", treasury.NetChange30d))
		case treasury.NetChange30d < 0:
			out = append(out, fmt.Sprintf("Institutions reduced holdings by %.1f%% in 30d", math.Abs(treasury.NetChange30d)))
		}
	}
	if liq != nil && liq.HasLiquidationData {
		switch liq.NearbyLiquidationRisk {
		case models.LiquidationHigh, models.LiquidationMedium:
			out = append(out, liquidationInsight(liq))
		}
	}
	if deriv != nil {
		if math.Abs(deriv.FundingRate) >= c.cfg.FundingInsightMin && deriv.FundingRate != 0 {
			side := "longs pay shorts"
			if deriv.FundingRate < 0 {
				side = "shorts pay longs"
			}
			out = append(out, fmt.Sprintf("Funding rate %.3f%% (%s)", deriv.FundingRate*100, side))
		}
		if math.Abs(deriv.OpenInterestChange24h) >= c.cfg.OpenInterestMinMove {
			verb := "rose"
			if deriv.OpenInterestChange24h < 0 {
				verb = "fell"
			}
			out = append(out, fmt.Sprintf("Open interest %s %.1f%% in 24h", verb, math.Abs(deriv.OpenInterestChange24h)))
		}
	}
	return out
}

func liquidationInsight(liq *models.LiquidationContext) string {
	level := strings.ToLower(string(liq.NearbyLiquidationRisk))
	switch liq.DominantSide {
	case "longs", "shorts":
		return fmt.Sprintf("%s liquidation cluster nearby, mostly %s", strings.ToUpper(level[:1])+level[1:], liq.DominantSide)
	default:
		return fmt.Sprintf("%s liquidation cluster nearby", strings.ToUpper(level[:1])+level[1:])
	}
}
