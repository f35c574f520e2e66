package riskbadge

import (
	"math"

	"github.com/wonny/riskbadge/internal/contracts"
)

// 재무 건전성: 부채비율 40% + ROE 30% + 영업이익률 30% (섹터 중앙값 대비)
const (
	healthDebtWeight   = 0.4
	healthROEWeight    = 0.3
	healthMarginWeight = 0.3
)

// debtScore rises with leverage relative to the peer median, or on absolute bands without one
func debtScore(debt float64, median *float64) float64 {
	if ratio := SafeRatio(&debt, median); ratio != nil {
		r := *ratio
		switch {
		case r <= 0.5:
			return 0
		case r <= 1.0:
			return (r - 0.5) / 0.5 * 30
		case r <= 1.5:
			return 30 + (r-1)/0.5*30
		default:
			return 60 + math.Min((r-1.5)/1, 1)*40
		}
	}

	switch {
	case debt <= 0.5:
		return 10
	case debt <= 1.0:
		return 30
	case debt <= 2.0:
		return 60
	default:
		return 85
	}
}

// profitabilityScore rises as ROE or operating margin falls behind the peer median
func profitabilityScore(value float64, median *float64) float64 {
	if median != nil && *median > 0 {
		r := value / *median
		switch {
		case r >= 1.5:
			return 0
		case r >= 1.0:
			return (1.5 - r) / 0.5 * 20
		case r >= 0.5:
			return 20 + (1-r)/0.5*30
		default:
			return 50 + math.Min((0.5-r)/0.5, 1)*50
		}
	}

	switch {
	case value >= 0.15:
		return 10
	case value >= 0.05:
		return 30
	case value >= 0:
		return 55
	default:
		return 80
	}
}

// ScoreCompanyHealth scores leverage and profitability against the resolved peer group.
// The dimension has no direction.
func ScoreCompanyHealth(fund *contracts.Fundamental, peers PeerGroup) contracts.DimensionResult {
	if fund == nil {
		return unavailable(contracts.DimensionCompanyHealth, contracts.DirectionNone)
	}
	debt, roe, margin := finite(fund.DebtRatio), finite(fund.ROE), finite(fund.OperatingMargin)
	if debt == nil && roe == nil && margin == nil {
		return unavailable(contracts.DimensionCompanyHealth, contracts.DirectionNone)
	}

	agg := peers.Resolve()
	var medDebt, medROE, medMargin *float64
	if agg != nil {
		medDebt, medROE, medMargin = agg.MedianDebtRatio, agg.MedianROE, agg.MedianOperatingMargin
	}

	var w weighted
	if debt != nil {
		w.add(debtScore(*debt, medDebt), healthDebtWeight)
	}
	if roe != nil {
		w.add(profitabilityScore(*roe, medROE), healthROEWeight)
	}
	if margin != nil {
		w.add(profitabilityScore(*margin, medMargin), healthMarginWeight)
	}

	return result(contracts.DimensionCompanyHealth, w.score(), contracts.DirectionNone, map[string]*float64{
		"debt_ratio":       roundPtr(debt, 4),
		"roe":              roundPtr(roe, 4),
		"operating_margin": roundPtr(margin, 4),
	})
}
