package riskbadge

import (
	"math"

	"github.com/wonny/riskbadge/internal/contracts"
)

const (
	valuationPERWeight = 0.5
	valuationPBRWeight = 0.5

	// 적자 PER: 영업이익이 나면 회계상 손실로 보고 50, 아니면 구조적 문제로 70
	negativePEROperatingProfit = 50.0
	negativePERStructural      = 70.0
)

// relativeMultipleScore maps multiple / peer median onto [0, 100]
func relativeMultipleScore(r float64) float64 {
	switch {
	case r <= 0.5:
		return 0
	case r <= 1.0:
		return (r - 0.5) / 0.5 * 25
	case r <= 1.5:
		return 25 + (r-1)/0.5*25
	case r <= 2.5:
		return 50 + (r-1.5)*25
	default:
		return 75 + math.Min((r-2.5)/2, 1)*25
	}
}

func perScore(per float64, median, opMargin *float64) float64 {
	if per <= 0 {
		if opMargin != nil && *opMargin > 0 {
			return negativePEROperatingProfit
		}
		return negativePERStructural
	}

	if ratio := SafeRatio(&per, median); ratio != nil {
		return relativeMultipleScore(*ratio)
	}

	switch {
	case per <= 10:
		return 10
	case per <= 20:
		return 30
	case per <= 40:
		return 55
	default:
		return 80
	}
}

func pbrScore(pbr float64, median *float64) float64 {
	if ratio := SafeRatio(&pbr, median); ratio != nil {
		return relativeMultipleScore(*ratio)
	}

	switch {
	case pbr <= 1.0:
		return 10
	case pbr <= 2.0:
		return 30
	case pbr <= 5.0:
		return 55
	default:
		return 80
	}
}

// ScoreValuation scores PER and PBR against the resolved peer group
func ScoreValuation(fund *contracts.Fundamental, peers PeerGroup) contracts.DimensionResult {
	if fund == nil {
		return unavailable(contracts.DimensionValuation, contracts.DirectionNone)
	}
	per, pbr := finite(fund.PER), finite(fund.PBR)
	if per == nil && pbr == nil {
		return unavailable(contracts.DimensionValuation, contracts.DirectionNone)
	}

	agg := peers.Resolve()
	var medPER, medPBR *float64
	if agg != nil {
		medPER, medPBR = agg.MedianPER, agg.MedianPBR
	}

	var w weighted
	if per != nil {
		w.add(perScore(*per, medPER, finite(fund.OperatingMargin)), valuationPERWeight)
	}
	if pbr != nil {
		w.add(pbrScore(*pbr, medPBR), valuationPBRWeight)
	}

	return result(contracts.DimensionValuation, w.score(), contracts.DirectionNone, map[string]*float64{
		"per": roundPtr(per, 2),
		"pbr": roundPtr(pbr, 4),
	})
}
