package riskbadge

import (
	"math"

	"github.com/wonny/riskbadge/internal/contracts"
)

// 강한 하락 추세는 그대로, 강한 상승 추세는 0.6배로 반영
const (
	uptrendWeight   = 0.6
	downtrendWeight = 1.0
)

func adxBaseScore(adx float64) float64 {
	switch {
	case adx <= 20:
		return adx
	case adx <= 40:
		return 20 + (adx-20)/20*30
	case adx <= 60:
		return 50 + (adx-40)/20*25
	default:
		return 75 + math.Min((adx-60)/20, 1)*25
	}
}

func trendDirection(plusDI, minusDI *float64) contracts.Direction {
	if plusDI == nil || minusDI == nil {
		return contracts.DirectionNeutral
	}
	switch {
	case *plusDI > *minusDI:
		return contracts.DirectionUptrend
	case *minusDI > *plusDI:
		return contracts.DirectionDowntrend
	default:
		return contracts.DirectionNeutral
	}
}

// ScoreTrend scores trend strength from ADX(14), weighted by the +DI / −DI direction
func ScoreTrend(row *contracts.IndicatorRow) contracts.DimensionResult {
	if row == nil || finite(row.ADX14) == nil {
		return unavailable(contracts.DimensionTrend, contracts.DirectionNeutral)
	}

	adx := *row.ADX14
	plusDI, minusDI := finite(row.PlusDI), finite(row.MinusDI)
	dir := trendDirection(plusDI, minusDI)

	weight := uptrendWeight
	if dir == contracts.DirectionDowntrend {
		weight = downtrendWeight
	}
	score := ClampScore(adxBaseScore(adx) * weight)

	return result(contracts.DimensionTrend, score, dir, map[string]*float64{
		"adx":      roundPtr(&adx, 2),
		"plus_di":  roundPtr(plusDI, 2),
		"minus_di": roundPtr(minusDI, 2),
	})
}
