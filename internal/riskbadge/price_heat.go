package riskbadge

import "github.com/wonny/riskbadge/internal/contracts"

// 가격 과열도: RSI 60% + 볼린저 %B 40%
const (
	priceHeatRSIWeight = 0.6
	priceHeatBBWeight  = 0.4
)

// rsiScore is high at both extremes: deeply oversold and strongly overbought read as risk
func rsiScore(rsi float64) float64 {
	switch {
	case rsi <= 30:
		return 100 - (rsi/30)*30
	case rsi <= 50:
		return 30 - ((rsi-30)/20)*30
	case rsi <= 70:
		return ((rsi - 50) / 20) * 30
	default:
		return 30 + ((rsi-70)/30)*70
	}
}

// bbPercentB returns (close − lower) / (upper − lower), nil for a non-positive band width
func bbPercentB(close, upper, lower float64) *float64 {
	width := upper - lower
	if width <= 0 {
		return nil
	}
	pct := (close - lower) / width
	return &pct
}

func bbScore(pct float64) float64 {
	switch {
	case pct <= 0:
		return 100 + pct*50
	case pct <= 0.2:
		return 70 - (pct/0.2)*40
	case pct <= 0.8:
		return 30 - ((pct-0.2)/0.6)*30
	case pct <= 1.0:
		return ((pct - 0.8) / 0.2) * 30
	default:
		return 30 + (pct-1)*50
	}
}

func heatDirection(rsi float64) contracts.Direction {
	switch {
	case rsi >= 70:
		return contracts.DirectionOverheated
	case rsi <= 30:
		return contracts.DirectionOversold
	default:
		return contracts.DirectionNeutral
	}
}

// nonZero reports whether v is finite and not zero; a zero close or band is treated as missing
func nonZero(v *float64) bool {
	return finite(v) != nil && *v != 0
}

// ScorePriceHeat scores overheating from RSI(14) and Bollinger %B
func ScorePriceHeat(row *contracts.IndicatorRow) contracts.DimensionResult {
	if row == nil || finite(row.RSI14) == nil {
		return unavailable(contracts.DimensionPriceHeat, contracts.DirectionNeutral)
	}

	rsi := *row.RSI14

	var pct *float64
	if nonZero(row.Close) && nonZero(row.BBUpper) && nonZero(row.BBLower) {
		pct = finite(bbPercentB(*row.Close, *row.BBUpper, *row.BBLower))
	}

	var score float64
	if pct != nil {
		score = ClampScore(rsiScore(rsi)*priceHeatRSIWeight + bbScore(*pct)*priceHeatBBWeight)
	} else {
		score = ClampScore(rsiScore(rsi))
	}

	return result(contracts.DimensionPriceHeat, score, heatDirection(rsi), map[string]*float64{
		"rsi":      &rsi,
		"bb_pct_b": roundPtr(pct, 4),
	})
}
