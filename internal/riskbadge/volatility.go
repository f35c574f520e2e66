package riskbadge

import (
	"math"

	"github.com/wonny/riskbadge/internal/contracts"
)

const (
	volatilityBetaWeight = 0.5
	volatilityZWeight    = 0.5
)

func betaScore(beta float64) float64 {
	b := math.Abs(beta)
	switch {
	case b <= 0.8:
		return b / 0.8 * 20
	case b <= 1.2:
		return 20 + (b-0.8)/0.4*20
	case b <= 2.0:
		return 40 + (b-1.2)/0.8*30
	default:
		return 70 + math.Min((b-2)/3, 1)*30
	}
}

func volatilityZScore(z float64) float64 {
	a := math.Abs(z)
	switch {
	case a <= 1:
		return a * 30
	case a <= 2:
		return 30 + (a-1)*30
	default:
		return 60 + math.Min((a-2)/2, 1)*40
	}
}

// ScoreVolatility scores market sensitivity (beta) and the externally supplied volatility z-score.
// The dimension has no direction.
func ScoreVolatility(row *contracts.IndicatorRow, volZ *float64) contracts.DimensionResult {
	var beta *float64
	if row != nil {
		beta = ClampBeta(row.Beta)
	}
	volZ = finite(volZ)

	if beta == nil && volZ == nil {
		return unavailable(contracts.DimensionVolatility, contracts.DirectionNone)
	}

	var score float64
	switch {
	case beta != nil && volZ != nil:
		score = ClampScore(betaScore(*beta)*volatilityBetaWeight + volatilityZScore(*volZ)*volatilityZWeight)
	case beta != nil:
		score = ClampScore(betaScore(*beta))
	default:
		score = ClampScore(volatilityZScore(*volZ))
	}

	return result(contracts.DimensionVolatility, score, contracts.DirectionNone, map[string]*float64{
		"beta":         roundPtr(beta, 4),
		"volatility_z": roundPtr(volZ, 4),
	})
}
