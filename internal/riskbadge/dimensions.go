package riskbadge

import "github.com/wonny/riskbadge/internal/contracts"

// ComputeDimensions scores all five dimensions in badge order.
//
// Without an indicator row the three price-derived dimensions are reported
// unavailable with no direction; fundamentals are scored independently.
func ComputeDimensions(
	ind *contracts.IndicatorRow,
	fund *contracts.Fundamental,
	volZ *float64,
	peers PeerGroup,
) [5]contracts.DimensionResult {
	var dims [5]contracts.DimensionResult

	if ind != nil {
		dims[0] = ScorePriceHeat(ind)
		dims[1] = ScoreVolatility(ind, volZ)
		dims[2] = ScoreTrend(ind)
	} else {
		dims[0] = unavailable(contracts.DimensionPriceHeat, contracts.DirectionNone)
		dims[1] = unavailable(contracts.DimensionVolatility, contracts.DirectionNone)
		dims[2] = unavailable(contracts.DimensionTrend, contracts.DirectionNone)
	}

	dims[3] = ScoreCompanyHealth(fund, peers)
	dims[4] = ScoreValuation(fund, peers)
	return dims
}
