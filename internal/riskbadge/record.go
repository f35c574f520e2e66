package riskbadge

import (
	"time"

	"github.com/wonny/riskbadge/internal/contracts"
)

// Evaluate scores one stock and folds the dimensions into a badge record dated asOf
func Evaluate(
	stockID int64,
	market contracts.Market,
	asOf time.Time,
	ind *contracts.IndicatorRow,
	fund *contracts.Fundamental,
	volZ *float64,
	peers PeerGroup,
) contracts.BadgeRecord {
	dims := ComputeDimensions(ind, fund, volZ, peers)
	return BuildRecord(stockID, market, asOf, dims[:])
}

// BuildRecord assembles a badge record from scored dimensions.
// The date is truncated to the calendar day.
func BuildRecord(stockID int64, market contracts.Market, asOf time.Time, dims []contracts.DimensionResult) contracts.BadgeRecord {
	out := make([]contracts.DimensionResult, len(dims))
	copy(out, dims)

	return contracts.BadgeRecord{
		StockID:     stockID,
		Market:      market,
		Date:        time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, time.UTC),
		SummaryTier: ComputeComposite(out),
		Dimensions:  out,
	}
}
