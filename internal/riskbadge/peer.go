package riskbadge

import (
	"sort"

	"github.com/wonny/riskbadge/internal/contracts"
)

// DefaultMinSectorCount is the smallest sector aggregate trusted over the market aggregate
const DefaultMinSectorCount = 5

// PeerGroup carries the peer aggregates a stock is compared against
type PeerGroup struct {
	Sector *contracts.PeerAggregate
	Market *contracts.PeerAggregate
	// MinSectorCount overrides DefaultMinSectorCount when positive
	MinSectorCount int
}

// Resolve picks the aggregate used for relative scoring
func (p PeerGroup) Resolve() *contracts.PeerAggregate {
	minCount := p.MinSectorCount
	if minCount <= 0 {
		minCount = DefaultMinSectorCount
	}
	return finiteAggregate(sectorOrMarket(p.Sector, p.Market, minCount))
}

// finiteAggregate returns agg, or a copy without its non-finite medians
func finiteAggregate(agg *contracts.PeerAggregate) *contracts.PeerAggregate {
	if agg == nil {
		return nil
	}
	medians := []*float64{agg.MedianPER, agg.MedianPBR, agg.MedianROE, agg.MedianOperatingMargin, agg.MedianDebtRatio}
	clean := true
	for _, m := range medians {
		if m != nil && finite(m) == nil {
			clean = false
			break
		}
	}
	if clean {
		return agg
	}

	out := *agg
	out.MedianPER = finite(agg.MedianPER)
	out.MedianPBR = finite(agg.MedianPBR)
	out.MedianROE = finite(agg.MedianROE)
	out.MedianOperatingMargin = finite(agg.MedianOperatingMargin)
	out.MedianDebtRatio = finite(agg.MedianDebtRatio)
	return &out
}

// SectorOrMarketFallback returns the sector aggregate unless it is missing or
// covers fewer than five stocks, in which case the market aggregate is used as is
// (even when the market itself is thin or missing).
func SectorOrMarketFallback(sector, market *contracts.PeerAggregate) *contracts.PeerAggregate {
	return sectorOrMarket(sector, market, DefaultMinSectorCount)
}

func sectorOrMarket(sector, market *contracts.PeerAggregate, minCount int) *contracts.PeerAggregate {
	if sector == nil || sector.StockCount < minCount {
		return market
	}
	return sector
}

// MarketAggregate computes market-wide medians from the market's fundamentals.
// Each median only considers stocks reporting a finite value; nil when there are no fundamentals.
func MarketAggregate(fundamentals map[int64]*contracts.Fundamental) *contracts.PeerAggregate {
	if len(fundamentals) == 0 {
		return nil
	}

	var per, pbr, roe, opm, debt []float64
	for _, f := range fundamentals {
		if f == nil {
			continue
		}
		per = appendIf(per, f.PER)
		pbr = appendIf(pbr, f.PBR)
		roe = appendIf(roe, f.ROE)
		opm = appendIf(opm, f.OperatingMargin)
		debt = appendIf(debt, f.DebtRatio)
	}

	return &contracts.PeerAggregate{
		StockCount:            len(fundamentals),
		MedianPER:             Median(per),
		MedianPBR:             Median(pbr),
		MedianROE:             Median(roe),
		MedianOperatingMargin: Median(opm),
		MedianDebtRatio:       Median(debt),
	}
}

func appendIf(dst []float64, v *float64) []float64 {
	if finite(v) == nil {
		return dst
	}
	return append(dst, *v)
}

// Median returns the middle value, averaging the two middle values for even counts.
// nil for an empty input.
func Median(values []float64) *float64 {
	n := len(values)
	if n == 0 {
		return nil
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	var m float64
	if n%2 == 1 {
		m = sorted[n/2]
	} else {
		m = (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return &m
}
