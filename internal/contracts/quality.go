package contracts

import "context"

// DataCoverage counts how many active stocks of a market have each kind of input
type DataCoverage struct {
	Market            Market `json:"market"`
	TotalStocks       int    `json:"total_stocks"`
	PriceStocks       int    `json:"price_stocks"` // min_rows 이상 일봉 보유
	FundamentalStocks int    `json:"fundamental_stocks"`
	FactorStocks      int    `json:"factor_stocks"` // volatility_z 보유
}

func ratio(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total)
}

// PriceCoverage returns the share of active stocks with enough bars for indicators
func (c *DataCoverage) PriceCoverage() float64 { return ratio(c.PriceStocks, c.TotalStocks) }

// FundamentalCoverage returns the share of active stocks with a fundamentals row
func (c *DataCoverage) FundamentalCoverage() float64 {
	return ratio(c.FundamentalStocks, c.TotalStocks)
}

// FactorCoverage returns the share of active stocks with a volatility z-score
func (c *DataCoverage) FactorCoverage() float64 { return ratio(c.FactorStocks, c.TotalStocks) }

// CoverageRepository reports input coverage before a run
type CoverageRepository interface {
	GetCoverage(ctx context.Context, market Market, minRows int) (*DataCoverage, error)
}
