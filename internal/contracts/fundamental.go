package contracts

import "fmt"

// Fundamental is the most recent valuation/profitability snapshot of a stock
// TTM 계산은 수집 단계에서 끝난 값
type Fundamental struct {
	StockID         int64    `json:"stock_id"`
	Sector          string   `json:"sector,omitempty"`
	PER             *float64 `json:"per"`
	PBR             *float64 `json:"pbr"`
	ROE             *float64 `json:"roe"`
	OperatingMargin *float64 `json:"operating_margin"`
	DebtRatio       *float64 `json:"debt_ratio"`
}

// Validate checks the structural fields
func (f *Fundamental) Validate() error {
	if f.StockID <= 0 {
		return fmt.Errorf("%w: fundamental row stock_id=%d", ErrInvalidRow, f.StockID)
	}
	return nil
}

// PeerAggregate holds sector- or market-wide medians of the fundamental ratios
type PeerAggregate struct {
	StockCount            int      `json:"stock_count"`
	MedianPER             *float64 `json:"median_per"`
	MedianPBR             *float64 `json:"median_pbr"`
	MedianROE             *float64 `json:"median_roe"`
	MedianOperatingMargin *float64 `json:"median_operating_margin"`
	MedianDebtRatio       *float64 `json:"median_debt_ratio"`
}
