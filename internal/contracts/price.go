package contracts

import (
	"time"

	"github.com/shopspring/decimal"
)

// Price represents one daily OHLCV bar
// 가격은 decimal로 저장, 지표 계산 직전에 float64로 변환
type Price struct {
	StockID int64
	Date    time.Time
	Open    decimal.Decimal
	High    decimal.Decimal
	Low     decimal.Decimal
	Close   decimal.Decimal
	Volume  int64
}

// BenchmarkPrice is a daily close of a benchmark index
type BenchmarkPrice struct {
	Benchmark Benchmark
	Date      time.Time
	Close     decimal.Decimal
}

// PriceSeries holds aligned float columns of a bar sequence
type PriceSeries struct {
	Dates  []time.Time
	Open   []float64
	High   []float64
	Low    []float64
	Close  []float64
	Volume []float64
}

// Len returns the number of bars
func (s PriceSeries) Len() int {
	return len(s.Dates)
}

// NewPriceSeries splits bars into float columns.
// Bars must already be ordered by date ascending.
func NewPriceSeries(bars []Price) PriceSeries {
	s := PriceSeries{
		Dates:  make([]time.Time, len(bars)),
		Open:   make([]float64, len(bars)),
		High:   make([]float64, len(bars)),
		Low:    make([]float64, len(bars)),
		Close:  make([]float64, len(bars)),
		Volume: make([]float64, len(bars)),
	}
	for i, b := range bars {
		s.Dates[i] = b.Date
		s.Open[i] = b.Open.InexactFloat64()
		s.High[i] = b.High.InexactFloat64()
		s.Low[i] = b.Low.InexactFloat64()
		s.Close[i] = b.Close.InexactFloat64()
		s.Volume[i] = float64(b.Volume)
	}
	return s
}

// IsStrictlyIncreasing reports whether dates are strictly ascending
func (s PriceSeries) IsStrictlyIncreasing() bool {
	for i := 1; i < len(s.Dates); i++ {
		if !s.Dates[i].After(s.Dates[i-1]) {
			return false
		}
	}
	return true
}
