package contracts

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestMarket_BenchmarkAndCountry(t *testing.T) {
	tests := []struct {
		market    Market
		benchmark Benchmark
		country   Country
	}{
		{MarketKOSPI, BenchmarkKOSPI, CountryKR},
		{MarketKOSDAQ, BenchmarkKOSDAQ, CountryKR},
		{MarketNYSE, BenchmarkSP500, CountryUS},
		{MarketNASDAQ, BenchmarkNASDAQ, CountryUS},
	}

	for _, tt := range tests {
		t.Run(string(tt.market), func(t *testing.T) {
			if got := tt.market.Benchmark(); got != tt.benchmark {
				t.Errorf("Benchmark() = %v, want %v", got, tt.benchmark)
			}
			if got := tt.market.Country(); got != tt.country {
				t.Errorf("Country() = %v, want %v", got, tt.country)
			}
		})
	}
}

func TestRegion_Markets(t *testing.T) {
	if got := RegionKR.Markets(); len(got) != 2 || got[0] != MarketKOSPI {
		t.Errorf("unexpected KR markets %v", got)
	}
	if _, err := ParseRegion("eu"); err == nil {
		t.Error("expected error for unknown region")
	}
	if _, err := ParseMarket("US_NASDAQ"); err != nil {
		t.Errorf("ParseMarket failed: %v", err)
	}
}

func TestNewPriceSeries(t *testing.T) {
	day := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	bars := []Price{
		{StockID: 1, Date: day, Open: decimal.RequireFromString("100.5"), High: decimal.NewFromInt(102), Low: decimal.NewFromInt(99), Close: decimal.NewFromInt(101), Volume: 1000},
		{StockID: 1, Date: day.AddDate(0, 0, 1), Open: decimal.NewFromInt(101), High: decimal.NewFromInt(103), Low: decimal.NewFromInt(100), Close: decimal.RequireFromString("102.25"), Volume: 1500},
	}

	s := NewPriceSeries(bars)
	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}
	if s.Open[0] != 100.5 || s.Close[1] != 102.25 || s.Volume[1] != 1500 {
		t.Errorf("unexpected columns %+v", s)
	}
	if !s.IsStrictlyIncreasing() {
		t.Error("dates should be strictly increasing")
	}

	s.Dates[1] = day
	if s.IsStrictlyIncreasing() {
		t.Error("duplicate dates must not count as increasing")
	}
}

func TestIndicatorRow_Validate(t *testing.T) {
	row := &IndicatorRow{StockID: 0, Date: time.Now()}
	if err := row.Validate(); !errors.Is(err, ErrInvalidRow) {
		t.Errorf("expected ErrInvalidRow, got %v", err)
	}

	row = &IndicatorRow{StockID: 3}
	if err := row.Validate(); !errors.Is(err, ErrInvalidRow) {
		t.Errorf("expected ErrInvalidRow for zero date, got %v", err)
	}

	row = &IndicatorRow{StockID: 3, Date: time.Now()}
	if err := row.Validate(); err != nil {
		t.Errorf("unexpected error %v", err)
	}
}
