package contracts

import "fmt"

// Market identifies a listing venue
// ⭐ SSOT: 시장/벤치마크/국가 매핑은 여기서만
type Market string

const (
	MarketKOSPI  Market = "KR_KOSPI"
	MarketKOSDAQ Market = "KR_KOSDAQ"
	MarketNYSE   Market = "US_NYSE"
	MarketNASDAQ Market = "US_NASDAQ"
)

// Benchmark identifies the index a market's betas are measured against
type Benchmark string

const (
	BenchmarkKOSPI  Benchmark = "KR_KOSPI"
	BenchmarkKOSDAQ Benchmark = "KR_KOSDAQ"
	BenchmarkSP500  Benchmark = "US_SP500"
	BenchmarkNASDAQ Benchmark = "US_NASDAQ"
)

// Country is used to pick the risk-free rate
type Country string

const (
	CountryKR Country = "KR"
	CountryUS Country = "US"
)

// Maturity of a risk-free instrument
type Maturity string

const (
	MaturityD91 Maturity = "91D"
	MaturityY1  Maturity = "1Y"
	MaturityY3  Maturity = "3Y"
	MaturityY10 Maturity = "10Y"
)

// Region groups markets that run through the pipeline together
type Region string

const (
	RegionKR Region = "kr"
	RegionUS Region = "us"
)

// AllMarkets lists every supported market in pipeline order
var AllMarkets = []Market{MarketKOSPI, MarketKOSDAQ, MarketNYSE, MarketNASDAQ}

// ParseMarket validates a market code
func ParseMarket(s string) (Market, error) {
	for _, m := range AllMarkets {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown market %q", s)
}

// Benchmark returns the index used for beta/alpha
func (m Market) Benchmark() Benchmark {
	switch m {
	case MarketKOSPI:
		return BenchmarkKOSPI
	case MarketKOSDAQ:
		return BenchmarkKOSDAQ
	case MarketNYSE:
		return BenchmarkSP500
	case MarketNASDAQ:
		return BenchmarkNASDAQ
	}
	return ""
}

// Country returns the country whose risk-free rate applies
func (m Market) Country() Country {
	if m == MarketKOSPI || m == MarketKOSDAQ {
		return CountryKR
	}
	return CountryUS
}

// Markets returns the markets belonging to a region
func (r Region) Markets() []Market {
	switch r {
	case RegionKR:
		return []Market{MarketKOSPI, MarketKOSDAQ}
	case RegionUS:
		return []Market{MarketNYSE, MarketNASDAQ}
	}
	return nil
}

// ParseRegion validates a region code
func ParseRegion(s string) (Region, error) {
	switch Region(s) {
	case RegionKR, RegionUS:
		return Region(s), nil
	}
	return "", fmt.Errorf("unknown region %q (valid: kr, us)", s)
}
