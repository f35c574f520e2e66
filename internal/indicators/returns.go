package indicators

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// TradingDaysPerYear annualizes daily return statistics
const TradingDaysPerYear = 252

// DailyReturns returns close[t]/close[t-1] − 1. The first value and any
// return over a zero or undefined previous close are NaN.
func DailyReturns(close []float64) []float64 {
	out := nanSeries(len(close))
	for i := 1; i < len(close); i++ {
		prev := close[i-1]
		if prev == 0 || math.IsNaN(prev) || math.IsNaN(close[i]) {
			continue
		}
		out[i] = close[i]/prev - 1
	}
	return out
}

// isConstant reports whether every value equals the first
func isConstant(x []float64) bool {
	return floats.Max(x) == floats.Min(x)
}

// Beta returns cov(stock, market) / var(market) over the dates both series share.
// Fewer than two aligned returns or a flat market yields 0.
func Beta(stock, market DatedSeries) float64 {
	s, m := Align(stock, market)
	return beta(s, m)
}

func beta(s, m []float64) float64 {
	if len(s) < 2 || isConstant(m) {
		return 0
	}
	v := stat.Variance(m, nil)
	if v == 0 || math.IsNaN(v) {
		return 0
	}
	return stat.Covariance(s, m, nil) / v
}

// Alpha returns Jensen's alpha in daily terms, ×252 when annualize is set.
//
//	alpha = mean(stock) − (rf + beta·(mean(market) − rf)),  rf = rfPct / 100 / 252
//
// betaOverride replaces the beta computed from the aligned returns.
func Alpha(stock, market DatedSeries, rfPct float64, betaOverride *float64, annualize bool) float64 {
	s, m := Align(stock, market)
	if len(s) < 2 {
		return 0
	}

	b := beta(s, m)
	if betaOverride != nil {
		b = *betaOverride
	}

	dailyRf := rfPct / 100 / TradingDaysPerYear
	daily := stat.Mean(s, nil) - (dailyRf + b*(stat.Mean(m, nil)-dailyRf))
	if annualize {
		return daily * TradingDaysPerYear
	}
	return daily
}

// SharpeRatio returns (mean − rf) / σ of the defined returns, ×√252 when annualize is set.
// Fewer than two returns or zero dispersion yields 0.
func SharpeRatio(returns []float64, rfPct float64, annualize bool) float64 {
	clean := dropNaN(returns)
	if len(clean) < 2 || isConstant(clean) {
		return 0
	}

	sd := stat.StdDev(clean, nil)
	if sd == 0 {
		return 0
	}

	dailyRf := rfPct / 100 / TradingDaysPerYear
	sharpe := (stat.Mean(clean, nil) - dailyRf) / sd
	if annualize {
		return sharpe * math.Sqrt(TradingDaysPerYear)
	}
	return sharpe
}

// CountDefined returns the number of finite values in x
func CountDefined(x []float64) int {
	n := 0
	for _, v := range x {
		if isFinite(v) {
			n++
		}
	}
	return n
}
