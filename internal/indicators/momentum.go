package indicators

import (
	"math"
)

const (
	RSIPeriod      = 14
	MACDFast       = 12
	MACDSlow       = 26
	MACDSignalSpan = 9
	StochKPeriod   = 14
	StochDPeriod   = 3
)

// RSI returns the relative strength index with Wilder smoothing.
//
// avgGain / avgLoss are Wilder averages of positive and negative close changes.
// Flat windows (both averages zero) are undefined; a window without losses reads 100.
func RSI(close []float64, n int) []float64 {
	if n <= 0 || len(close) == 0 {
		return nanSeries(len(close))
	}

	gains := nanSeries(len(close))
	losses := nanSeries(len(close))
	for i := 1; i < len(close); i++ {
		d := close[i] - close[i-1]
		if math.IsNaN(d) {
			continue
		}
		gains[i] = math.Max(d, 0)
		losses[i] = math.Max(-d, 0)
	}

	avgGain := wilder(gains, n)
	avgLoss := wilder(losses, n)

	out := nanSeries(len(close))
	for i := range close {
		g, l := avgGain[i], avgLoss[i]
		if math.IsNaN(g) || math.IsNaN(l) {
			continue
		}
		switch {
		case g == 0 && l == 0:
			// undefined
		case l == 0:
			out[i] = 100
		default:
			rs := g / l
			out[i] = 100 - 100/(1+rs)
		}
	}
	return out
}

// MACDResult holds the three MACD series
type MACDResult struct {
	MACD      []float64
	Signal    []float64
	Histogram []float64
}

// MACD returns EMA(fast) − EMA(slow), its EMA(signal) and the difference between them.
func MACD(close []float64, fast, slow, signal int) MACDResult {
	emaFast := EMA(close, fast)
	emaSlow := EMA(close, slow)

	line := make([]float64, len(close))
	for i := range close {
		line[i] = emaFast[i] - emaSlow[i]
	}

	sig := EMA(line, signal)
	hist := make([]float64, len(close))
	for i := range close {
		hist[i] = line[i] - sig[i]
	}

	return MACDResult{MACD: line, Signal: sig, Histogram: hist}
}

// StochasticResult holds %K and %D
type StochasticResult struct {
	K []float64
	D []float64
}

// Stochastic returns %K = 100·(close − LL)/(HH − LL) over kPeriod and %D = SMA(%K, dPeriod).
// A window with HH == LL leaves %K undefined.
func Stochastic(high, low, close []float64, kPeriod, dPeriod int) StochasticResult {
	k := nanSeries(len(close))
	if kPeriod > 0 {
		for i := kPeriod - 1; i < len(close); i++ {
			hh, ll := math.Inf(-1), math.Inf(1)
			for j := i - kPeriod + 1; j <= i; j++ {
				hh = math.Max(hh, high[j])
				ll = math.Min(ll, low[j])
			}
			rng := hh - ll
			if rng == 0 || math.IsNaN(rng) {
				continue
			}
			k[i] = 100 * (close[i] - ll) / rng
		}
	}

	return StochasticResult{K: k, D: SMA(k, dPeriod)}
}
