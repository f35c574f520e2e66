package indicators

import (
	"math"

	"github.com/markcheno/go-talib"
)

// SMA returns the simple moving average over n periods.
// A window containing NaN yields NaN.
func SMA(x []float64, n int) []float64 {
	if n <= 0 || len(x) < n {
		return nanSeries(len(x))
	}
	if hasNaN(x) {
		return rollingMean(x, n)
	}

	// talib fills the lookback with zeros
	out := talib.Sma(x, n)
	for i := 0; i < n-1; i++ {
		out[i] = math.NaN()
	}
	return out
}

// EMA returns the exponential moving average with alpha = 2/(n+1),
// seeded with the first value so it is defined from index 0.
func EMA(x []float64, n int) []float64 {
	if n <= 0 {
		return nanSeries(len(x))
	}
	return ewm(x, 2/(float64(n)+1), 0)
}

// WMA returns the linearly weighted moving average (weights 1..n, newest heaviest).
func WMA(x []float64, n int) []float64 {
	if n <= 0 || len(x) < n || hasNaN(x) {
		return nanSeries(len(x))
	}

	out := talib.Wma(x, n)
	for i := 0; i < n-1; i++ {
		out[i] = math.NaN()
	}
	return out
}

func rollingMean(x []float64, n int) []float64 {
	out := nanSeries(len(x))
	for i := n - 1; i < len(x); i++ {
		sum := 0.0
		valid := true
		for _, v := range x[i-n+1 : i+1] {
			if math.IsNaN(v) {
				valid = false
				break
			}
			sum += v
		}
		if valid {
			out[i] = sum / float64(n)
		}
	}
	return out
}
