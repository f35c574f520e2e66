package indicators

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

const (
	BollingerPeriod = 20
	BollingerK      = 2.0
	ATRPeriod       = 14
)

// BollingerResult holds the three bands
type BollingerResult struct {
	Upper  []float64
	Middle []float64
	Lower  []float64
}

// BollingerBands returns SMA(n) ± k·σ where σ is the sample standard deviation of the window.
func BollingerBands(close []float64, n int, k float64) BollingerResult {
	middle := SMA(close, n)
	upper := nanSeries(len(close))
	lower := nanSeries(len(close))

	if n < 2 {
		return BollingerResult{Upper: upper, Middle: middle, Lower: lower}
	}

	for i := n - 1; i < len(close); i++ {
		if math.IsNaN(middle[i]) {
			continue
		}
		sd := stat.StdDev(close[i-n+1:i+1], nil)
		upper[i] = middle[i] + k*sd
		lower[i] = middle[i] - k*sd
	}

	return BollingerResult{Upper: upper, Middle: middle, Lower: lower}
}

// trueRange is max(high − low, |high − prevClose|, |low − prevClose|); the first bar uses high − low
func trueRange(high, low, close []float64) []float64 {
	tr := make([]float64, len(close))
	for i := range close {
		hl := high[i] - low[i]
		if i == 0 {
			tr[i] = hl
			continue
		}
		hc := math.Abs(high[i] - close[i-1])
		lc := math.Abs(low[i] - close[i-1])
		tr[i] = math.Max(hl, math.Max(hc, lc))
	}
	return tr
}

// ATR returns the Wilder-smoothed average true range.
func ATR(high, low, close []float64, n int) []float64 {
	if n <= 0 {
		return nanSeries(len(close))
	}
	return wilder(trueRange(high, low, close), n)
}
