package indicators

import "math"

const VMAPeriod = 20

// OBV returns on-balance volume: the running sum of volume signed by the close change.
// The first bar has no prior close and is undefined; the running sum starts at zero after it.
func OBV(close, volume []float64) []float64 {
	out := nanSeries(len(close))
	total := 0.0
	for i := 1; i < len(close); i++ {
		s := sign(close[i] - close[i-1])
		if !math.IsNaN(s) {
			total += s * volume[i]
		}
		out[i] = total
	}
	return out
}

// VMA returns the simple moving average of volume
func VMA(volume []float64, n int) []float64 {
	return SMA(volume, n)
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	case math.IsNaN(v):
		return math.NaN()
	}
	return 0
}
