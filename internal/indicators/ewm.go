package indicators

import "math"

// ewm is a recursive exponentially weighted mean without bias adjustment.
//
//	weighted_t = ((1-alpha)·weighted_{t-1} + alpha·x_t) / ((1-alpha) + alpha)
//
// Leading NaNs are skipped, the recursion starts at the first observation.
// A NaN after the start holds the previous value and decays its weight by one more step.
// Output is NaN until minPeriods observations have been seen.
func ewm(x []float64, alpha float64, minPeriods int) []float64 {
	out := make([]float64, len(x))
	if len(x) == 0 {
		return out
	}
	if minPeriods < 1 {
		minPeriods = 1
	}

	oldWtFactor := 1 - alpha
	newWt := alpha

	weighted := x[0]
	nobs := 0
	if !math.IsNaN(weighted) {
		nobs = 1
	}
	out[0] = emit(weighted, nobs, minPeriods)
	oldWt := 1.0

	for i := 1; i < len(x); i++ {
		cur := x[i]
		isObs := !math.IsNaN(cur)
		if isObs {
			nobs++
		}

		if !math.IsNaN(weighted) {
			oldWt *= oldWtFactor
			if isObs {
				if weighted != cur {
					weighted = (oldWt*weighted + newWt*cur) / (oldWt + newWt)
				}
				oldWt = 1.0
			}
		} else if isObs {
			weighted = cur
		}

		out[i] = emit(weighted, nobs, minPeriods)
	}

	return out
}

func emit(v float64, nobs, minPeriods int) float64 {
	if nobs < minPeriods {
		return math.NaN()
	}
	return v
}

// wilder applies Wilder's smoothing (alpha = 1/n) requiring n observations
func wilder(x []float64, n int) []float64 {
	return ewm(x, 1/float64(n), n)
}
