package indicators

import "math"

const (
	ADXPeriod  = 14
	SARStart   = 0.02
	SARStep    = 0.02
	SARMaximum = 0.2
)

// ADXResult holds ADX and the two directional indicators
type ADXResult struct {
	ADX     []float64
	PlusDI  []float64
	MinusDI []float64
}

// ADX returns the average directional index with +DI / −DI.
//
// +DM keeps the up-move only when it beats the down-move and is positive.
// −DM is then compared against the already filtered +DM.
// Zero ATR or zero DI sum leave the bar undefined.
func ADX(high, low, close []float64, n int) ADXResult {
	size := len(close)
	if n <= 0 {
		return ADXResult{ADX: nanSeries(size), PlusDI: nanSeries(size), MinusDI: nanSeries(size)}
	}

	plusDM := make([]float64, size)
	minusDM := make([]float64, size)
	for i := 1; i < size; i++ {
		up := high[i] - high[i-1]
		down := low[i-1] - low[i]

		if up > down && up > 0 {
			plusDM[i] = up
		}
		if down > plusDM[i] && down > 0 {
			minusDM[i] = down
		}
	}

	atr := ATR(high, low, close, n)
	smoothPlus := wilder(plusDM, n)
	smoothMinus := wilder(minusDM, n)

	plusDI := nanSeries(size)
	minusDI := nanSeries(size)
	dx := nanSeries(size)
	for i := 0; i < size; i++ {
		if atr[i] == 0 || math.IsNaN(atr[i]) {
			continue
		}
		plusDI[i] = 100 * smoothPlus[i] / atr[i]
		minusDI[i] = 100 * smoothMinus[i] / atr[i]

		sum := plusDI[i] + minusDI[i]
		if sum == 0 || math.IsNaN(sum) {
			continue
		}
		dx[i] = 100 * math.Abs(plusDI[i]-minusDI[i]) / sum
	}

	return ADXResult{ADX: wilder(dx, n), PlusDI: plusDI, MinusDI: minusDI}
}

// SARState is the trailing state of a Parabolic SAR computation
type SARState struct {
	IsUptrend       bool
	AF              float64
	ExtremePoint    float64
	MaxAFReached    bool
	TrendReversals  int
	LastReversalIdx int
}

// ParabolicSAR returns the stop-and-reverse series.
func ParabolicSAR(high, low []float64, start, step, maximum float64) []float64 {
	sar, _ := ParabolicSARWithState(high, low, start, step, maximum)
	return sar
}

// ParabolicSARWithState returns the SAR series plus the final trend state.
//
// The initial trend is up unless the second high is not above the first.
// In an uptrend SAR is capped by the prior two lows, and a low below it reverses
// the trend with SAR reset to the extreme point. Downtrends mirror this.
func ParabolicSARWithState(high, low []float64, start, step, maximum float64) ([]float64, SARState) {
	n := len(high)
	if n == 0 {
		return []float64{}, SARState{IsUptrend: true, AF: start, LastReversalIdx: -1}
	}

	sar := make([]float64, n)
	isUp := true
	if n > 1 {
		isUp = high[1] > high[0]
	}
	af := start

	var ep float64
	if isUp {
		sar[0] = low[0]
		ep = high[0]
	} else {
		sar[0] = high[0]
		ep = low[0]
	}

	reversals := 0
	lastReversal := -1

	for i := 1; i < n; i++ {
		s := sar[i-1] + af*(ep-sar[i-1])

		if isUp {
			s = math.Min(s, low[i-1])
			if i >= 2 {
				s = math.Min(s, low[i-2])
			}
			if low[i] < s {
				isUp = false
				s = ep
				ep = low[i]
				af = start
				reversals++
				lastReversal = i
			} else if high[i] > ep {
				ep = high[i]
				af = math.Min(af+step, maximum)
			}
		} else {
			s = math.Max(s, high[i-1])
			if i >= 2 {
				s = math.Max(s, high[i-2])
			}
			if high[i] > s {
				isUp = true
				s = ep
				ep = high[i]
				af = start
				reversals++
				lastReversal = i
			} else if low[i] < ep {
				ep = low[i]
				af = math.Min(af+step, maximum)
			}
		}

		sar[i] = s
	}

	return sar, SARState{
		IsUptrend:       isUp,
		AF:              af,
		ExtremePoint:    ep,
		MaxAFReached:    af >= maximum,
		TrendReversals:  reversals,
		LastReversalIdx: lastReversal,
	}
}
