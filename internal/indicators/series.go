// Package indicators computes technical and return-based indicators over full price history.
//
// Every series function returns a slice of the same length as its input.
// Positions whose lookback has not filled yet hold NaN; callers convert the
// value they need with Last, which never lets NaN or ±Inf escape.
package indicators

import (
	"math"
	"time"
)

// nanSeries returns a slice of n NaN values
func nanSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

func hasNaN(x []float64) bool {
	for _, v := range x {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Last returns the final value of a series, or nil when it is undefined
func Last(series []float64) *float64 {
	if len(series) == 0 {
		return nil
	}
	v := series[len(series)-1]
	if !isFinite(v) {
		return nil
	}
	return &v
}

// LastRounded is Last rounded to the given number of decimals
func LastRounded(series []float64, decimals int) *float64 {
	v := Last(series)
	if v == nil {
		return nil
	}
	r := Round(*v, decimals)
	return &r
}

// LastInt returns the final value truncated to int64, or nil when undefined
func LastInt(series []float64) *int64 {
	v := Last(series)
	if v == nil {
		return nil
	}
	i := int64(*v)
	return &i
}

// Round rounds half away from zero to the given number of decimals
func Round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}

// DatedSeries is a value series keyed by trading date
type DatedSeries struct {
	Dates  []time.Time
	Values []float64
}

func dateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// Align returns the pairs of values present (and non-NaN) in both series on the same date,
// in the order of a's dates.
func Align(a, b DatedSeries) ([]float64, []float64) {
	lookup := make(map[string]float64, len(b.Dates))
	for i, d := range b.Dates {
		if i < len(b.Values) && !math.IsNaN(b.Values[i]) {
			lookup[dateKey(d)] = b.Values[i]
		}
	}

	var xs, ys []float64
	for i, d := range a.Dates {
		if i >= len(a.Values) || math.IsNaN(a.Values[i]) {
			continue
		}
		if v, ok := lookup[dateKey(d)]; ok {
			xs = append(xs, a.Values[i])
			ys = append(ys, v)
		}
	}
	return xs, ys
}

// dropNaN returns the finite values of x
func dropNaN(x []float64) []float64 {
	out := make([]float64, 0, len(x))
	for _, v := range x {
		if isFinite(v) {
			out = append(out, v)
		}
	}
	return out
}
