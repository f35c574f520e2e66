// Package riskbadge turns indicator and fundamental snapshots into five risk dimensions
// and a single summary tier.
//
// ⭐ SSOT: 리스크 배지 점수 계산은 여기서만
package riskbadge

import (
	"math"

	"github.com/wonny/riskbadge/internal/contracts"
)

const (
	// 티어 경계: score < 40 STABLE, < 70 CAUTION, 나머지 WARNING
	stableBelow  = 40.0
	cautionBelow = 70.0

	betaMin = -5.0
	betaMax = 5.0

	// NeutralScore is reported by every dimension without data
	NeutralScore = 50.0
)

// ToTier maps a score to its tier
func ToTier(score float64) contracts.Tier {
	switch {
	case score < stableBelow:
		return contracts.TierStable
	case score < cautionBelow:
		return contracts.TierCaution
	default:
		return contracts.TierWarning
	}
}

// ClampScore bounds a score to [0, 100]
func ClampScore(score float64) float64 {
	return math.Max(0, math.Min(100, score))
}

// finite returns v, or nil when v is NaN or ±Inf.
// 입력의 비유한 값은 결측으로 취급
func finite(v *float64) *float64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return nil
	}
	return v
}

// ClampBeta drops undefined betas and bounds the rest to [-5, 5]
func ClampBeta(beta *float64) *float64 {
	if finite(beta) == nil {
		return nil
	}
	v := math.Max(betaMin, math.Min(betaMax, *beta))
	return &v
}

// SafeRatio returns value / median, or nil when either is missing or non-finite,
// the median is not positive, or the ratio overflows
func SafeRatio(value, median *float64) *float64 {
	value, median = finite(value), finite(median)
	if value == nil || median == nil || *median <= 0 {
		return nil
	}
	r := *value / *median
	return finite(&r)
}

func round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}

func roundPtr(v *float64, decimals int) *float64 {
	if v == nil {
		return nil
	}
	r := round(*v, decimals)
	return finite(&r)
}

// result builds an available dimension; score is rounded to one decimal, tier uses the raw score
func result(name contracts.Dimension, score float64, dir contracts.Direction, components map[string]*float64) contracts.DimensionResult {
	return contracts.DimensionResult{
		Name:          name,
		Score:         round(score, 1),
		Tier:          ToTier(score),
		Direction:     dir,
		Components:    components,
		DataAvailable: true,
	}
}

// unavailable builds the neutral result of a dimension without data
func unavailable(name contracts.Dimension, dir contracts.Direction) contracts.DimensionResult {
	return contracts.DimensionResult{
		Name:          name,
		Score:         NeutralScore,
		Tier:          ToTier(NeutralScore),
		Direction:     dir,
		Components:    map[string]*float64{},
		DataAvailable: false,
	}
}

// weighted returns the weight-normalized mean of the collected scores
type weighted struct {
	sum   float64
	total float64
}

func (w *weighted) add(score, weight float64) {
	w.sum += score * weight
	w.total += weight
}

func (w *weighted) score() float64 {
	if w.total <= 0 {
		return NeutralScore
	}
	return ClampScore(w.sum / w.total)
}
