package riskbadge

import "github.com/wonny/riskbadge/internal/contracts"

// ComputeComposite folds dimension results into the summary tier.
//
//  1. No dimension with data: CAUTION
//  2. Any critical dimension (company health, valuation) at WARNING: WARNING
//  3. Two or more signal dimensions at WARNING: WARNING
//  4. A single signal WARNING from an uptrend: CAUTION
//  5. A single signal WARNING with any other dimension above STABLE: WARNING, otherwise CAUTION
//  6. Worst tier among the dimensions with data
//
// Dimensions without data never affect the outcome.
func ComputeComposite(dims []contracts.DimensionResult) contracts.Tier {
	valid := make([]contracts.DimensionResult, 0, len(dims))
	for _, d := range dims {
		if d.DataAvailable {
			valid = append(valid, d)
		}
	}
	if len(valid) == 0 {
		return contracts.TierCaution
	}

	signalWarning := -1
	signalWarnings := 0
	for i, d := range valid {
		if d.Tier != contracts.TierWarning {
			continue
		}
		if d.Name.IsCritical() {
			return contracts.TierWarning
		}
		signalWarnings++
		signalWarning = i
	}

	if signalWarnings >= 2 {
		return contracts.TierWarning
	}

	if signalWarnings == 1 {
		sw := valid[signalWarning]
		if sw.Name == contracts.DimensionTrend && sw.Direction == contracts.DirectionUptrend {
			return contracts.TierCaution
		}
		for i, d := range valid {
			if i != signalWarning && d.Tier != contracts.TierStable {
				return contracts.TierWarning
			}
		}
		return contracts.TierCaution
	}

	worst := contracts.TierStable
	for _, d := range valid {
		if d.Tier > worst {
			worst = d.Tier
		}
	}
	return worst
}
