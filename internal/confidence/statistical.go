package confidence

import (
	"caselens/domain/prediction"
)

// statisticalConfidence scores the 90% interval's width relative to the
// point estimate: 1/(1+relativeWidth), so a zero-width interval scores 1
// and the score decays toward 0 as spread grows. Distributions carrying
// the insufficient-precedent marker score 0 outright.
func statisticalConfidence(d prediction.SettlementDistribution) float64 {
	if d.InsufficientPrecedent {
		return 0
	}

	width := d.Intervals[prediction.Interval90].Width()
	if d.PointEstimate <= 0 {
		if width == 0 {
			return 1
		}
		return 0
	}

	return clampUnit(1 / (1 + width/d.PointEstimate))
}
