package prediction

import (
	"math"

	"caselens/domain/casefile"
	"caselens/internal/errors"
)

// WeightTolerance is the permitted floating-point slack when checking
// that dimension weights sum to 1.
const WeightTolerance = 1e-6

// Assemble composes the final analysis result and verifies every
// cross-component invariant: interval nesting, weight normalization,
// score bounds and neighbor ordering. A failure here is a defect in this
// core or an upstream collaborator, not a normal runtime condition, so
// it surfaces as an invariant violation.
//
// The caller stamps ID and CreatedAt; everything Assemble produces is a
// pure function of its inputs.
func Assemble(
	subject casefile.CaseFeatures,
	distribution SettlementDistribution,
	confidence ConfidenceAssessment,
	neighbors []SimilarityResult,
	extracted casefile.ExtractedSummary,
) (*AnalysisResult, error) {
	if err := ValidateDistribution(distribution); err != nil {
		return nil, err
	}
	if err := validateConfidence(confidence); err != nil {
		return nil, err
	}
	if err := validateNeighbors(neighbors); err != nil {
		return nil, err
	}

	extracted.Composite.LitigationRiskProfile = riskProfile(distribution, confidence)

	return &AnalysisResult{
		SubjectFeatures:   subject,
		Settlement:        distribution,
		Confidence:        confidence,
		SimilarCases:      neighbors,
		ExtractedFeatures: extracted,
	}, nil
}

// ValidateDistribution checks the structural invariants of a
// settlement distribution: all three intervals present, finite and
// non-negative bounds, Lower <= Upper, nesting 50% ⊆ 80% ⊆ 90%, and the
// point estimate contained in all three.
func ValidateDistribution(d SettlementDistribution) error {
	if !isFinite(d.PointEstimate) || d.PointEstimate < 0 {
		return errors.InvariantViolationf("point estimate %v is not a non-negative finite value", d.PointEstimate)
	}

	for _, key := range IntervalKeys {
		interval, ok := d.Intervals[key]
		if !ok {
			return errors.InvariantViolationf("missing %s interval", key)
		}
		if !isFinite(interval.Lower) || !isFinite(interval.Upper) {
			return errors.InvariantViolationf("%s interval has non-finite bounds", key)
		}
		if interval.Lower < 0 {
			return errors.InvariantViolationf("%s interval lower bound %v is negative", key, interval.Lower)
		}
		if interval.Lower > interval.Upper {
			return errors.InvariantViolationf("%s interval inverted: lower %v > upper %v", key, interval.Lower, interval.Upper)
		}
		if !interval.Contains(d.PointEstimate) {
			return errors.InvariantViolationf("point estimate %v outside %s interval", d.PointEstimate, key)
		}
	}

	if !d.Intervals[Interval90].ContainsInterval(d.Intervals[Interval80]) {
		return errors.InvariantViolation("80% interval not contained in 90% interval")
	}
	if !d.Intervals[Interval80].ContainsInterval(d.Intervals[Interval50]) {
		return errors.InvariantViolation("50% interval not contained in 80% interval")
	}

	return nil
}

func validateConfidence(c ConfidenceAssessment) error {
	if !isFinite(c.OverallScore) || c.OverallScore < 0 || c.OverallScore > 10 {
		return errors.InvariantViolationf("overall confidence score %v outside [0,10]", c.OverallScore)
	}
	if c.Classification == "" {
		return errors.InvariantViolation("confidence classification is empty")
	}

	weightSum := 0.0
	for name, weight := range c.DimensionWeights {
		if weight < 0 || weight > 1 {
			return errors.InvariantViolationf("dimension weight %s=%v outside [0,1]", name, weight)
		}
		weightSum += weight
	}
	if math.Abs(weightSum-1) > WeightTolerance {
		return errors.InvariantViolationf("dimension weights sum to %v, want 1", weightSum)
	}

	for name, score := range c.DimensionScores {
		if !isFinite(score) || score < 0 || score > 1 {
			return errors.InvariantViolationf("dimension score %s=%v outside [0,1]", name, score)
		}
		if _, ok := c.DimensionWeights[name]; !ok {
			return errors.InvariantViolationf("dimension %s scored but not weighted", name)
		}
	}

	return nil
}

func validateNeighbors(neighbors []SimilarityResult) error {
	for i, neighbor := range neighbors {
		if !isFinite(neighbor.Similarity) || neighbor.Similarity < 0 || neighbor.Similarity > 1 {
			return errors.InvariantViolationf("neighbor %d similarity %v outside [0,1]", i, neighbor.Similarity)
		}
		if i > 0 && neighbor.Similarity > neighbors[i-1].Similarity {
			return errors.InvariantViolationf("neighbors not ordered by similarity at index %d", i)
		}
	}
	return nil
}

// riskProfile labels prediction volatility from the 90% interval's width
// relative to the point estimate and the overall confidence band.
func riskProfile(d SettlementDistribution, c ConfidenceAssessment) casefile.RiskProfile {
	profile := casefile.RiskProfile{}

	width := d.Intervals[Interval90].Width()
	switch {
	case d.PointEstimate > 0 && width/d.PointEstimate < 0.5:
		profile.DamageRangeWidth = "narrow"
	case d.PointEstimate > 0 && width/d.PointEstimate < 1.0:
		profile.DamageRangeWidth = "medium"
	case width == 0:
		profile.DamageRangeWidth = "narrow"
	default:
		profile.DamageRangeWidth = "wide"
	}

	switch {
	case c.OverallScore >= 7:
		profile.OutcomeUncertainty = "low"
	case c.OverallScore >= 5:
		profile.OutcomeUncertainty = "moderate"
	default:
		profile.OutcomeUncertainty = "high"
	}

	return profile
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
