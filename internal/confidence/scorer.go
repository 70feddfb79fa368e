package confidence

import (
	"fmt"
	"math"

	"caselens/domain/casefile"
	"caselens/domain/prediction"
	"caselens/internal/errors"
)

// Config fixes the dimension weights and penalties. Weights must sum
// to 1; they are configuration, not computed.
type Config struct {
	Weights              map[string]float64
	TargetPrecedentCount int
	// ClampPenalty multiplies precedent strength when the estimator's
	// sanity clamp triggered.
	ClampPenalty float64
}

// DefaultConfig returns the documented default weighting.
func DefaultConfig() Config {
	return Config{
		Weights: map[string]float64{
			DimDataCompleteness:      0.20,
			DimPrecedentStrength:     0.25,
			DimNeighborAgreement:     0.20,
			DimCaseTypeSpecificity:   0.15,
			DimStatisticalConfidence: 0.20,
		},
		TargetPrecedentCount: 5,
		ClampPenalty:         0.75,
	}
}

// Classification thresholds, inclusive lower bounds, checked highest
// first.
var classifications = []struct {
	Threshold float64
	Label     string
}{
	{9, "Very High"},
	{7, "High"},
	{5, "Moderate"},
	{3, "Low"},
	{0, "Very Low"},
}

// Scorer computes the multi-dimensional confidence assessment for one
// prediction. Stateless; safe for concurrent use.
type Scorer struct {
	config Config
}

// NewScorer creates a confidence scorer
func NewScorer(config Config) *Scorer {
	return &Scorer{config: config}
}

// Score assesses confidence from the subject, the neighbors actually
// used and the estimated distribution. On valid inputs it never fails:
// sub-scores degrade toward 0 instead of raising. A structurally
// malformed distribution is the caller's fault and rejected.
func (s *Scorer) Score(subject casefile.CaseFeatures, neighbors []prediction.SimilarityResult, distribution prediction.SettlementDistribution) (*prediction.ConfidenceAssessment, error) {
	if err := checkDistributionShape(distribution); err != nil {
		return nil, err
	}

	scores := map[string]float64{
		DimDataCompleteness:      clampUnit(dataCompleteness(subject)),
		DimPrecedentStrength:     precedentStrength(neighbors, s.config.TargetPrecedentCount, distribution.ClampApplied, s.config.ClampPenalty),
		DimNeighborAgreement:     neighborAgreement(neighbors),
		DimCaseTypeSpecificity:   caseTypeSpecificity(subject, neighbors),
		DimStatisticalConfidence: statisticalConfidence(distribution),
	}

	// Sum in the fixed dimension order: float addition is not
	// associative, so map iteration would make the overall score vary
	// between calls on identical inputs.
	overall := 0.0
	for _, dimension := range dimensionPriority {
		overall += s.config.Weights[dimension] * scores[dimension]
	}
	overall = math.Max(0, math.Min(10, overall*10))

	return &prediction.ConfidenceAssessment{
		OverallScore:     overall,
		Classification:   classify(overall),
		Explanation:      explain(overall, scores),
		DimensionScores:  scores,
		DimensionWeights: copyWeights(s.config.Weights),
	}, nil
}

func classify(overall float64) string {
	for _, c := range classifications {
		if overall >= c.Threshold {
			return c.Label
		}
	}
	return classifications[len(classifications)-1].Label
}

// explain composes a deterministic one-sentence explanation naming the
// weakest dimension; ties resolve by the fixed priority order.
func explain(overall float64, scores map[string]float64) string {
	weakest := dimensionPriority[0]
	for _, dimension := range dimensionPriority {
		if scores[dimension] < scores[weakest] {
			weakest = dimension
		}
	}

	if scores[weakest] >= 0.7 {
		return fmt.Sprintf("%s confidence (%.1f/10): every assessed dimension supports this prediction.", classify(overall), overall)
	}
	return fmt.Sprintf("%s confidence (%.1f/10): confidence is limited primarily by %s.", classify(overall), overall, weaknessPhrases[weakest])
}

// checkDistributionShape rejects malformed distributions (inverted or
// non-finite bounds). This is the scorer's only failure path.
func checkDistributionShape(d prediction.SettlementDistribution) error {
	if math.IsNaN(d.PointEstimate) || math.IsInf(d.PointEstimate, 0) || d.PointEstimate < 0 {
		return errors.InvalidInput("distribution point estimate is not a non-negative finite value")
	}
	for _, key := range prediction.IntervalKeys {
		interval, ok := d.Intervals[key]
		if !ok {
			return errors.InvalidInput(fmt.Sprintf("distribution missing %s interval", key))
		}
		if interval.Lower > interval.Upper {
			return errors.InvalidInput(fmt.Sprintf("distribution %s interval has lower > upper", key))
		}
		if math.IsNaN(interval.Lower) || math.IsNaN(interval.Upper) || math.IsInf(interval.Lower, 0) || math.IsInf(interval.Upper, 0) {
			return errors.InvalidInput(fmt.Sprintf("distribution %s interval has non-finite bounds", key))
		}
	}
	return nil
}

func copyWeights(weights map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(weights))
	for k, v := range weights {
		out[k] = v
	}
	return out
}

func clampUnit(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
