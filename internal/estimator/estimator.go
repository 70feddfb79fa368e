package estimator

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"caselens/domain/casefile"
	"caselens/domain/prediction"
	"caselens/internal/errors"
)

// Config tunes the estimator. The clamp multiple is the documented
// sanity bound: predictions are kept within this multiple (and its
// inverse) of the subject's known economic damages.
type Config struct {
	ClampMultiple float64
	// FallbackCV is the coefficient of variation of the advisory
	// log-normal band reported with degenerate intervals. Capped at 1
	// so the modeled band always brackets its own center.
	FallbackCV float64
}

// DefaultConfig returns the documented estimator defaults.
func DefaultConfig() Config {
	return Config{
		ClampMultiple: 5.0,
		FallbackCV:    0.5,
	}
}

// Estimator turns neighbor outcomes into a settlement distribution via
// similarity-weighted quantiles. Stateless; safe for concurrent use.
type Estimator struct {
	config Config
}

// NewEstimator creates a settlement estimator
func NewEstimator(config Config) *Estimator {
	return &Estimator{config: config}
}

// Estimate combines the subject's own damages and neighbor settlement
// outcomes into a point estimate plus nested 50/80/90% intervals.
//
// Fewer than 2 usable neighbors collapse the intervals to the point
// estimate with the insufficient-precedent marker set, rather than
// fabricating spread. It fails with an insufficient-data error only
// when no neighbor carries an outcome AND the subject has no economic
// damages to fall back on.
func (e *Estimator) Estimate(subject casefile.CaseFeatures, neighbors []prediction.SimilarityResult) (*prediction.SettlementDistribution, error) {
	values, weights := usableOutcomes(neighbors)

	switch len(values) {
	case 0:
		return e.estimateFromSubject(subject)
	case 1:
		return e.degenerate(subject, values[0], 1), nil
	default:
		return e.estimateFromNeighbors(subject, values, weights), nil
	}
}

// usableOutcomes extracts neighbor settlement values with their
// similarity weights, preserving input order. Zero-similarity neighbors
// still count, with a uniform weight fallback when every weight is zero.
func usableOutcomes(neighbors []prediction.SimilarityResult) ([]float64, []float64) {
	var values, weights []float64
	totalWeight := 0.0
	for _, neighbor := range neighbors {
		if !neighbor.Case.HasOutcomeValue() {
			continue
		}
		values = append(values, *neighbor.Case.SettlementValue)
		weights = append(weights, neighbor.Similarity)
		totalWeight += neighbor.Similarity
	}
	if totalWeight == 0 {
		for i := range weights {
			weights[i] = 1
		}
	}
	return values, weights
}

func (e *Estimator) estimateFromSubject(subject casefile.CaseFeatures) (*prediction.SettlementDistribution, error) {
	if subject.EconomicDamages == nil {
		return nil, errors.InsufficientData("no neighbor outcomes and no economic damages to anchor an estimate")
	}

	point := *subject.EconomicDamages
	if subject.NonEconomicDamages != nil {
		point += *subject.NonEconomicDamages
	}
	return e.degenerate(subject, point, 0), nil
}

// degenerate builds an insufficient-precedent distribution: all three
// intervals collapse to the point estimate. An advisory modeled band is
// attached for display, derived from a log-normal with a fixed CV, the
// way the original intake product modeled uncertainty when it had no
// empirical spread.
func (e *Estimator) degenerate(subject casefile.CaseFeatures, point float64, sampleSize int) *prediction.SettlementDistribution {
	point, clamped := e.clampPoint(subject, point)

	d := &prediction.SettlementDistribution{
		PointEstimate:         point,
		Intervals:             pointIntervals(point),
		InsufficientPrecedent: true,
		ClampApplied:          clamped,
		SampleSize:            sampleSize,
	}

	if band, ok := e.modeledBand(point); ok {
		d.ModeledBand = &band
	}
	return d
}

func (e *Estimator) estimateFromNeighbors(subject casefile.CaseFeatures, values, weights []float64) *prediction.SettlementDistribution {
	sortByValue(values, weights)

	quantile := func(p float64) float64 {
		return stat.Quantile(p, stat.Empirical, values, weights)
	}

	// Widest interval first; narrower ones come from the same weighted
	// order statistics, so nesting holds by construction.
	intervals := map[string]prediction.Interval{
		prediction.Interval90: {Lower: quantile(0.05), Upper: quantile(0.95)},
		prediction.Interval80: {Lower: quantile(0.10), Upper: quantile(0.90)},
		prediction.Interval50: {Lower: quantile(0.25), Upper: quantile(0.75)},
	}

	point := quantile(0.5)
	point, clamped := e.clampPoint(subject, point)
	if clamped {
		// The sanity bound can move the point outside the empirical
		// spread; stretch the intervals so containment still holds.
		for key, interval := range intervals {
			interval.Lower = math.Min(interval.Lower, point)
			interval.Upper = math.Max(interval.Upper, point)
			intervals[key] = interval
		}
	}

	return &prediction.SettlementDistribution{
		PointEstimate: point,
		Intervals:     intervals,
		ClampApplied:  clamped,
		SampleSize:    len(values),
	}
}

// clampPoint keeps the point estimate within the configured multiple of
// the subject's economic damages. The trigger is recorded so the
// confidence scorer can discount precedent strength.
func (e *Estimator) clampPoint(subject casefile.CaseFeatures, point float64) (float64, bool) {
	if subject.EconomicDamages == nil || *subject.EconomicDamages <= 0 {
		return point, false
	}

	upper := *subject.EconomicDamages * e.config.ClampMultiple
	lower := *subject.EconomicDamages / e.config.ClampMultiple

	switch {
	case point > upper:
		return upper, true
	case point < lower:
		return lower, true
	default:
		return point, false
	}
}

// modeledBand derives a log-normal 90% band centered on the point
// estimate with the configured coefficient of variation.
func (e *Estimator) modeledBand(point float64) (prediction.Interval, bool) {
	if point <= 0 {
		return prediction.Interval{}, false
	}

	cv := math.Min(e.config.FallbackCV, 1.0)
	sigma := math.Sqrt(math.Log(1 + cv*cv))
	mu := math.Log(point) - sigma*sigma/2

	dist := distuv.LogNormal{Mu: mu, Sigma: sigma}
	return prediction.Interval{
		Lower: dist.Quantile(0.05),
		Upper: dist.Quantile(0.95),
	}, true
}

func pointIntervals(point float64) map[string]prediction.Interval {
	intervals := make(map[string]prediction.Interval, len(prediction.IntervalKeys))
	for _, key := range prediction.IntervalKeys {
		intervals[key] = prediction.Interval{Lower: point, Upper: point}
	}
	return intervals
}

// sortByValue sorts the value/weight pairs ascending by value, as the
// weighted quantile computation requires.
func sortByValue(values, weights []float64) {
	indices := make([]int, len(values))
	for i := range indices {
		indices[i] = i
	}
	sort.SliceStable(indices, func(a, b int) bool {
		return values[indices[a]] < values[indices[b]]
	})

	sortedValues := make([]float64, len(values))
	sortedWeights := make([]float64, len(weights))
	for i, idx := range indices {
		sortedValues[i] = values[idx]
		sortedWeights[i] = weights[idx]
	}
	copy(values, sortedValues)
	copy(weights, sortedWeights)
}
