package prediction

import (
	"time"

	"caselens/domain/casefile"
	"caselens/domain/core"
)

// SimilarityResult pairs a historical case with its similarity to the
// subject, always within [0,1]. Lists are ordered descending by
// similarity; ties break by more recent decision date, then corpus order.
type SimilarityResult struct {
	Case       casefile.HistoricalCase `json:"case"`
	Similarity float64                 `json:"similarity"`
}

// Interval keys, widest to narrowest.
const (
	Interval90 = "90%"
	Interval80 = "80%"
	Interval50 = "50%"
)

// IntervalKeys lists the required interval widths in nesting order,
// widest first.
var IntervalKeys = []string{Interval90, Interval80, Interval50}

// Interval is a closed settlement value range, Lower <= Upper, both
// non-negative.
type Interval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// Width returns Upper - Lower.
func (i Interval) Width() float64 { return i.Upper - i.Lower }

// Contains reports whether v lies within the closed interval.
func (i Interval) Contains(v float64) bool { return v >= i.Lower && v <= i.Upper }

// ContainsInterval reports whether inner is fully contained in i.
func (i Interval) ContainsInterval(inner Interval) bool {
	return inner.Lower >= i.Lower && inner.Upper <= i.Upper
}

// SettlementDistribution holds the point estimate and nested confidence
// intervals for one analysis. Created once per request, never mutated.
type SettlementDistribution struct {
	PointEstimate float64             `json:"point_estimate"`
	Intervals     map[string]Interval `json:"confidence_intervals"`

	// InsufficientPrecedent marks distributions built from fewer than 2
	// usable neighbors: intervals collapse to the point estimate rather
	// than fabricating spread, and statistical confidence scores 0.
	InsufficientPrecedent bool `json:"insufficient_precedent,omitempty"`

	// ClampApplied records that the sanity bound against the subject's
	// economic damages moved the point estimate.
	ClampApplied bool `json:"clamp_applied,omitempty"`

	// SampleSize is the number of neighbor outcomes actually used.
	SampleSize int `json:"sample_size"`

	// ModeledBand is an advisory log-normal uncertainty band reported
	// when the empirical intervals are degenerate. It never feeds the
	// confidence scorer.
	ModeledBand *Interval `json:"modeled_band,omitempty"`
}

// ConfidenceAssessment is the multi-dimensional confidence breakdown for
// one prediction.
type ConfidenceAssessment struct {
	OverallScore     float64            `json:"overall_score"` // 0-10
	Classification   string             `json:"classification"`
	Explanation      string             `json:"explanation"`
	DimensionScores  map[string]float64 `json:"dimension_scores"`  // each 0-1
	DimensionWeights map[string]float64 `json:"dimension_weights"` // sum to 1
}

// AnalysisResult is the root object handed to rendering, export and
// storage. Each request constructs its own graph; nothing is shared
// across concurrent requests.
type AnalysisResult struct {
	ID                core.AnalysisID           `json:"id"`
	CreatedAt         time.Time                 `json:"created_at"`
	SubjectFeatures   casefile.CaseFeatures     `json:"subject_features"`
	Settlement        SettlementDistribution    `json:"settlement"`
	Confidence        ConfidenceAssessment      `json:"confidence"`
	SimilarCases      []SimilarityResult        `json:"similar_cases"`
	ExtractedFeatures casefile.ExtractedSummary `json:"extracted_features"`
	Narrative         string                    `json:"narrative,omitempty"`
}
