package similarity

import (
	"math"
	"sort"
	"time"

	"caselens/domain/casefile"
	"caselens/domain/prediction"
	"caselens/internal/errors"
)

// AttributeWeights fixes the contribution of each compared attribute to
// the combined similarity score. Values are configuration, documented
// here, never computed.
type AttributeWeights struct {
	CaseType     float64 `json:"case_type"`
	Jurisdiction float64 `json:"jurisdiction"`
	Damages      float64 `json:"damages"`
	Injury       float64 `json:"injury"`
}

// Config tunes the retriever. Weight profiles follow the case-type
// specific weighting the intake product used: injury-heavy matching for
// personal injury, damages-heavy for contract disputes.
type Config struct {
	Profiles map[string]AttributeWeights
	Default  AttributeWeights

	// PartialTypeCredit scores a shared primary case type with
	// non-overlapping subtypes.
	PartialTypeCredit float64

	// TimeDecayHalfLife, in years, discounts older precedents. Zero
	// disables decay.
	TimeDecayHalfLife float64

	// ReferenceTime anchors precedent age when decay is enabled. Left
	// zero, it is pinned once at engine construction; reading the wall
	// clock per call would make identical retrievals drift.
	ReferenceTime time.Time
}

// DefaultConfig returns the documented default weighting profiles.
func DefaultConfig() Config {
	return Config{
		Profiles: map[string]AttributeWeights{
			casefile.TypePersonalInjury:  {CaseType: 0.25, Jurisdiction: 0.15, Damages: 0.30, Injury: 0.30},
			casefile.TypeContractDispute: {CaseType: 0.30, Jurisdiction: 0.20, Damages: 0.40, Injury: 0.10},
			casefile.TypeEmployment:      {CaseType: 0.30, Jurisdiction: 0.25, Damages: 0.25, Injury: 0.20},
		},
		Default:           AttributeWeights{CaseType: 0.30, Jurisdiction: 0.20, Damages: 0.30, Injury: 0.20},
		PartialTypeCredit: 0.5,
	}
}

// Engine scores a corpus of historical cases against a subject case.
// Stateless; safe for concurrent use.
type Engine struct {
	config Config
}

// NewEngine creates a similarity engine
func NewEngine(config Config) *Engine {
	if config.TimeDecayHalfLife > 0 && config.ReferenceTime.IsZero() {
		config.ReferenceTime = time.Now().UTC()
	}
	return &Engine{config: config}
}

// Retrieve scores every corpus case against the subject and returns the
// top k neighbors ordered descending by similarity. Ties break by more
// recent decision date, then by corpus insertion order. An empty corpus
// yields an empty list, not an error: downstream treats it as absent
// precedent.
func (e *Engine) Retrieve(subject casefile.CaseFeatures, corpus []casefile.HistoricalCase, k int) ([]prediction.SimilarityResult, error) {
	if k <= 0 {
		return nil, errors.InvalidInput("neighbor count k must be positive")
	}
	if !subject.HasNumericBasis() {
		return nil, errors.InvalidInput("subject lacks all required numeric attributes")
	}
	if len(corpus) == 0 {
		return []prediction.SimilarityResult{}, nil
	}

	weights := e.weightsFor(subject.CaseType.Primary)
	damagesRange := observedDamagesRange(subject, corpus)

	results := make([]prediction.SimilarityResult, 0, len(corpus))
	for _, historical := range corpus {
		score := e.scorePair(subject, historical, weights, damagesRange)
		results = append(results, prediction.SimilarityResult{
			Case:       historical,
			Similarity: score,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Similarity != results[j].Similarity {
			return results[i].Similarity > results[j].Similarity
		}
		return results[i].Case.DecidedAt.After(results[j].Case.DecidedAt)
	})

	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

func (e *Engine) weightsFor(primaryType string) AttributeWeights {
	if weights, ok := e.config.Profiles[primaryType]; ok {
		return weights
	}
	return e.config.Default
}

// scorePair computes the weighted similarity over the attributes present
// on both sides. Missing attributes are excluded and the remaining
// weights renormalized, so absence is never scored as mismatch.
func (e *Engine) scorePair(subject casefile.CaseFeatures, historical casefile.HistoricalCase, weights AttributeWeights, damagesRange float64) float64 {
	weightedSum := 0.0
	weightTotal := 0.0

	if subject.CaseType.IsKnown() && historical.Features.CaseType.IsKnown() {
		weightedSum += weights.CaseType * e.caseTypeScore(subject.CaseType, historical.Features.CaseType)
		weightTotal += weights.CaseType
	}

	if subject.Jurisdiction != "" && historical.Features.Jurisdiction != "" {
		weightedSum += weights.Jurisdiction * exactMatch(subject.Jurisdiction, historical.Features.Jurisdiction)
		weightTotal += weights.Jurisdiction
	}

	subjectDamages, subjectKnown := subject.KnownDamages()
	historicalDamages, historicalKnown := historical.Features.KnownDamages()
	if subjectKnown && historicalKnown {
		weightedSum += weights.Damages * damagesScore(subjectDamages, historicalDamages, damagesRange)
		weightTotal += weights.Damages
	}

	if subject.InjuryType != "" && historical.Features.InjuryType != "" {
		weightedSum += weights.Injury * exactMatch(subject.InjuryType, historical.Features.InjuryType)
		weightTotal += weights.Injury
	}

	if weightTotal == 0 {
		return 0
	}

	score := weightedSum / weightTotal
	if e.config.TimeDecayHalfLife > 0 && !historical.DecidedAt.IsZero() {
		score *= e.timeDecay(historical.DecidedAt)
	}
	return clampUnit(score)
}

// caseTypeScore gives full credit for a matching primary type with
// overlapping (or absent) subtypes, partial credit for a matching
// primary with disjoint subtypes, zero otherwise.
func (e *Engine) caseTypeScore(subject, historical casefile.CaseType) float64 {
	if subject.Primary != historical.Primary {
		return 0
	}
	if len(subject.Subtypes) == 0 || len(historical.Subtypes) == 0 {
		return 1
	}
	for _, s := range subject.Subtypes {
		for _, h := range historical.Subtypes {
			if s == h {
				return 1
			}
		}
	}
	return e.config.PartialTypeCredit
}

// damagesScore is a normalized inverse distance: identical amounts score
// 1, amounts at opposite ends of the observed corpus range score 0.
func damagesScore(a, b, observedRange float64) float64 {
	if observedRange <= 0 {
		if a == b {
			return 1
		}
		return 0
	}
	return clampUnit(1 - math.Abs(a-b)/observedRange)
}

// observedDamagesRange spans the known damages of the subject and the
// corpus, so distance normalization reflects the data rather than units.
func observedDamagesRange(subject casefile.CaseFeatures, corpus []casefile.HistoricalCase) float64 {
	low := math.Inf(1)
	high := math.Inf(-1)

	observe := func(v float64) {
		low = math.Min(low, v)
		high = math.Max(high, v)
	}

	if damages, ok := subject.KnownDamages(); ok {
		observe(damages)
	}
	for _, historical := range corpus {
		if damages, ok := historical.Features.KnownDamages(); ok {
			observe(damages)
		}
	}

	if math.IsInf(low, 1) {
		return 0
	}
	return high - low
}

func (e *Engine) timeDecay(decidedAt time.Time) float64 {
	ageYears := e.config.ReferenceTime.Sub(decidedAt).Hours() / (24 * 365.25)
	if ageYears <= 0 {
		return 1
	}
	return math.Exp(-math.Ln2 * ageYears / e.config.TimeDecayHalfLife)
}

func exactMatch(a, b string) float64 {
	if a == b {
		return 1
	}
	return 0
}

func clampUnit(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
