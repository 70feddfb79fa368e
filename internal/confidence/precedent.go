package confidence

import (
	"caselens/domain/prediction"
)

// precedentStrength scores the mean similarity of the neighbors whose
// outcomes actually back the estimate, discounted when fewer than the
// target count were available and discounted again when the estimator's
// sanity clamp had to intervene. Neighbors without a usable outcome are
// retrieval hits the estimator could not use; they carry no precedent
// weight here.
func precedentStrength(neighbors []prediction.SimilarityResult, targetCount int, clampApplied bool, clampPenalty float64) float64 {
	sum := 0.0
	usable := 0
	for _, neighbor := range neighbors {
		if !neighbor.Case.HasOutcomeValue() {
			continue
		}
		sum += neighbor.Similarity
		usable++
	}
	if usable == 0 {
		return 0
	}
	score := sum / float64(usable)

	if targetCount > 0 && usable < targetCount {
		score *= float64(usable) / float64(targetCount)
	}
	if clampApplied {
		score *= clampPenalty
	}

	return clampUnit(score)
}
