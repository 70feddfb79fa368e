package confidence

import (
	"math"

	"caselens/domain/casefile"
	"caselens/domain/prediction"
)

// sameTypeTarget is the same-primary-type precedent count considered
// fully specific.
const sameTypeTarget = 3

// caseTypeSpecificity scores whether enough same-primary-type precedents
// back the estimate, versus generic fallback matches. It averages the
// same-type share of the neighbor list with a depth term that saturates
// at sameTypeTarget matching precedents.
func caseTypeSpecificity(subject casefile.CaseFeatures, neighbors []prediction.SimilarityResult) float64 {
	if len(neighbors) == 0 || !subject.CaseType.IsKnown() {
		return 0
	}

	sameType := 0
	for _, neighbor := range neighbors {
		if neighbor.Case.Features.CaseType.Primary == subject.CaseType.Primary {
			sameType++
		}
	}

	share := float64(sameType) / float64(len(neighbors))
	depth := math.Min(1, float64(sameType)/sameTypeTarget)
	return clampUnit((share + depth) / 2)
}
