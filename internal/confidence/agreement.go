package confidence

import (
	"github.com/montanaflynn/stats"

	"caselens/domain/prediction"
)

// neighborAgreement scores the inverse-normalized dispersion of neighbor
// settlement values: 1 - coefficient of variation, clamped to [0,1].
// Fewer than 2 outcomes cannot exhibit agreement and score 0.
func neighborAgreement(neighbors []prediction.SimilarityResult) float64 {
	values := outcomeValues(neighbors)
	if len(values) < 2 {
		return 0
	}

	mean, err := stats.Mean(values)
	if err != nil {
		return 0
	}
	stdDev, err := stats.StandardDeviation(values)
	if err != nil {
		return 0
	}

	if mean == 0 {
		// Settlement values are non-negative, so a zero mean means every
		// outcome was zero: perfect agreement.
		return 1
	}

	return clampUnit(1 - stdDev/mean)
}

func outcomeValues(neighbors []prediction.SimilarityResult) []float64 {
	var values []float64
	for _, neighbor := range neighbors {
		if neighbor.Case.HasOutcomeValue() {
			values = append(values, *neighbor.Case.SettlementValue)
		}
	}
	return values
}
