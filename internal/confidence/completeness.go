package confidence

import (
	"caselens/domain/casefile"
)

// dataCompleteness scores the fraction of subject attributes present.
// Missing optional attributes lower the score; they are never treated
// as zero values anywhere else in the pipeline.
func dataCompleteness(subject casefile.CaseFeatures) float64 {
	return subject.Completeness()
}
