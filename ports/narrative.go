package ports

import (
	"context"

	"caselens/domain/prediction"
)

// NarrativePort produces the free-text case narrative for an assembled
// result. Text generation is an external collaborator: the default
// adapter is deterministic and template-based, a model-backed one can be
// swapped in without touching the valuation core.
type NarrativePort interface {
	Narrate(ctx context.Context, result *prediction.AnalysisResult) (string, error)
}
