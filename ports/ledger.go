package ports

import (
	"context"

	"caselens/domain/core"
	"caselens/domain/prediction"
)

// AnalysisLedgerPort persists completed analysis results for history and
// export. The ledger is append-oriented; results are immutable once
// stored.
type AnalysisLedgerPort interface {
	SaveAnalysis(ctx context.Context, result *prediction.AnalysisResult) error
	GetAnalysis(ctx context.Context, id core.AnalysisID) (*prediction.AnalysisResult, error)
	ListAnalyses(ctx context.Context, limit int) ([]*prediction.AnalysisResult, error)
}
