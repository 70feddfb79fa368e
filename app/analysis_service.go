package app

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"caselens/adapters/similarity"
	"caselens/domain/casefile"
	"caselens/domain/core"
	"caselens/domain/prediction"
	"caselens/internal"
	"caselens/internal/confidence"
	"caselens/internal/errors"
	"caselens/internal/estimator"
	"caselens/ports"
)

// AnalysisService runs the valuation pipeline: retrieve neighbors,
// estimate the settlement distribution, score confidence, assemble the
// result. Each request builds its own object graph; the service holds
// no per-request state and is safe for concurrent use.
type AnalysisService struct {
	corpus    ports.CorpusReaderPort
	ledger    ports.AnalysisLedgerPort
	narrator  ports.NarrativePort
	retriever *similarity.Engine
	estimator *estimator.Estimator
	scorer    *confidence.Scorer
	logger    *internal.Logger

	defaultK         int
	batchParallelism int
}

// AnalyzeRequest defines one analysis: a normalized subject, an opaque
// corpus snapshot reference, and the neighbor count (0 selects the
// configured default).
type AnalyzeRequest struct {
	Subject   casefile.CaseFeatures
	CorpusRef string
	K         int
}

// Options tune the service.
type Options struct {
	DefaultK         int
	BatchParallelism int
}

// NewAnalysisService creates an analysis service
func NewAnalysisService(
	corpus ports.CorpusReaderPort,
	ledger ports.AnalysisLedgerPort,
	narrator ports.NarrativePort,
	retriever *similarity.Engine,
	est *estimator.Estimator,
	scorer *confidence.Scorer,
	logger *internal.Logger,
	opts Options,
) *AnalysisService {
	if opts.DefaultK <= 0 {
		opts.DefaultK = 5
	}
	if opts.BatchParallelism <= 0 {
		opts.BatchParallelism = 4
	}
	return &AnalysisService{
		corpus:           corpus,
		ledger:           ledger,
		narrator:         narrator,
		retriever:        retriever,
		estimator:        est,
		scorer:           scorer,
		logger:           logger,
		defaultK:         opts.DefaultK,
		batchParallelism: opts.BatchParallelism,
	}
}

// Analyze runs the full pipeline for one subject case.
func (s *AnalysisService) Analyze(ctx context.Context, req AnalyzeRequest) (*prediction.AnalysisResult, error) {
	k := req.K
	if k == 0 {
		k = s.defaultK
	}

	corpus, err := s.corpus.Snapshot(ctx, req.CorpusRef)
	if err != nil {
		if errors.HasCode(err, errors.CodeRetrievalError) {
			return nil, err
		}
		return nil, errors.RetrievalError(err)
	}

	neighbors, err := s.retriever.Retrieve(req.Subject, corpus, k)
	if err != nil {
		return nil, err
	}

	distribution, err := s.estimator.Estimate(req.Subject, neighbors)
	if err != nil {
		return nil, err
	}

	assessment, err := s.scorer.Score(req.Subject, neighbors, *distribution)
	if err != nil {
		return nil, err
	}

	result, err := prediction.Assemble(req.Subject, *distribution, *assessment, neighbors, casefile.BuildSummary(req.Subject))
	if err != nil {
		s.logger.Error("analysis assembly failed: %v", err)
		return nil, err
	}

	result.ID = core.AnalysisID(core.NewID())
	result.CreatedAt = time.Now().UTC()

	if s.narrator != nil {
		narrative, err := s.narrator.Narrate(ctx, result)
		if err != nil {
			// Narrative is presentation, not valuation; a failure
			// degrades the result instead of failing the request.
			s.logger.Warn("narrative generation failed for analysis %s: %v", result.ID, err)
		} else {
			result.Narrative = narrative
		}
	}

	if s.ledger != nil {
		if err := s.ledger.SaveAnalysis(ctx, result); err != nil {
			s.logger.Error("failed to persist analysis %s: %v", result.ID, err)
		}
	}

	return result, nil
}

// BatchAnalyze runs several analyses with bounded parallelism. Results
// keep request order. Any request failure cancels the batch.
func (s *AnalysisService) BatchAnalyze(ctx context.Context, reqs []AnalyzeRequest) ([]*prediction.AnalysisResult, error) {
	results := make([]*prediction.AnalysisResult, len(reqs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.batchParallelism)

	for i, req := range reqs {
		g.Go(func() error {
			result, err := s.Analyze(gctx, req)
			if err != nil {
				return errors.Wrapf(err, "analysis %d of %d failed", i+1, len(reqs))
			}
			results[i] = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// GetAnalysis loads a stored analysis from the ledger.
func (s *AnalysisService) GetAnalysis(ctx context.Context, id core.AnalysisID) (*prediction.AnalysisResult, error) {
	return s.ledger.GetAnalysis(ctx, id)
}

// ListAnalyses returns the most recent stored analyses.
func (s *AnalysisService) ListAnalyses(ctx context.Context, limit int) ([]*prediction.AnalysisResult, error) {
	return s.ledger.ListAnalyses(ctx, limit)
}
