package app

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

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

type corpusStub struct {
	cases []casefile.HistoricalCase
	err   error
}

func (s *corpusStub) Snapshot(ctx context.Context, ref string) ([]casefile.HistoricalCase, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.cases, nil
}

type ledgerStub struct {
	mu    sync.Mutex
	saved []*prediction.AnalysisResult
}

func (s *ledgerStub) SaveAnalysis(ctx context.Context, result *prediction.AnalysisResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, result)
	return nil
}

func (s *ledgerStub) GetAnalysis(ctx context.Context, id core.AnalysisID) (*prediction.AnalysisResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, result := range s.saved {
		if result.ID == id {
			return result, nil
		}
	}
	return nil, errors.NotFound("analysis")
}

func (s *ledgerStub) ListAnalyses(ctx context.Context, limit int) ([]*prediction.AnalysisResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if limit > len(s.saved) {
		limit = len(s.saved)
	}
	return s.saved[:limit], nil
}

type narratorStub struct{ err error }

func (s *narratorStub) Narrate(ctx context.Context, result *prediction.AnalysisResult) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "narrative for " + result.ID.String(), nil
}

var _ ports.CorpusReaderPort = (*corpusStub)(nil)
var _ ports.AnalysisLedgerPort = (*ledgerStub)(nil)
var _ ports.NarrativePort = (*narratorStub)(nil)

func testCorpus() []casefile.HistoricalCase {
	decided := time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC)
	var cases []casefile.HistoricalCase
	for i, value := range []float64{40000, 45000, 60000, 52000, 48000} {
		cases = append(cases, casefile.HistoricalCase{
			ID: core.CaseID(fmt.Sprintf("case-%d", i)),
			Features: casefile.CaseFeatures{
				EconomicDamages: casefile.Float(value * 0.8),
				CaseType:        casefile.CaseType{Primary: casefile.TypePersonalInjury},
				Jurisdiction:    "king_county",
				InjuryType:      "whiplash",
			},
			SettlementValue: casefile.Float(value),
			DecidedAt:       decided.AddDate(0, i, 0),
		})
	}
	return cases
}

func testSubject() casefile.CaseFeatures {
	return casefile.CaseFeatures{
		EconomicDamages:    casefile.Float(42000),
		NonEconomicDamages: casefile.Float(15000),
		CaseType:           casefile.CaseType{Primary: casefile.TypePersonalInjury},
		Jurisdiction:       "king_county",
		InjuryType:         "whiplash",
	}
}

func newTestService(corpus ports.CorpusReaderPort, ledger ports.AnalysisLedgerPort, narrator ports.NarrativePort) *AnalysisService {
	return NewAnalysisService(
		corpus,
		ledger,
		narrator,
		similarity.NewEngine(similarity.DefaultConfig()),
		estimator.NewEstimator(estimator.DefaultConfig()),
		confidence.NewScorer(confidence.DefaultConfig()),
		internal.NewLogger(internal.LogLevelError),
		Options{DefaultK: 5, BatchParallelism: 2},
	)
}

func TestAnalyze_FullPipeline(t *testing.T) {
	ledger := &ledgerStub{}
	service := newTestService(&corpusStub{cases: testCorpus()}, ledger, &narratorStub{})

	result, err := service.Analyze(context.Background(), AnalyzeRequest{Subject: testSubject()})
	require.NoError(t, err)

	assert.NotEmpty(t, result.ID)
	assert.False(t, result.CreatedAt.IsZero())
	assert.Len(t, result.SimilarCases, 5)
	assert.Greater(t, result.Settlement.PointEstimate, 0.0)
	assert.NotEmpty(t, result.Confidence.Classification)
	assert.NotEmpty(t, result.Narrative)
	assert.NoError(t, prediction.ValidateDistribution(result.Settlement))

	// The completed analysis is persisted to the ledger.
	require.Len(t, ledger.saved, 1)
	assert.Equal(t, result.ID, ledger.saved[0].ID)
}

func TestAnalyze_DeterministicValuation(t *testing.T) {
	service := newTestService(&corpusStub{cases: testCorpus()}, &ledgerStub{}, nil)
	req := AnalyzeRequest{Subject: testSubject()}

	first, err := service.Analyze(context.Background(), req)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, err := service.Analyze(context.Background(), req)
		require.NoError(t, err)

		// ID and timestamp differ per analysis; the valuation itself must not.
		assert.Equal(t, first.Settlement, again.Settlement)
		assert.Equal(t, first.Confidence, again.Confidence)
		assert.Equal(t, first.SimilarCases, again.SimilarCases)
		assert.NotEqual(t, first.ID, again.ID)
	}
}

func TestAnalyze_EmptyCorpusDegrades(t *testing.T) {
	service := newTestService(&corpusStub{}, &ledgerStub{}, nil)

	result, err := service.Analyze(context.Background(), AnalyzeRequest{Subject: testSubject()})
	require.NoError(t, err)

	assert.True(t, result.Settlement.InsufficientPrecedent)
	assert.Empty(t, result.SimilarCases)
	assert.Contains(t, []string{"Low", "Very Low"}, result.Confidence.Classification)
	assert.Zero(t, result.Confidence.DimensionScores["statistical_confidence"])
}

func TestAnalyze_CorpusFailureIsRetrievalError(t *testing.T) {
	service := newTestService(&corpusStub{err: fmt.Errorf("connection refused")}, &ledgerStub{}, nil)

	_, err := service.Analyze(context.Background(), AnalyzeRequest{Subject: testSubject()})
	require.Error(t, err)
	assert.Equal(t, errors.CodeRetrievalError, errors.GetCode(err))
}

func TestAnalyze_InvalidSubjectRejected(t *testing.T) {
	service := newTestService(&corpusStub{cases: testCorpus()}, &ledgerStub{}, nil)

	_, err := service.Analyze(context.Background(), AnalyzeRequest{
		Subject: casefile.CaseFeatures{Jurisdiction: "king_county"},
	})
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestAnalyze_NarratorFailureDegrades(t *testing.T) {
	service := newTestService(&corpusStub{cases: testCorpus()}, &ledgerStub{},
		&narratorStub{err: fmt.Errorf("model unavailable")})

	result, err := service.Analyze(context.Background(), AnalyzeRequest{Subject: testSubject()})
	require.NoError(t, err, "narrative failure must not fail the analysis")
	assert.Empty(t, result.Narrative)
}

func TestAnalyze_KOverridesDefault(t *testing.T) {
	service := newTestService(&corpusStub{cases: testCorpus()}, &ledgerStub{}, nil)

	result, err := service.Analyze(context.Background(), AnalyzeRequest{Subject: testSubject(), K: 2})
	require.NoError(t, err)
	assert.Len(t, result.SimilarCases, 2)
}

func TestBatchAnalyze_PreservesRequestOrder(t *testing.T) {
	service := newTestService(&corpusStub{cases: testCorpus()}, &ledgerStub{}, nil)

	subjects := []float64{10000, 42000, 90000, 250000}
	reqs := make([]AnalyzeRequest, 0, len(subjects))
	for _, damages := range subjects {
		subject := testSubject()
		subject.EconomicDamages = casefile.Float(damages)
		reqs = append(reqs, AnalyzeRequest{Subject: subject})
	}

	results, err := service.BatchAnalyze(context.Background(), reqs)
	require.NoError(t, err)
	require.Len(t, results, len(reqs))

	for i, result := range results {
		require.NotNil(t, result, "missing result for request %d", i)
		assert.Equal(t, subjects[i], *result.SubjectFeatures.EconomicDamages)
	}
}

func TestBatchAnalyze_FailureCancelsBatch(t *testing.T) {
	service := newTestService(&corpusStub{cases: testCorpus()}, &ledgerStub{}, nil)

	reqs := []AnalyzeRequest{
		{Subject: testSubject()},
		{Subject: casefile.CaseFeatures{}}, // no numeric basis
	}

	_, err := service.BatchAnalyze(context.Background(), reqs)
	require.Error(t, err)
}

func TestGetAnalysis_RoundTrip(t *testing.T) {
	ledger := &ledgerStub{}
	service := newTestService(&corpusStub{cases: testCorpus()}, ledger, nil)

	created, err := service.Analyze(context.Background(), AnalyzeRequest{Subject: testSubject()})
	require.NoError(t, err)

	loaded, err := service.GetAnalysis(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, loaded.ID)

	_, err = service.GetAnalysis(context.Background(), core.AnalysisID(core.NewID()))
	require.Error(t, err)
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
}
