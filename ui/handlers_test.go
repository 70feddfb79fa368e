package ui

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"caselens/adapters/similarity"
	"caselens/app"
	"caselens/domain/casefile"
	"caselens/domain/core"
	"caselens/domain/prediction"
	"caselens/internal"
	"caselens/internal/confidence"
	"caselens/internal/errors"
	"caselens/internal/estimator"
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
	saved map[core.AnalysisID]*prediction.AnalysisResult
}

func newLedgerStub() *ledgerStub {
	return &ledgerStub{saved: make(map[core.AnalysisID]*prediction.AnalysisResult)}
}

func (s *ledgerStub) SaveAnalysis(ctx context.Context, result *prediction.AnalysisResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved[result.ID] = result
	return nil
}

func (s *ledgerStub) GetAnalysis(ctx context.Context, id core.AnalysisID) (*prediction.AnalysisResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if result, ok := s.saved[id]; ok {
		return result, nil
	}
	return nil, errors.NotFound("analysis")
}

func (s *ledgerStub) ListAnalyses(ctx context.Context, limit int) ([]*prediction.AnalysisResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var results []*prediction.AnalysisResult
	for _, result := range s.saved {
		if len(results) >= limit {
			break
		}
		results = append(results, result)
	}
	return results, nil
}

func newTestApp(corpus *corpusStub, ledger *ledgerStub) *App {
	logger := internal.NewLogger(internal.LogLevelError)
	service := app.NewAnalysisService(
		corpus,
		ledger,
		nil,
		similarity.NewEngine(similarity.DefaultConfig()),
		estimator.NewEstimator(estimator.DefaultConfig()),
		confidence.NewScorer(confidence.DefaultConfig()),
		logger,
		app.Options{},
	)
	return NewApp(service, logger)
}

func seededCorpus() *corpusStub {
	decided := time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC)
	var cases []casefile.HistoricalCase
	for i, value := range []float64{40000, 45000, 60000} {
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
	return &corpusStub{cases: cases}
}

func analyzeBody() []byte {
	body, _ := json.Marshal(map[string]interface{}{
		"intake": map[string]string{
			"title":                "Rear-end collision",
			"claim_type":           "personal injury",
			"facts":                "Vehicle collision with whiplash injuries.",
			"injury_details":       "whiplash",
			"jurisdiction":         "King County",
			"economic_damages":     "$42,000",
			"non_economic_damages": "$15,000",
		},
	})
	return body
}

func TestHandleHealth(t *testing.T) {
	app := newTestApp(seededCorpus(), newLedgerStub())

	rec := httptest.NewRecorder()
	app.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestHandleAnalyze_Success(t *testing.T) {
	app := newTestApp(seededCorpus(), newLedgerStub())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", bytes.NewReader(analyzeBody()))
	app.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}

	var result prediction.AnalysisResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("response is not a valid analysis result: %v", err)
	}
	if result.ID == "" {
		t.Error("response missing analysis id")
	}
	if result.Settlement.PointEstimate <= 0 {
		t.Errorf("point estimate = %v, want positive", result.Settlement.PointEstimate)
	}
	if len(result.Settlement.Intervals) != 3 {
		t.Errorf("interval count = %d, want 3", len(result.Settlement.Intervals))
	}
	if result.Confidence.Classification == "" {
		t.Error("response missing confidence classification")
	}
}

func TestHandleAnalyze_ErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		corpus     *corpusStub
		body       []byte
		wantStatus int
		wantCode   string
	}{
		{
			name:       "malformed json",
			corpus:     seededCorpus(),
			body:       []byte("{not json"),
			wantStatus: http.StatusBadRequest,
			wantCode:   errors.CodeInvalidInput,
		},
		{
			name:   "intake without damages",
			corpus: seededCorpus(),
			body: mustJSON(map[string]interface{}{
				"intake": map[string]string{"facts": "no damages stated"},
			}),
			wantStatus: http.StatusBadRequest,
			wantCode:   errors.CodeInvalidInput,
		},
		{
			name:       "corpus unavailable",
			corpus:     &corpusStub{err: errors.RetrievalError(fmt.Errorf("connection refused"))},
			body:       analyzeBody(),
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   errors.CodeRetrievalError,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			app := newTestApp(c.corpus, newLedgerStub())

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/analyze", bytes.NewReader(c.body))
			app.Router().ServeHTTP(rec, req)

			if rec.Code != c.wantStatus {
				t.Fatalf("status = %d, want %d; body: %s", rec.Code, c.wantStatus, rec.Body.String())
			}
			var resp errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("error body is not valid JSON: %v", err)
			}
			if resp.Code != c.wantCode {
				t.Errorf("error code = %q, want %q", resp.Code, c.wantCode)
			}
		})
	}
}

func TestHandleAnalyze_RetrievalErrorHidesDetail(t *testing.T) {
	app := newTestApp(&corpusStub{err: errors.RetrievalError(fmt.Errorf("dial tcp 10.0.0.5: connection refused"))}, newLedgerStub())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", bytes.NewReader(analyzeBody()))
	app.Router().ServeHTTP(rec, req)

	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("error body is not valid JSON: %v", err)
	}
	if resp.Message != "analysis temporarily unavailable" {
		t.Errorf("message = %q, infrastructure detail must not leak", resp.Message)
	}
}

func TestHandleAnalyzeBatch(t *testing.T) {
	app := newTestApp(seededCorpus(), newLedgerStub())

	body := mustJSON(map[string]interface{}{
		"requests": []interface{}{
			json.RawMessage(analyzeBody()),
			json.RawMessage(analyzeBody()),
		},
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/analyze/batch", bytes.NewReader(body))
	app.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Results []prediction.AnalysisResult `json:"results"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("batch body is not valid JSON: %v", err)
	}
	if len(resp.Results) != 2 {
		t.Errorf("result count = %d, want 2", len(resp.Results))
	}

	empty := mustJSON(map[string]interface{}{"requests": []interface{}{}})
	rec = httptest.NewRecorder()
	app.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/analyze/batch", bytes.NewReader(empty)))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty batch status = %d, want 400", rec.Code)
	}
}

func TestHandleGetAnalysis(t *testing.T) {
	ledger := newLedgerStub()
	app := newTestApp(seededCorpus(), ledger)

	// Create one analysis through the API, then fetch it back.
	rec := httptest.NewRecorder()
	app.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/analyze", bytes.NewReader(analyzeBody())))
	var created prediction.AnalysisResult
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("analyze response invalid: %v", err)
	}

	rec = httptest.NewRecorder()
	app.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/analyses/"+created.ID.String(), nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}

	// Malformed and unknown ids.
	rec = httptest.NewRecorder()
	app.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/analyses/not-a-uuid", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("malformed id status = %d, want 400", rec.Code)
	}

	rec = httptest.NewRecorder()
	app.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/analyses/"+core.NewID().String(), nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown id status = %d, want 404", rec.Code)
	}
}

func TestHandleAnalysisReport(t *testing.T) {
	ledger := newLedgerStub()
	app := newTestApp(seededCorpus(), ledger)

	rec := httptest.NewRecorder()
	app.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/analyze", bytes.NewReader(analyzeBody())))
	var created prediction.AnalysisResult
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("analyze response invalid: %v", err)
	}

	rec = httptest.NewRecorder()
	app.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/analyses/"+created.ID.String()+"/report", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("report status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("content type = %q, want text/html", ct)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte("<table>")) {
		t.Error("report body should contain rendered tables")
	}
}

func mustJSON(v interface{}) []byte {
	body, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return body
}
