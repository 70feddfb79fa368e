package ui

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"caselens/app"
	"caselens/domain/casefile"
	"caselens/domain/core"
	"caselens/internal/errors"
	"caselens/internal/report"
)

// analyzeRequest is the wire shape of one analysis request: raw intake
// fields plus retrieval options.
type analyzeRequest struct {
	Intake    casefile.RawIntake `json:"intake"`
	CorpusRef string             `json:"corpus_ref,omitempty"`
	K         int                `json:"k,omitempty"`
}

type batchRequest struct {
	Requests []analyzeRequest `json:"requests"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *App) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeError(w, errors.InvalidInput("request body is not valid JSON"))
		return
	}

	serviceReq, err := a.toServiceRequest(req)
	if err != nil {
		a.writeError(w, err)
		return
	}

	result, err := a.service.Analyze(r.Context(), serviceReq)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (a *App) handleAnalyzeBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeError(w, errors.InvalidInput("request body is not valid JSON"))
		return
	}
	if len(req.Requests) == 0 {
		a.writeError(w, errors.InvalidInput("batch contains no requests"))
		return
	}

	serviceReqs := make([]app.AnalyzeRequest, 0, len(req.Requests))
	for _, item := range req.Requests {
		serviceReq, err := a.toServiceRequest(item)
		if err != nil {
			a.writeError(w, err)
			return
		}
		serviceReqs = append(serviceReqs, serviceReq)
	}

	results, err := a.service.BatchAnalyze(r.Context(), serviceReqs)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"results": results})
}

func (a *App) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseAnalysisID(chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, errors.InvalidInput("malformed analysis id"))
		return
	}

	result, err := a.service.GetAnalysis(r.Context(), id)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (a *App) handleListAnalyses(w http.ResponseWriter, r *http.Request) {
	results, err := a.service.ListAnalyses(r.Context(), 20)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"analyses": results})
}

func (a *App) handleAnalysisReport(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseAnalysisID(chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, errors.InvalidInput("malformed analysis id"))
		return
	}

	result, err := a.service.GetAnalysis(r.Context(), id)
	if err != nil {
		a.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(report.RenderHTML(result))
}

func (a *App) toServiceRequest(req analyzeRequest) (app.AnalyzeRequest, error) {
	subject, err := a.normalizer.Normalize(req.Intake)
	if err != nil {
		return app.AnalyzeRequest{}, err
	}
	return app.AnalyzeRequest{
		Subject:   subject,
		CorpusRef: req.CorpusRef,
		K:         req.K,
	}, nil
}

// writeError maps the error taxonomy onto HTTP statuses. Invariant
// violations are logged in full and surfaced as an opaque internal
// error.
func (a *App) writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)

	status := http.StatusInternalServerError
	message := err.Error()

	switch code {
	case errors.CodeInvalidInput:
		status = http.StatusBadRequest
	case errors.CodeInsufficientData:
		status = http.StatusUnprocessableEntity
	case errors.CodeNotFound:
		status = http.StatusNotFound
	case errors.CodeRetrievalError:
		status = http.StatusServiceUnavailable
		message = "analysis temporarily unavailable"
	case errors.CodeInvariantViolation:
		a.logger.Error("invariant violation: %v", err)
		message = "internal analysis error"
	default:
		a.logger.Error("unhandled error: %v", err)
		message = "internal error"
	}

	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
