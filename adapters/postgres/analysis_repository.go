package postgres

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/jmoiron/sqlx"

	"caselens/domain/core"
	"caselens/domain/prediction"
	"caselens/internal/errors"
	"caselens/ports"
)

// AnalysisRepository persists analysis results as JSONB documents.
type AnalysisRepository struct {
	db *sqlx.DB
}

// NewAnalysisRepository creates a PostgreSQL analysis repository
func NewAnalysisRepository(db *sqlx.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

var _ ports.AnalysisLedgerPort = (*AnalysisRepository)(nil)

// SaveAnalysis stores a completed analysis. Results are immutable; a
// duplicate ID is left untouched.
func (r *AnalysisRepository) SaveAnalysis(ctx context.Context, result *prediction.AnalysisResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return errors.Wrap(err, "failed to serialize analysis result")
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO analyses (id, created_at, result)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO NOTHING`,
		result.ID.String(), result.CreatedAt, payload)
	if err != nil {
		return errors.Wrap(errors.DatabaseError(err.Error()), "failed to store analysis")
	}
	return nil
}

// GetAnalysis loads one stored analysis by ID.
func (r *AnalysisRepository) GetAnalysis(ctx context.Context, id core.AnalysisID) (*prediction.AnalysisResult, error) {
	var payload []byte
	err := r.db.GetContext(ctx, &payload, `SELECT result FROM analyses WHERE id = $1`, id.String())
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("analysis")
	}
	if err != nil {
		return nil, errors.Wrap(errors.DatabaseError(err.Error()), "failed to load analysis")
	}

	var result prediction.AnalysisResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, errors.Wrap(err, "failed to deserialize analysis result")
	}
	return &result, nil
}

// ListAnalyses returns the most recent analyses, newest first.
func (r *AnalysisRepository) ListAnalyses(ctx context.Context, limit int) ([]*prediction.AnalysisResult, error) {
	if limit <= 0 {
		limit = 20
	}

	var payloads [][]byte
	err := r.db.SelectContext(ctx, &payloads, `
		SELECT result FROM analyses ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, errors.Wrap(errors.DatabaseError(err.Error()), "failed to list analyses")
	}

	results := make([]*prediction.AnalysisResult, 0, len(payloads))
	for _, payload := range payloads {
		var result prediction.AnalysisResult
		if err := json.Unmarshal(payload, &result); err != nil {
			return nil, errors.Wrap(err, "failed to deserialize analysis result")
		}
		results = append(results, &result)
	}
	return results, nil
}
