package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"

	"caselens/domain/casefile"
	"caselens/domain/core"
	"caselens/internal/errors"
	"caselens/ports"
)

// CorpusRepository implements the corpus ports over PostgreSQL.
type CorpusRepository struct {
	db *sqlx.DB
}

// NewCorpusRepository creates a PostgreSQL corpus repository
func NewCorpusRepository(db *sqlx.DB) *CorpusRepository {
	return &CorpusRepository{db: db}
}

var _ ports.CorpusReaderPort = (*CorpusRepository)(nil)
var _ ports.CorpusWriterPort = (*CorpusRepository)(nil)

type historicalCaseRow struct {
	ID                 string          `db:"id"`
	Title              sql.NullString  `db:"title"`
	Summary            sql.NullString  `db:"summary"`
	CaseType           sql.NullString  `db:"case_type"`
	Subtypes           []byte          `db:"subtypes"`
	Jurisdiction       sql.NullString  `db:"jurisdiction"`
	InjuryType         sql.NullString  `db:"injury_type"`
	EconomicDamages    sql.NullFloat64 `db:"economic_damages"`
	NonEconomicDamages sql.NullFloat64 `db:"non_economic_damages"`
	SettlementValue    sql.NullFloat64 `db:"settlement_value"`
	VerdictOutcome     sql.NullString  `db:"verdict_outcome"`
	DecidedAt          sql.NullTime    `db:"decided_at"`
}

// Snapshot returns historical cases in stable corpus insertion order.
// Any database failure is classified as a retrieval error so callers
// can apply their retry policy.
func (r *CorpusRepository) Snapshot(ctx context.Context, ref string) ([]casefile.HistoricalCase, error) {
	var rows []historicalCaseRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, title, summary, case_type, subtypes, jurisdiction, injury_type,
		       economic_damages, non_economic_damages, settlement_value,
		       verdict_outcome, decided_at
		FROM historical_cases
		WHERE $1 = '' OR snapshot_ref = $1
		ORDER BY inserted_at, id`, ref)
	if err != nil {
		return nil, errors.RetrievalError(err)
	}

	cases := make([]casefile.HistoricalCase, 0, len(rows))
	for _, row := range rows {
		cases = append(cases, row.toDomain())
	}
	return cases, nil
}

// InsertCases loads historical cases into the corpus under the latest
// snapshot.
func (r *CorpusRepository) InsertCases(ctx context.Context, cases []casefile.HistoricalCase) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(errors.DatabaseError(err.Error()), "failed to begin corpus insert")
	}
	defer tx.Rollback()

	for _, historical := range cases {
		subtypes, _ := json.Marshal(historical.Features.CaseType.Subtypes)
		_, err := tx.ExecContext(ctx, `
			INSERT INTO historical_cases (
				id, title, summary, case_type, subtypes, jurisdiction, injury_type,
				economic_damages, non_economic_damages, settlement_value,
				verdict_outcome, decided_at, snapshot_ref, inserted_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, '', NOW())
			ON CONFLICT (id) DO NOTHING`,
			historical.ID.String(), historical.Title, historical.Summary,
			historical.Features.CaseType.Primary, subtypes,
			historical.Features.Jurisdiction, historical.Features.InjuryType,
			nullableFloat(historical.Features.EconomicDamages),
			nullableFloat(historical.Features.NonEconomicDamages),
			nullableFloat(historical.SettlementValue),
			historical.VerdictOutcome, nullableTime(historical.DecidedAt))
		if err != nil {
			return errors.Wrapf(errors.DatabaseError(err.Error()), "failed to insert case %s", historical.ID)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(errors.DatabaseError(err.Error()), "failed to commit corpus insert")
	}
	return nil
}

func (row historicalCaseRow) toDomain() casefile.HistoricalCase {
	historical := casefile.HistoricalCase{
		ID:             core.CaseID(row.ID),
		Title:          row.Title.String,
		Summary:        row.Summary.String,
		VerdictOutcome: row.VerdictOutcome.String,
		Features: casefile.CaseFeatures{
			CaseType:     casefile.CaseType{Primary: row.CaseType.String},
			Jurisdiction: row.Jurisdiction.String,
			InjuryType:   row.InjuryType.String,
		},
	}

	if len(row.Subtypes) > 0 {
		var subtypes []string
		if err := json.Unmarshal(row.Subtypes, &subtypes); err == nil {
			historical.Features.CaseType.Subtypes = subtypes
		}
	}
	if row.EconomicDamages.Valid {
		historical.Features.EconomicDamages = casefile.Float(row.EconomicDamages.Float64)
	}
	if row.NonEconomicDamages.Valid {
		historical.Features.NonEconomicDamages = casefile.Float(row.NonEconomicDamages.Float64)
	}
	if row.SettlementValue.Valid {
		historical.SettlementValue = casefile.Float(row.SettlementValue.Float64)
	}
	if row.DecidedAt.Valid {
		historical.DecidedAt = row.DecidedAt.Time
	}
	return historical
}

func nullableFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullableTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}
