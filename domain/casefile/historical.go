package casefile

import (
	"time"

	"caselens/domain/core"
)

// HistoricalCase is a corpus entry: normalized features plus a recorded
// outcome. Immutable once stored; the valuation core only reads it.
type HistoricalCase struct {
	ID             core.CaseID  `json:"id"`
	Title          string       `json:"title,omitempty"`
	Summary        string       `json:"summary,omitempty"`
	Features       CaseFeatures `json:"features"`
	SettlementValue *float64    `json:"settlement_value,omitempty"`
	VerdictOutcome string       `json:"verdict_outcome,omitempty"`
	DecidedAt      time.Time    `json:"decided_at,omitempty"`
}

// HasOutcomeValue reports whether the case carries a usable monetary
// outcome for quantile estimation.
func (h HistoricalCase) HasOutcomeValue() bool {
	return h.SettlementValue != nil && *h.SettlementValue >= 0
}
