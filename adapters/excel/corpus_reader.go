package excel

import (
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"caselens/domain/casefile"
	"caselens/domain/core"
	"caselens/internal/errors"
)

// Expected column headers in the corpus spreadsheet. Matching is
// case-insensitive; unknown columns are ignored.
const (
	colTitle              = "title"
	colSummary            = "summary"
	colCaseType           = "case_type"
	colSubtypes           = "subtypes"
	colJurisdiction       = "jurisdiction"
	colInjuryType         = "injury_type"
	colEconomicDamages    = "economic_damages"
	colNonEconomicDamages = "non_economic_damages"
	colSettlementValue    = "settlement_value"
	colVerdictOutcome     = "verdict_outcome"
	colDecidedAt          = "decided_at"
)

// CorpusReader reads historical cases from an xlsx workbook, one case
// per row on the first sheet.
type CorpusReader struct {
	filePath string
}

// NewCorpusReader creates a corpus spreadsheet reader
func NewCorpusReader(filePath string) *CorpusReader {
	return &CorpusReader{filePath: filePath}
}

// ReadCases parses the workbook into historical cases. Rows without any
// damages or outcome value are skipped rather than imported as unusable
// precedent.
func (r *CorpusReader) ReadCases() ([]casefile.HistoricalCase, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open corpus file %s", r.filePath)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.InvalidInput("corpus workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.Wrap(err, "failed to read corpus rows")
	}
	if len(rows) < 2 {
		return []casefile.HistoricalCase{}, nil
	}

	columns := indexColumns(rows[0])

	var cases []casefile.HistoricalCase
	for _, row := range rows[1:] {
		historical, ok := parseRow(row, columns)
		if !ok {
			continue
		}
		cases = append(cases, historical)
	}
	return cases, nil
}

func indexColumns(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return columns
}

func parseRow(row []string, columns map[string]int) (casefile.HistoricalCase, bool) {
	cell := func(name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	historical := casefile.HistoricalCase{
		ID:             core.CaseID(core.NewID()),
		Title:          cell(colTitle),
		Summary:        cell(colSummary),
		VerdictOutcome: cell(colVerdictOutcome),
		Features: casefile.CaseFeatures{
			CaseType:     parseCaseType(cell(colCaseType), cell(colSubtypes)),
			Jurisdiction: casefile.NormalizeToken(cell(colJurisdiction)),
			InjuryType:   casefile.NormalizeToken(cell(colInjuryType)),
		},
	}

	if value, ok := casefile.ParseCurrency(cell(colEconomicDamages)); ok {
		historical.Features.EconomicDamages = casefile.Float(value)
	}
	if value, ok := casefile.ParseCurrency(cell(colNonEconomicDamages)); ok {
		historical.Features.NonEconomicDamages = casefile.Float(value)
	}
	if value, ok := casefile.ParseCurrency(cell(colSettlementValue)); ok {
		historical.SettlementValue = casefile.Float(value)
	}
	if decided, err := time.Parse("2006-01-02", cell(colDecidedAt)); err == nil {
		historical.DecidedAt = decided
	}

	usable := historical.Features.HasNumericBasis() || historical.SettlementValue != nil
	return historical, usable
}

func parseCaseType(primary, subtypes string) casefile.CaseType {
	caseType := casefile.CaseType{Primary: casefile.NormalizeToken(primary)}
	if caseType.Primary == "" {
		caseType.Primary = casefile.TypeUnknown
	}
	for _, subtype := range strings.Split(subtypes, ";") {
		if token := casefile.NormalizeToken(subtype); token != "" {
			caseType.Subtypes = append(caseType.Subtypes, token)
		}
	}
	return caseType
}
