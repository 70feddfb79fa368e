package casefile

import (
	"math"
)

// CaseCharacteristics is the display-oriented slice of the feature vector.
type CaseCharacteristics struct {
	CaseType     CaseType `json:"case_type"`
	Jurisdiction string   `json:"jurisdiction,omitempty"`
	InjuryType   string   `json:"injury_type,omitempty"`
	TotalDamages *float64 `json:"total_damages,omitempty"`
}

// RiskProfile summarizes prediction volatility for display. The range and
// uncertainty labels are filled from the assembled distribution and
// confidence, after estimation.
type RiskProfile struct {
	OutcomeUncertainty string `json:"outcome_uncertainty,omitempty"` // low / moderate / high
	DamageRangeWidth   string `json:"damage_range_width,omitempty"`  // narrow / medium / wide
}

// CompositeFeatures are derived summary indices shown alongside the
// prediction.
type CompositeFeatures struct {
	SettlementPressureIndex float64     `json:"settlement_pressure_index"` // 0-10
	CaseStrengthRatio       float64     `json:"case_strength_ratio"`
	LitigationRiskProfile   RiskProfile `json:"litigation_risk_profile"`
}

// ExtractedSummary is the extracted-feature block of an analysis result.
type ExtractedSummary struct {
	CaseCharacteristics CaseCharacteristics `json:"case_characteristics"`
	Composite           CompositeFeatures   `json:"composite"`
}

// BuildSummary derives the display summary from normalized features.
// The risk profile is left empty here; it depends on the estimated
// distribution and is filled during assembly.
func BuildSummary(features CaseFeatures) ExtractedSummary {
	characteristics := CaseCharacteristics{
		CaseType:     features.CaseType,
		Jurisdiction: features.Jurisdiction,
		InjuryType:   features.InjuryType,
	}
	if total, ok := features.TotalDamages(); ok {
		characteristics.TotalDamages = Float(total)
	}

	return ExtractedSummary{
		CaseCharacteristics: characteristics,
		Composite: CompositeFeatures{
			SettlementPressureIndex: settlementPressureIndex(features),
			CaseStrengthRatio:       caseStrengthRatio(features),
		},
	}
}

// settlementPressureIndex scores settlement pressure on a 0-10 scale:
// a neutral base of 5, +1 when a documented injury is present, plus a
// log-scaled damages term capped at 3 so large claims saturate.
func settlementPressureIndex(features CaseFeatures) float64 {
	index := 5.0
	if features.InjuryType != "" {
		index += 1.0
	}
	if damages, ok := features.KnownDamages(); ok && damages > 1_000 {
		index += math.Min(3.0, math.Log10(damages/1_000))
	}
	return clampUnit10(index)
}

// caseStrengthRatio compares economic to non-economic exposure. A ratio
// of 1 means balanced or unknown composition.
func caseStrengthRatio(features CaseFeatures) float64 {
	if features.EconomicDamages == nil || features.NonEconomicDamages == nil {
		return 1.0
	}
	if *features.NonEconomicDamages == 0 {
		if *features.EconomicDamages == 0 {
			return 1.0
		}
		return 10.0
	}
	ratio := *features.EconomicDamages / *features.NonEconomicDamages
	return math.Min(10.0, ratio)
}

func clampUnit10(v float64) float64 {
	return math.Max(0, math.Min(10, v))
}
