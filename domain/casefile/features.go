package casefile

import (
	"time"
)

// Primary case type labels used for attribute weighting profiles.
const (
	TypePersonalInjury  = "personal_injury"
	TypeContractDispute = "contract_dispute"
	TypeEmployment      = "employment"
	TypeUnknown         = "unknown"
)

// CaseType identifies the primary claim category plus optional subtypes
// (e.g. personal_injury / motor_vehicle).
type CaseType struct {
	Primary  string   `json:"primary_type"`
	Subtypes []string `json:"subtypes,omitempty"`
}

// IsKnown reports whether a primary type was identified.
func (ct CaseType) IsKnown() bool {
	return ct.Primary != "" && ct.Primary != TypeUnknown
}

// CaseFeatures is the canonical normalized representation of one case,
// subject or historical. Unknown numeric attributes stay nil so that
// downstream arithmetic never silently treats them as zero.
type CaseFeatures struct {
	EconomicDamages    *float64   `json:"economic_damages,omitempty"`
	NonEconomicDamages *float64   `json:"non_economic_damages,omitempty"`
	CaseType           CaseType   `json:"case_type"`
	Jurisdiction       string     `json:"jurisdiction,omitempty"`
	InjuryType         string     `json:"injury_type,omitempty"`
	FiledAt            *time.Time `json:"filed_at,omitempty"`
}

// TotalDamages returns economic + non-economic damages when BOTH
// components are known. Partially known totals are not fabricated.
func (f CaseFeatures) TotalDamages() (float64, bool) {
	if f.EconomicDamages == nil || f.NonEconomicDamages == nil {
		return 0, false
	}
	return *f.EconomicDamages + *f.NonEconomicDamages, true
}

// KnownDamages sums whichever damages components are known. The second
// return is false when neither component is known.
func (f CaseFeatures) KnownDamages() (float64, bool) {
	total := 0.0
	known := false
	if f.EconomicDamages != nil {
		total += *f.EconomicDamages
		known = true
	}
	if f.NonEconomicDamages != nil {
		total += *f.NonEconomicDamages
		known = true
	}
	return total, known
}

// HasNumericBasis reports whether any required numeric attribute is
// present. A subject without one cannot anchor a comparison or estimate.
func (f CaseFeatures) HasNumericBasis() bool {
	return f.EconomicDamages != nil || f.NonEconomicDamages != nil
}

// attributeCount is the closed set of attributes scored for completeness.
const attributeCount = 5

// Completeness returns the fraction of scored attributes present, in [0,1].
func (f CaseFeatures) Completeness() float64 {
	present := 0
	if f.EconomicDamages != nil {
		present++
	}
	if f.NonEconomicDamages != nil {
		present++
	}
	if f.CaseType.IsKnown() {
		present++
	}
	if f.Jurisdiction != "" {
		present++
	}
	if f.InjuryType != "" {
		present++
	}
	return float64(present) / float64(attributeCount)
}

// Float returns a pointer to v, for literal optional attributes.
func Float(v float64) *float64 { return &v }
