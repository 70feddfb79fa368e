package casefile

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"caselens/internal/errors"
)

// RawIntake carries the intake form fields before normalization. Damages
// arrive as free-form currency text; classification fields as free text.
type RawIntake struct {
	Title              string `json:"title"`
	ClaimType          string `json:"claim_type"`
	Facts              string `json:"facts"`
	InjuryDetails      string `json:"injury_details"`
	Jurisdiction       string `json:"jurisdiction"`
	EconomicDamages    string `json:"economic_damages"`
	NonEconomicDamages string `json:"non_economic_damages"`
	FiledAt            string `json:"date_filed"`
}

// Normalizer converts raw intake fields into canonical CaseFeatures.
// Coercion is deterministic: the same intake always yields the same
// feature vector.
type Normalizer struct{}

// NewNormalizer creates a feature normalizer
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

var currencyPattern = regexp.MustCompile(`^\$?\s*([0-9][0-9,]*)(\.[0-9]+)?\s*([kKmM])?$`)

// ParseCurrency coerces a currency string ("$50,000", "50000.50", "1.2M")
// into a non-negative amount. Empty input reports ok=false, not zero.
func ParseCurrency(raw string) (float64, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, false
	}

	m := currencyPattern.FindStringSubmatch(trimmed)
	if m == nil {
		return 0, false
	}

	digits := strings.ReplaceAll(m[1], ",", "") + m[2]
	value, err := strconv.ParseFloat(digits, 64)
	if err != nil || value < 0 {
		return 0, false
	}

	switch strings.ToLower(m[3]) {
	case "k":
		value *= 1_000
	case "m":
		value *= 1_000_000
	}
	return value, true
}

// Keyword sets for primary case type classification. Matching is
// case-insensitive over claim type plus facts.
var caseTypeKeywords = map[string][]string{
	TypePersonalInjury:  {"injury", "accident", "negligence", "malpractice", "slip", "fall", "collision", "crash"},
	TypeContractDispute: {"contract", "breach", "agreement", "vendor", "nonperformance", "warranty"},
	TypeEmployment:      {"employment", "discrimination", "termination", "harassment", "wage", "retaliation", "wrongful dismissal"},
}

// Classification order is fixed so overlapping keyword hits resolve
// deterministically.
var caseTypeOrder = []string{TypePersonalInjury, TypeContractDispute, TypeEmployment}

var injuryKeywords = map[string][]string{
	"traumatic_brain_injury": {"brain injury", "tbi", "concussion", "head trauma"},
	"spinal_injury":          {"spinal", "paralysis", "vertebra"},
	"fracture":               {"fracture", "broken bone", "broken arm", "broken leg"},
	"burn":                   {"burn", "scald"},
	"whiplash":               {"whiplash", "neck strain"},
	"soft_tissue":            {"soft tissue", "sprain", "bruis", "contusion"},
}

var injuryOrder = []string{"traumatic_brain_injury", "spinal_injury", "fracture", "burn", "whiplash", "soft_tissue"}

// Subtype keyword sets per primary type, checked against the same text.
var subtypeKeywords = map[string]map[string][]string{
	TypePersonalInjury: {
		"motor_vehicle":       {"car", "vehicle", "truck", "motorcycle", "collision", "crash"},
		"medical_malpractice": {"malpractice", "surgical", "misdiagnos", "hospital"},
		"premises_liability":  {"slip", "fall", "premises", "property owner"},
	},
	TypeContractDispute: {
		"breach_of_contract": {"breach"},
		"warranty":           {"warranty"},
	},
	TypeEmployment: {
		"discrimination":       {"discrimination"},
		"wrongful_termination": {"termination", "dismissal", "fired"},
		"harassment":           {"harassment"},
		"wage_dispute":         {"wage", "overtime", "unpaid"},
	},
}

// Normalize converts a raw intake into CaseFeatures. It fails only when
// the intake is unusable: no numeric damages basis of any kind.
func (n *Normalizer) Normalize(raw RawIntake) (CaseFeatures, error) {
	features := CaseFeatures{
		Jurisdiction: NormalizeToken(raw.Jurisdiction),
	}

	if value, ok := ParseCurrency(raw.EconomicDamages); ok {
		features.EconomicDamages = Float(value)
	}
	if value, ok := ParseCurrency(raw.NonEconomicDamages); ok {
		features.NonEconomicDamages = Float(value)
	}

	text := strings.ToLower(raw.ClaimType + " " + raw.Facts)
	features.CaseType = classifyCaseType(text)
	features.InjuryType = classifyInjury(strings.ToLower(raw.InjuryDetails + " " + raw.Facts))

	if raw.FiledAt != "" {
		if filed, err := time.Parse("2006-01-02", raw.FiledAt); err == nil {
			features.FiledAt = &filed
		}
	}

	if !features.HasNumericBasis() {
		return CaseFeatures{}, errors.InvalidInput("intake has no parseable damages amount")
	}

	return features, nil
}

func classifyCaseType(text string) CaseType {
	for _, primary := range caseTypeOrder {
		for _, keyword := range caseTypeKeywords[primary] {
			if strings.Contains(text, keyword) {
				return CaseType{
					Primary:  primary,
					Subtypes: classifySubtypes(primary, text),
				}
			}
		}
	}
	return CaseType{Primary: TypeUnknown}
}

func classifySubtypes(primary, text string) []string {
	profiles, ok := subtypeKeywords[primary]
	if !ok {
		return nil
	}

	var subtypes []string
	// Map iteration order is not stable; walk a sorted label list instead.
	for _, label := range sortedKeys(profiles) {
		for _, keyword := range profiles[label] {
			if strings.Contains(text, keyword) {
				subtypes = append(subtypes, label)
				break
			}
		}
	}
	return subtypes
}

func classifyInjury(text string) string {
	for _, label := range injuryOrder {
		for _, keyword := range injuryKeywords[label] {
			if strings.Contains(text, keyword) {
				return label
			}
		}
	}
	return ""
}

// NormalizeToken canonicalizes a free-text label (jurisdiction, injury
// type) into the matching token form: lowercased, whitespace runs
// collapsed to underscores. Every corpus ingestion path must use the
// same canonical form or attribute comparison silently mismatches.
func NormalizeToken(raw string) string {
	token := strings.ToLower(strings.TrimSpace(raw))
	return strings.Join(strings.Fields(token), "_")
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
