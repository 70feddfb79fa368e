package confidence

// The closed set of confidence dimensions. Each produces a sub-score in
// [0,1]; the fixed priority order breaks ties when naming the weakest
// dimension in the explanation.
const (
	DimDataCompleteness      = "data_completeness"
	DimPrecedentStrength     = "precedent_strength"
	DimNeighborAgreement     = "neighbor_agreement"
	DimCaseTypeSpecificity   = "case_type_specificity"
	DimStatisticalConfidence = "statistical_confidence"
)

var dimensionPriority = []string{
	DimDataCompleteness,
	DimPrecedentStrength,
	DimNeighborAgreement,
	DimCaseTypeSpecificity,
	DimStatisticalConfidence,
}

// weaknessPhrases name each dimension's failure mode in the generated
// explanation.
var weaknessPhrases = map[string]string{
	DimDataCompleteness:      "incomplete case information",
	DimPrecedentStrength:     "insufficient comparable precedent",
	DimNeighborAgreement:     "divergent outcomes among comparable cases",
	DimCaseTypeSpecificity:   "a shortage of same-type precedents",
	DimStatisticalConfidence: "a wide prediction interval",
}
