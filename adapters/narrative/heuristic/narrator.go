// Package heuristic provides a deterministic, template-based narrative
// adapter. It is the default NarrativePort implementation: no network,
// no model, the same result always yields the same text.
package heuristic

import (
	"context"
	"fmt"
	"strings"

	"caselens/domain/prediction"
)

// Narrator composes a case narrative from an assembled analysis result.
type Narrator struct{}

// NewNarrator creates a heuristic narrator
func NewNarrator() *Narrator {
	return &Narrator{}
}

// Narrate renders a markdown narrative: prediction, interval
// interpretation, and the precedent basis.
func (n *Narrator) Narrate(ctx context.Context, result *prediction.AnalysisResult) (string, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "## Settlement Outlook\n\n")
	fmt.Fprintf(&b, "The predicted settlement value is **%s**.\n\n", currency(result.Settlement.PointEstimate))

	interval90 := result.Settlement.Intervals[prediction.Interval90]
	if result.Settlement.InsufficientPrecedent {
		fmt.Fprintf(&b, "Comparable precedent was insufficient to derive an empirical range; the estimate rests on the case's own documented damages.\n\n")
		if band := result.Settlement.ModeledBand; band != nil {
			fmt.Fprintf(&b, "A modeled uncertainty band suggests outcomes between %s and %s.\n\n",
				currency(band.Lower), currency(band.Upper))
		}
	} else {
		fmt.Fprintf(&b, "There is a 90%% probability that the settlement falls between %s and %s. %s\n\n",
			currency(interval90.Lower), currency(interval90.Upper),
			widthInterpretation(result.Settlement))
	}

	fmt.Fprintf(&b, "## Confidence\n\n%s\n\n", result.Confidence.Explanation)

	if len(result.SimilarCases) > 0 {
		fmt.Fprintf(&b, "## Precedent Basis\n\n")
		fmt.Fprintf(&b, "This estimate draws on %d comparable case(s):\n\n", len(result.SimilarCases))
		for _, neighbor := range result.SimilarCases {
			title := neighbor.Case.Title
			if title == "" {
				title = string(neighbor.Case.ID)
			}
			entry := fmt.Sprintf("- **%s** (similarity %.2f)", title, neighbor.Similarity)
			if neighbor.Case.SettlementValue != nil {
				entry += fmt.Sprintf(", settled for %s", currency(*neighbor.Case.SettlementValue))
			}
			b.WriteString(entry + "\n")
		}
	}

	return b.String(), nil
}

// widthInterpretation mirrors the interval interpretation the intake
// product showed users: narrow, moderate or wide relative to the point
// estimate.
func widthInterpretation(d prediction.SettlementDistribution) string {
	interval := d.Intervals[prediction.Interval90]
	if d.PointEstimate <= 0 {
		return "The estimate has no positive anchor value; treat the range with caution."
	}

	ratio := interval.Width() / d.PointEstimate
	switch {
	case ratio < 0.5:
		return "This relatively narrow range indicates high confidence in the prediction."
	case ratio < 1.0:
		return "This moderate range reflects reasonable confidence in the prediction."
	default:
		return "This wide range indicates significant uncertainty in the prediction."
	}
}

func currency(v float64) string {
	return "$" + humanize(v)
}

// humanize formats a non-negative amount with thousands separators and
// two decimals.
func humanize(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	parts := strings.SplitN(s, ".", 2)
	intPart := parts[0]

	var out strings.Builder
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			out.WriteByte(',')
		}
		out.WriteRune(digit)
	}
	return out.String() + "." + parts[1]
}
