package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"caselens/domain/prediction"
)

// RenderMarkdown produces the exportable markdown report for one
// analysis: header, prediction table, confidence breakdown, and the
// stored narrative.
func RenderMarkdown(result *prediction.AnalysisResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Case Analysis %s\n\n", result.ID)
	fmt.Fprintf(&b, "Generated %s\n\n", result.CreatedAt.Format("2006-01-02 15:04 MST"))

	fmt.Fprintf(&b, "## Prediction\n\n")
	fmt.Fprintf(&b, "| Range | Lower | Upper |\n|---|---|---|\n")
	for _, key := range []string{prediction.Interval50, prediction.Interval80, prediction.Interval90} {
		interval := result.Settlement.Intervals[key]
		fmt.Fprintf(&b, "| %s | $%.2f | $%.2f |\n", key, interval.Lower, interval.Upper)
	}
	fmt.Fprintf(&b, "\nPoint estimate: **$%.2f**\n\n", result.Settlement.PointEstimate)

	fmt.Fprintf(&b, "## Confidence: %s (%.1f/10)\n\n", result.Confidence.Classification, result.Confidence.OverallScore)
	fmt.Fprintf(&b, "| Dimension | Score | Weight |\n|---|---|---|\n")
	for _, dimension := range sortedDimensions(result.Confidence.DimensionScores) {
		fmt.Fprintf(&b, "| %s | %.2f | %.2f |\n",
			strings.ReplaceAll(dimension, "_", " "),
			result.Confidence.DimensionScores[dimension],
			result.Confidence.DimensionWeights[dimension])
	}
	fmt.Fprintf(&b, "\n%s\n", result.Confidence.Explanation)

	if result.Narrative != "" {
		fmt.Fprintf(&b, "\n%s\n", result.Narrative)
	}

	return b.String()
}

// RenderHTML converts the markdown report to a standalone HTML fragment.
func RenderHTML(result *prediction.AnalysisResult) []byte {
	source := []byte(RenderMarkdown(result))

	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.ToHTML(source, p, renderer)
}

func sortedDimensions(scores map[string]float64) []string {
	dimensions := make([]string, 0, len(scores))
	for dimension := range scores {
		dimensions = append(dimensions, dimension)
	}
	// Stable report layout regardless of map iteration order.
	sort.Strings(dimensions)
	return dimensions
}
