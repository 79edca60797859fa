package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var numberPrinter = message.NewPrinter(language.English)

// formatKg renders a mass with thousands separators and no decimals.
func formatKg(v float64) string {
	return numberPrinter.Sprintf("%.0f", v)
}

func formatPct(v float64) string {
	return fmt.Sprintf("%+.1f%%", v)
}

// SummaryLines renders one bullet per row.
func SummaryLines(rows []ComparisonRow) []string {
	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		lines = append(lines, summaryLine(r))
	}
	return lines
}

func summaryLine(r ComparisonRow) string {
	switch {
	case r.Predicted == nil && r.Actual != nil:
		return fmt.Sprintf("- %d: Actual %s (no prediction)", r.Year, formatKg(*r.Actual))
	case r.Predicted == nil:
		return fmt.Sprintf("- %d: no data", r.Year)
	case r.Actual == nil:
		return fmt.Sprintf("- %d: Pred %s (no actual yet)", r.Year, formatKg(*r.Predicted))
	case r.DeviationPct == nil:
		return fmt.Sprintf("- %d: Pred %s vs Actual %s (deviation n/a)", r.Year, formatKg(*r.Predicted), formatKg(*r.Actual))
	default:
		return fmt.Sprintf("- %d: Pred %s vs Actual %s (**%s**)", r.Year, formatKg(*r.Predicted), formatKg(*r.Actual), formatPct(*r.DeviationPct))
	}
}

// BuildReport renders the markdown export summary.
func BuildReport(a Analysis, rows []ComparisonRow, table ContributionTable, generated time.Time) string {
	var b strings.Builder

	b.WriteString("# Tobacco Exports Prediction\n")
	b.WriteString("## Actual vs Pattern-Based Prediction\n\n")

	if a.Forecast != nil {
		fmt.Fprintf(&b, "### Predicted %d Exports: %s kg\n\n", a.Forecast.Year, formatKg(a.Forecast.Predicted))
	}

	b.WriteString("### Crop-Year Contribution\n\n")
	b.WriteString("| Category | % of Crop |\n")
	b.WriteString("|----------|-----------|\n")
	for _, offset := range CropOffsets() {
		fmt.Fprintf(&b, "| %s | %.2f |\n", offset, table.WeightOf(offset))
	}

	b.WriteString("\n### Export Summary\n\n")
	for _, line := range SummaryLines(rows) {
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n| Year | Actual (kg) | Predicted (kg) | Deviation |\n")
	b.WriteString("|------|-------------|----------------|-----------|\n")
	for _, r := range rows {
		fmt.Fprintf(&b, "| %d | %s | %s | %s |\n", r.Year, optionalKg(r.Actual), optionalKg(r.Predicted), optionalPct(r.DeviationPct))
	}

	fmt.Fprintf(&b, "\n---\n*Generated %s*\n", generated.Format("2 January 2006"))
	return b.String()
}

// WriteReport writes BuildReport output to path.
func WriteReport(path string, a Analysis, rows []ComparisonRow, table ContributionTable) error {
	report := BuildReport(a, rows, table, time.Now())
	if err := os.WriteFile(path, []byte(report), 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

func optionalKg(v *float64) string {
	if v == nil {
		return "-"
	}
	return formatKg(*v)
}

func optionalPct(v *float64) string {
	if v == nil {
		return "-"
	}
	return formatPct(*v)
}
