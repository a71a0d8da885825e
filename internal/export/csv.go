// Package export renders a financial view into the two interchange formats
// clients consume: a sectioned CSV for line-oriented tooling and an xlsx
// workbook for spreadsheet review. Both are pure formatting transforms;
// every amount is written as its exact decimal string so no precision is
// lost on the way out.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/alainbeyonder/aia-regenord/internal/model"
)

// WriteCSV renders the view as three sections separated by blank rows:
// category totals, the reconciliation summary, and the account mapping.
func WriteCSV(w io.Writer, view *model.FinancialView) error {
	cw := csv.NewWriter(w)

	header := append([]string{"category_key", "label"}, view.Months...)
	header = append(header, "total", "confidence", "accounts")
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, total := range view.TotalsByCategory {
		row := []string{total.CategoryKey, total.Label}
		for _, month := range view.Months {
			row = append(row, total.MonthlyTotals[month].String())
		}
		row = append(row,
			total.Total.String(),
			formatConfidence(total.ConfidenceScore),
			strconv.Itoa(total.AccountsCount))
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write category row: %w", err)
		}
	}

	rec := view.Reconciliation
	sections := [][]string{
		{},
		{"reconciliation", ""},
		{"period_start", view.PeriodStart.Format("2006-01-02")},
		{"period_end", view.PeriodEnd.Format("2006-01-02")},
		{"data_source_used", string(view.DataSource)},
		{"total_source", rec.TotalSource.String()},
		{"total_categorized", rec.TotalCategorized.String()},
		{"delta", rec.Delta.String()},
		{"delta_percentage", strconv.FormatFloat(rec.DeltaPercentage, 'f', -1, 64)},
		{"tolerance", rec.Tolerance.String()},
		{"reconciled", strconv.FormatBool(rec.Reconciled)},
		{},
		{"account", "external_id", "native_type", "native_subtype", "category_key", "category_label", "tier", "keyword", "confidence"},
	}
	for _, row := range sections {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write reconciliation row: %w", err)
		}
	}

	for _, name := range sortedAccountNames(view.AccountsMapping) {
		mapped := view.AccountsMapping[name]
		row := []string{
			mapped.DisplayName,
			mapped.ExternalID,
			mapped.NativeType,
			mapped.NativeSubtype,
			mapped.CategoryKey,
			mapped.CategoryLabel,
			string(mapped.Tier),
			mapped.Keyword,
			formatConfidence(mapped.Confidence),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write account row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// sortedAccountNames fixes iteration order so exports are reproducible.
func sortedAccountNames(mapping map[string]model.MappedAccount) []string {
	names := make([]string, 0, len(mapping))
	for name := range mapping {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// formatConfidence renders a confidence score in its shortest exact form, so
// the discrete scale comes out as "0.9" rather than "0.900000".
func formatConfidence(score float64) string {
	return strconv.FormatFloat(score, 'f', -1, 64)
}
