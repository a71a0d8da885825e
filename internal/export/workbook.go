package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/alainbeyonder/aia-regenord/internal/model"
)

// Workbook sheet names.
const (
	sheetOverview  = "Overview"
	sheetCategory  = "Category Totals"
	sheetAccounts  = "Account Mapping"
	dateCellLayout = "2006-01-02"
)

// BuildWorkbook renders the view as an xlsx workbook with one sheet per
// concern. Amounts are written as their exact decimal strings rather than
// floats; the workbook is an interchange format, not a calculator.
func BuildWorkbook(view *model.FinancialView) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheetOverview); err != nil {
		return nil, fmt.Errorf("failed to create overview sheet: %w", err)
	}
	for _, name := range []string{sheetCategory, sheetAccounts} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
	}

	if err := writeOverview(f, view); err != nil {
		return nil, err
	}
	if err := writeCategoryTotals(f, view); err != nil {
		return nil, err
	}
	if err := writeAccountMapping(f, view); err != nil {
		return nil, err
	}
	return f, nil
}

// SaveWorkbook builds the workbook and writes it to path.
func SaveWorkbook(path string, view *model.FinancialView) error {
	f, err := BuildWorkbook(view)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	return nil
}

func writeOverview(f *excelize.File, view *model.FinancialView) error {
	rec := view.Reconciliation
	rows := [][]any{
		{"Period start", view.PeriodStart.Format(dateCellLayout)},
		{"Period end", view.PeriodEnd.Format(dateCellLayout)},
		{"Months", len(view.Months)},
		{"Data source", string(view.DataSource)},
		{"Accounts mapped", len(view.AccountsMapping)},
		{},
		{"Total source", rec.TotalSource.String()},
		{"Total categorized", rec.TotalCategorized.String()},
		{"Delta", rec.Delta.String()},
		{"Delta %", rec.DeltaPercentage},
		{"Tolerance", rec.Tolerance.String()},
		{"Reconciled", rec.Reconciled},
	}
	return writeRows(f, sheetOverview, rows)
}

func writeCategoryTotals(f *excelize.File, view *model.FinancialView) error {
	header := []any{"Category", "Label"}
	for _, month := range view.Months {
		header = append(header, month)
	}
	header = append(header, "Total", "Confidence", "Accounts")

	rows := [][]any{header}
	for _, total := range view.TotalsByCategory {
		row := []any{total.CategoryKey, total.Label}
		for _, month := range view.Months {
			row = append(row, total.MonthlyTotals[month].String())
		}
		row = append(row, total.Total.String(), total.ConfidenceScore, total.AccountsCount)
		rows = append(rows, row)
	}
	return writeRows(f, sheetCategory, rows)
}

func writeAccountMapping(f *excelize.File, view *model.FinancialView) error {
	rows := [][]any{
		{"Account", "External ID", "Native type", "Native subtype", "Category", "Label", "Tier", "Keyword", "Confidence"},
	}
	for _, name := range sortedAccountNames(view.AccountsMapping) {
		mapped := view.AccountsMapping[name]
		rows = append(rows, []any{
			mapped.DisplayName,
			mapped.ExternalID,
			mapped.NativeType,
			mapped.NativeSubtype,
			mapped.CategoryKey,
			mapped.CategoryLabel,
			string(mapped.Tier),
			mapped.Keyword,
			mapped.Confidence,
		})
	}
	return writeRows(f, sheetAccounts, rows)
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		for j, value := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return fmt.Errorf("failed to address cell (%d, %d): %w", j+1, i+1, err)
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("failed to write %s!%s: %w", sheet, cell, err)
			}
		}
	}
	return nil
}
