package statement

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alainbeyonder/aia-regenord/internal/classify"
	"github.com/alainbeyonder/aia-regenord/internal/model"
	"github.com/alainbeyonder/aia-regenord/internal/rules"
)

type stubExtractor struct {
	texts map[string]string
	err   error
}

func (s *stubExtractor) ExtractText(_ context.Context, path string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.texts[path], nil
}

func testAnalyzer(t *testing.T, extractor *stubExtractor) *Analyzer {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
categories:
  - key: revenue_sales
    label: Sales
    domain: revenue
    keywords: [sales, revenue]
  - key: expense_salaries
    label: Salaries & Benefits
    domain: expense
    keywords: [salaries]
  - key: revenue_other
    label: Other Revenue
    domain: revenue
  - key: expense_other
    label: Other Expenses
    domain: expense
fallback:
  revenue: revenue_other
  expense: expense_other
`), 0o600))

	set, err := rules.Load(path)
	require.NoError(t, err)
	return NewAnalyzer(set, classify.New(set.Categories, set.Fallbacks), extractor)
}

const pnlText = `Profit and Loss
Consulting Revenue 10,000.00
Salaries (6,000.00)
Office Snacks (500.00)
Total................ 3,500.00
`

func TestAnalyzeCategorizesAndChecksDeclaredTotal(t *testing.T) {
	analyzer := testAnalyzer(t, &stubExtractor{texts: map[string]string{"pl.pdf": pnlText}})

	analysis, err := analyzer.Analyze(context.Background(), "pl.pdf", "")
	require.NoError(t, err)

	doc := analysis.ProfitAndLoss
	require.Len(t, doc.Rows, 5)

	// Declared total rows are tracked separately and excluded from the
	// category buckets.
	require.Contains(t, doc.DeclaredTotals, "Total")
	assert.Equal(t, "3500", doc.DeclaredTotals["Total"].String())

	// All four configured categories appear; the one no row landed in is
	// zero-filled at the neutral score.
	require.Len(t, doc.TotalsByCategory, 4)
	byKey := make(map[string]model.CategoryTotal)
	for _, total := range doc.TotalsByCategory {
		byKey[total.CategoryKey] = total
	}
	assert.Equal(t, "10000", byKey["revenue_sales"].Total.String())
	assert.Equal(t, "-6000", byKey["expense_salaries"].Total.String())
	assert.Equal(t, "-500", byKey["expense_other"].Total.String())

	other := byKey["revenue_other"]
	assert.True(t, other.Total.IsZero())
	assert.Equal(t, 0, other.AccountsCount)
	assert.InDelta(t, model.ConfidenceNeutral, other.ConfidenceScore, 1e-9)

	rec := doc.Reconciliation
	assert.True(t, rec.Checked)
	assert.Equal(t, "3500", rec.ItemizedTotal.String())
	assert.Equal(t, "3500", rec.DeclaredTotal.String())
	assert.True(t, rec.Delta.IsZero())

	// The balance sheet path was empty, which is a warning, not a failure.
	assert.Equal(t, []string{"Balance Sheet file missing"}, analysis.Warnings)
}

func TestAnalyzeWarnsOnDeclaredTotalMismatch(t *testing.T) {
	text := "Consulting Revenue 10,000.00\nTotal 9,000.00\n"
	analyzer := testAnalyzer(t, &stubExtractor{texts: map[string]string{"pl.pdf": text}})

	analysis, err := analyzer.Analyze(context.Background(), "pl.pdf", "")
	require.NoError(t, err)

	rec := analysis.ProfitAndLoss.Reconciliation
	assert.Equal(t, "-1000", rec.Delta.String())

	require.Len(t, analysis.Warnings, 2)
	assert.Contains(t, analysis.Warnings[0], "P&L declared total 9000 differs from itemized sum 10000")
}

func TestAnalyzeExtractionFailureDegradesOneDocument(t *testing.T) {
	extractor := &stubExtractor{err: errors.New("encrypted document")}
	analyzer := testAnalyzer(t, extractor)

	analysis, err := analyzer.Analyze(context.Background(), "pl.pdf", "bs.pdf")
	require.NoError(t, err)

	assert.Empty(t, analysis.ProfitAndLoss.Rows)
	assert.Empty(t, analysis.BalanceSheet.Rows)
	require.Len(t, analysis.Warnings, 2)
	assert.Contains(t, analysis.Warnings[0], "P&L extraction failed")
	assert.Contains(t, analysis.Warnings[1], "Balance Sheet extraction failed")
}

func TestAnalyzeBothPathsMissing(t *testing.T) {
	analyzer := testAnalyzer(t, &stubExtractor{})

	analysis, err := analyzer.Analyze(context.Background(), "", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"P&L file missing", "Balance Sheet file missing"}, analysis.Warnings)
	assert.False(t, analysis.ProfitAndLoss.Reconciliation.Checked)
}
