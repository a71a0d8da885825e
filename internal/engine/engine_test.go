package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alainbeyonder/aia-regenord/internal/common"
	"github.com/alainbeyonder/aia-regenord/internal/directory"
	"github.com/alainbeyonder/aia-regenord/internal/model"
	"github.com/alainbeyonder/aia-regenord/internal/rules"
)

func testRules(t *testing.T) *rules.Set {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
categories:
  - key: revenue_sales
    label: Sales
    domain: revenue
    keywords: [sales, consulting]
  - key: expense_salaries
    label: Salaries & Benefits
    domain: expense
    keywords: [salaries, payroll]
  - key: expense_rent
    label: Rent & Facilities
    domain: expense
    keywords: [rent]
  - key: revenue_other
    label: Other Revenue
    domain: revenue
  - key: expense_other
    label: Other Expenses
    domain: expense
fallback:
  revenue: revenue_other
  expense: expense_other
settings:
  reconciliation_tolerance: 0.01
`), 0o600))

	set, err := rules.Load(path)
	require.NoError(t, err)
	return set
}

type stubAccounts struct {
	accounts []model.Account
	err      error
}

func (s *stubAccounts) ActiveAccounts(_ context.Context, _ string) ([]model.Account, error) {
	return s.accounts, s.err
}

type stubSnapshots struct {
	snapshot *model.ReportSnapshot
	err      error
}

func (s *stubSnapshots) LatestSnapshot(_ context.Context, _, _ string, _, _ time.Time) (*model.ReportSnapshot, error) {
	return s.snapshot, s.err
}

type stubLines struct {
	lines []model.TransactionLine
	err   error
}

func (s *stubLines) LinesInPeriod(_ context.Context, _ string, _, _ time.Time) ([]model.TransactionLine, error) {
	return s.lines, s.err
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// plReport covers January and February with one revenue leaf and two expense
// leaves under a structural parent whose subtotal row must not contribute.
const plReport = `{
  "Rows": {
    "Row": [
      {"ColData": [{"value": "Sales of Product"}, {"value": "10,000.00"}, {"value": "12,000.00"}]},
      {
        "ColData": [{"value": "Total Expenses"}, {"value": "6,000.00"}, {"value": "6,500.00"}],
        "Rows": {
          "Row": [
            {"ColData": [{"value": "Office Rent"}, {"value": "1,000.00"}, {"value": "1,000.00"}]},
            {"ColData": [{"value": "Salaries - Engineering"}, {"value": "5,000.00"}, {"value": "5,500.00"}]}
          ]
        }
      }
    ]
  }
}`

func testAccounts() []model.Account {
	return []model.Account{
		{ExternalID: "1", DisplayName: "Sales of Product", NativeType: "Income", Active: true},
		{ExternalID: "2", DisplayName: "Office Rent", NativeType: "Expense", Active: true},
		{ExternalID: "3", DisplayName: "Salaries - Engineering", NativeType: "Expense", Active: true},
	}
}

func TestBuildViewFromSnapshot(t *testing.T) {
	start, end := date(2024, time.January, 1), date(2024, time.February, 29)
	eng := New(testRules(t),
		&stubAccounts{accounts: testAccounts()},
		&stubSnapshots{snapshot: &model.ReportSnapshot{
			ReportType:  model.ReportTypeProfitAndLoss,
			PeriodStart: start,
			PeriodEnd:   end,
			RawJSON:     []byte(plReport),
		}},
		&stubLines{})

	view, err := eng.BuildView(context.Background(), "acme", start, end)
	require.NoError(t, err)

	assert.Equal(t, model.SourceReportSnapshot, view.DataSource)
	assert.Equal(t, []string{"2024-01", "2024-02"}, view.Months)

	byKey := make(map[string]model.CategoryTotal)
	for _, total := range view.TotalsByCategory {
		byKey[total.CategoryKey] = total
	}

	sales := byKey["revenue_sales"]
	assert.Equal(t, "22000", sales.Total.String())
	assert.Equal(t, "10000", sales.MonthlyTotals["2024-01"].String())
	assert.Equal(t, "12000", sales.MonthlyTotals["2024-02"].String())

	salaries := byKey["expense_salaries"]
	assert.Equal(t, "10500", salaries.Total.String())
	assert.InDelta(t, 0.9, salaries.ConfidenceScore, 1e-9)
	assert.Equal(t, 1, salaries.AccountsCount)

	rent := byKey["expense_rent"]
	assert.Equal(t, "2000", rent.Total.String())

	// The parent subtotal must not leak into any category.
	assert.Equal(t, "34500", view.Reconciliation.TotalSource.String())
	assert.Equal(t, "34500", view.Reconciliation.TotalCategorized.String())
	assert.True(t, view.Reconciliation.Reconciled)
	assert.True(t, view.Reconciliation.Delta.IsZero())

	mapped, ok := view.AccountsMapping["Salaries - Engineering"]
	require.True(t, ok)
	assert.Equal(t, "expense_salaries", mapped.CategoryKey)
	assert.Equal(t, "Salaries & Benefits", mapped.CategoryLabel)
	assert.Equal(t, model.TierPartialKeyword, mapped.Tier)
	assert.Equal(t, "salaries", mapped.Keyword)
}

func TestBuildViewFallsBackToLines(t *testing.T) {
	start, end := date(2024, time.March, 1), date(2024, time.March, 31)
	eng := New(testRules(t),
		&stubAccounts{accounts: testAccounts()},
		&stubSnapshots{}, // no snapshot stored
		&stubLines{lines: []model.TransactionLine{
			{TxnID: "t1", TxnDate: date(2024, time.March, 5), AccountRef: "2", Amount: decimal.NewFromInt(1000)},
			{TxnID: "t2", TxnDate: date(2024, time.March, 20), AccountRef: "1", Amount: decimal.NewFromInt(4000)},
		}})

	view, err := eng.BuildView(context.Background(), "acme", start, end)
	require.NoError(t, err)

	assert.Equal(t, model.SourceTransactionLines, view.DataSource)

	byKey := make(map[string]model.CategoryTotal)
	for _, total := range view.TotalsByCategory {
		byKey[total.CategoryKey] = total
	}
	assert.Equal(t, "1000", byKey["expense_rent"].Total.String())
	assert.Equal(t, "4000", byKey["revenue_sales"].Total.String())
	assert.True(t, view.Reconciliation.Reconciled)
}

func TestBuildViewEmptySnapshotFallsBack(t *testing.T) {
	start, end := date(2024, time.March, 1), date(2024, time.March, 31)
	eng := New(testRules(t),
		&stubAccounts{accounts: testAccounts()},
		&stubSnapshots{snapshot: &model.ReportSnapshot{
			ReportType:  model.ReportTypeProfitAndLoss,
			PeriodStart: start,
			PeriodEnd:   end,
			RawJSON:     []byte(`{"Rows": {"Row": []}}`),
		}},
		&stubLines{lines: []model.TransactionLine{
			{TxnID: "t1", TxnDate: date(2024, time.March, 5), AccountRef: "2", Amount: decimal.NewFromInt(250)},
		}})

	view, err := eng.BuildView(context.Background(), "acme", start, end)
	require.NoError(t, err)
	assert.Equal(t, model.SourceTransactionLines, view.DataSource)
	assert.Equal(t, "250", view.Reconciliation.TotalSource.String())
}

func TestBuildViewCorruptSnapshotFallsBack(t *testing.T) {
	start, end := date(2024, time.March, 1), date(2024, time.March, 31)
	eng := New(testRules(t),
		&stubAccounts{accounts: testAccounts()},
		&stubSnapshots{snapshot: &model.ReportSnapshot{
			ReportType: model.ReportTypeProfitAndLoss,
			RawJSON:    []byte(`{"Rows": `),
		}},
		&stubLines{})

	view, err := eng.BuildView(context.Background(), "acme", start, end)
	require.NoError(t, err)
	assert.Equal(t, model.SourceTransactionLines, view.DataSource)
	assert.True(t, view.Reconciliation.TotalSource.IsZero())
}

func TestBuildViewNoConnectionUsesRealTimeClassification(t *testing.T) {
	start, end := date(2024, time.January, 1), date(2024, time.February, 29)
	eng := New(testRules(t),
		&stubAccounts{err: common.ErrNoActiveConnection},
		&stubSnapshots{snapshot: &model.ReportSnapshot{
			ReportType:  model.ReportTypeProfitAndLoss,
			PeriodStart: start,
			PeriodEnd:   end,
			RawJSON:     []byte(plReport),
		}},
		&stubLines{})

	view, err := eng.BuildView(context.Background(), "acme", start, end)
	require.NoError(t, err)

	// No directory, so every snapshot label classifies from its text alone
	// and the totals still reconcile exactly.
	assert.Empty(t, view.AccountsMapping)
	assert.True(t, view.Reconciliation.Reconciled)
	assert.Equal(t, "34500", view.Reconciliation.TotalCategorized.String())

	byKey := make(map[string]model.CategoryTotal)
	for _, total := range view.TotalsByCategory {
		byKey[total.CategoryKey] = total
	}
	assert.Equal(t, "22000", byKey["revenue_sales"].Total.String())
	assert.Equal(t, "10500", byKey["expense_salaries"].Total.String())
	assert.Equal(t, "2000", byKey["expense_rent"].Total.String())
}

func TestBuildViewInvalidPeriod(t *testing.T) {
	eng := New(testRules(t), &stubAccounts{}, &stubSnapshots{}, &stubLines{})

	_, err := eng.BuildView(context.Background(), "acme",
		date(2024, time.April, 1), date(2024, time.March, 1))
	assert.Error(t, err)
}

func TestAggregateZeroFillsMonths(t *testing.T) {
	eng := New(testRules(t), &stubAccounts{}, &stubSnapshots{}, &stubLines{})
	months := []string{"2024-01", "2024-02", "2024-03"}

	raw := make(model.MonthlyAmounts)
	raw.Add("2024-02", "Office Rent", decimal.NewFromInt(1000))

	totals, _ := eng.Aggregate(raw, directory.EmptyMapping(), months)
	require.Len(t, totals, 5)

	byKey := make(map[string]model.CategoryTotal)
	for _, total := range totals {
		byKey[total.CategoryKey] = total
	}
	rent := byKey["expense_rent"]
	assert.True(t, rent.MonthlyTotals["2024-01"].IsZero())
	assert.Equal(t, "1000", rent.MonthlyTotals["2024-02"].String())
	assert.True(t, rent.MonthlyTotals["2024-03"].IsZero())
}

func TestAggregateEmitsEveryConfiguredCategory(t *testing.T) {
	set := testRules(t)
	eng := New(set, &stubAccounts{}, &stubSnapshots{}, &stubLines{})
	months := []string{"2024-01"}

	// A single rent amount must not shrink the output: all five configured
	// categories appear, the empty ones zero-filled at the neutral score.
	raw := make(model.MonthlyAmounts)
	raw.Add("2024-01", "Office Rent", decimal.NewFromInt(1000))

	totals, rec := eng.Aggregate(raw, directory.EmptyMapping(), months)
	require.Len(t, totals, len(set.Categories))

	byKey := make(map[string]model.CategoryTotal)
	for i, total := range totals {
		assert.Equal(t, set.Categories[i].Key, total.CategoryKey)
		byKey[total.CategoryKey] = total
	}

	rent := byKey["expense_rent"]
	assert.Equal(t, "1000", rent.Total.String())
	assert.Equal(t, 1, rent.AccountsCount)

	for _, key := range []string{"revenue_sales", "expense_salaries", "revenue_other", "expense_other"} {
		total := byKey[key]
		assert.True(t, total.Total.IsZero(), key)
		assert.True(t, total.MonthlyTotals["2024-01"].IsZero(), key)
		assert.Equal(t, 0, total.AccountsCount, key)
		assert.InDelta(t, model.ConfidenceNeutral, total.ConfidenceScore, 1e-9, key)
	}

	assert.Equal(t, "1000", rec.TotalSource.String())
	assert.Equal(t, "1000", rec.TotalCategorized.String())
	assert.True(t, rec.Reconciled)
}

func TestAggregateRealTimeConfidenceCountedOnce(t *testing.T) {
	eng := New(testRules(t), &stubAccounts{}, &stubSnapshots{}, &stubLines{})
	months := []string{"2024-01", "2024-02"}

	// The same unmapped label appears in two months; its confidence must be
	// averaged as one account, not two.
	raw := make(model.MonthlyAmounts)
	raw.Add("2024-01", "Mystery Ledger", decimal.NewFromInt(100))
	raw.Add("2024-02", "Mystery Ledger", decimal.NewFromInt(200))

	totals, rec := eng.Aggregate(raw, directory.EmptyMapping(), months)
	require.Len(t, totals, 5)

	byKey := make(map[string]model.CategoryTotal)
	for _, total := range totals {
		byKey[total.CategoryKey] = total
	}
	other := byKey["expense_other"]
	assert.Equal(t, "300", other.Total.String())
	assert.Equal(t, 1, other.AccountsCount)
	assert.InDelta(t, model.ConfidenceFinalFallback, other.ConfidenceScore, 1e-9)
	assert.Equal(t, "300", rec.TotalSource.String())
}

func TestReconcilePercentageTolerance(t *testing.T) {
	set := testRules(t)
	set.TolerancePct = 1.0 // one percent of the source total
	eng := New(set, &stubAccounts{}, &stubSnapshots{}, &stubLines{})

	rec := eng.reconcile(decimal.NewFromInt(10000), decimal.NewFromInt(9950))
	assert.Equal(t, "50", rec.Delta.String())
	assert.Equal(t, "100", rec.Tolerance.String())
	assert.True(t, rec.Reconciled)
	assert.InDelta(t, 0.5, rec.DeltaPercentage, 1e-9)

	rec = eng.reconcile(decimal.NewFromInt(10000), decimal.NewFromInt(9800))
	assert.False(t, rec.Reconciled)
}
