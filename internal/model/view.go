package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DataSource identifies which aggregation source produced a financial view.
type DataSource string

// Aggregation sources, in preference order. The two are never mixed within
// one run.
const (
	SourceReportSnapshot   DataSource = "report_snapshot"
	SourceTransactionLines DataSource = "transaction_lines"
)

// CategoryTotal is the aggregated result for one category over the requested
// period.
type CategoryTotal struct {
	CategoryKey     string                     `json:"category_key"`
	Label           string                     `json:"label"`
	MonthlyTotals   map[string]decimal.Decimal `json:"monthly_totals"`
	Total           decimal.Decimal            `json:"total"`
	ConfidenceScore float64                    `json:"confidence_score"`
	AccountsCount   int                        `json:"accounts_count"`
}

// Reconciliation is the check that categorized totals equal source totals
// within tolerance. Because every amount is guaranteed to land in exactly one
// category, a failed reconciliation indicates an aggregation bug rather than
// a real discrepancy.
type Reconciliation struct {
	TotalSource      decimal.Decimal `json:"total_source"`
	TotalCategorized decimal.Decimal `json:"total_categorized"`
	Delta            decimal.Decimal `json:"delta"`
	DeltaPercentage  float64         `json:"delta_percentage"`
	Tolerance        decimal.Decimal `json:"tolerance"`
	Reconciled       bool            `json:"reconciled"`
}

// MappedAccount describes where one ledger account landed and why.
type MappedAccount struct {
	DisplayName   string    `json:"display_name"`
	ExternalID    string    `json:"external_id"`
	NativeType    string    `json:"native_type"`
	NativeSubtype string    `json:"native_subtype"`
	CategoryKey   string    `json:"category_key"`
	CategoryLabel string    `json:"category_label"`
	Tier          MatchTier `json:"tier"`
	Keyword       string    `json:"keyword,omitempty"`
	Confidence    float64   `json:"confidence"`
}

// FinancialView is the normalized, explainable regrouping of one company's
// accounting data over a period. All fields are derived fresh per request.
type FinancialView struct {
	PeriodStart      time.Time                `json:"period_start"`
	PeriodEnd        time.Time                `json:"period_end"`
	Months           []string                 `json:"months"`
	TotalsByCategory []CategoryTotal          `json:"totals_by_category"`
	AccountsMapping  map[string]MappedAccount `json:"accounts_mapping"`
	Reconciliation   Reconciliation           `json:"reconciliation"`
	DataSource       DataSource               `json:"data_source_used"`
}
