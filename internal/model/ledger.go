package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Report types captured from the external accounting system.
const (
	ReportTypeProfitAndLoss = "ProfitAndLoss"
	ReportTypeBalanceSheet  = "BalanceSheet"
)

// TransactionLine is one ledger posting, used as the fallback aggregation
// source when no report snapshot covers the period. Credits are stored as
// negative amounts at import time.
type TransactionLine struct {
	TxnID      string
	TxnDate    time.Time
	AccountRef string
	Amount     decimal.Decimal
	Memo       string
}

// ReportSnapshot is a point-in-time capture of a hierarchical financial
// report as produced by the external accounting system. RawJSON keeps the
// provider's original shape for auditability; the aggregator converts it to
// a typed tree before traversal.
type ReportSnapshot struct {
	ReportType  string
	PeriodStart time.Time
	PeriodEnd   time.Time
	RawJSON     []byte
	CreatedAt   time.Time
}
