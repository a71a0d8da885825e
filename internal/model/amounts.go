package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// MonthKey formats t as the canonical "YYYY-MM" bucket key.
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// MonthsBetween lists every month key from start through end inclusive.
func MonthsBetween(start, end time.Time) []string {
	if end.Before(start) {
		return nil
	}
	var months []string
	cur := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, time.UTC)
	for !cur.After(last) {
		months = append(months, MonthKey(cur))
		cur = cur.AddDate(0, 1, 0)
	}
	return months
}

// MonthlyAmounts holds the raw per-month, per-account amounts produced by
// exactly one aggregation source per run. The inner key is whatever the
// source references accounts by: external ids for transaction lines, display
// labels for report snapshots.
type MonthlyAmounts map[string]map[string]decimal.Decimal

// Add accumulates amount into the (month, account) bucket.
func (m MonthlyAmounts) Add(month, account string, amount decimal.Decimal) {
	bucket, ok := m[month]
	if !ok {
		bucket = make(map[string]decimal.Decimal)
		m[month] = bucket
	}
	bucket[account] = bucket[account].Add(amount)
}

// Total sums every amount across all months and accounts.
func (m MonthlyAmounts) Total() decimal.Decimal {
	total := decimal.Zero
	for _, bucket := range m {
		for _, amount := range bucket {
			total = total.Add(amount)
		}
	}
	return total
}

// Empty reports whether no month carries any amount.
func (m MonthlyAmounts) Empty() bool {
	for _, bucket := range m {
		if len(bucket) > 0 {
			return false
		}
	}
	return true
}
