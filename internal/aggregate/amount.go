// Package aggregate produces per-month, per-account raw amounts from the two
// heterogeneous data sources: hierarchical report snapshots and flat
// transaction lines. Exactly one source feeds a given run; the two are never
// merged, to avoid double-counting.
package aggregate

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount parses a report-style numeric token: optional thousands
// separators, spaces used as digit grouping, one decimal marker (dot or
// comma), and parenthesized negatives ("(1,234.56)" is -1234.56). It returns
// ok=false for tokens that are not numbers; callers drop those consistently
// so a malformed value never skews a total.
func ParseAmount(token string) (decimal.Decimal, bool) {
	raw := strings.TrimSpace(token)
	if raw == "" {
		return decimal.Zero, false
	}

	negative := false
	if strings.HasPrefix(raw, "(") && strings.HasSuffix(raw, ")") {
		negative = true
		raw = strings.TrimSuffix(strings.TrimPrefix(raw, "("), ")")
	}
	raw = strings.ReplaceAll(raw, " ", "")
	raw = strings.ReplaceAll(raw, " ", "")

	dots := strings.Count(raw, ".")
	commas := strings.Count(raw, ",")
	switch {
	case commas > 0 && dots > 0:
		// "1,234.56" — commas are thousands separators.
		raw = strings.ReplaceAll(raw, ",", "")
	case commas == 1 && dots == 0:
		// A single comma followed by exactly 2 digits reads as a decimal
		// marker ("1234,56"). Three trailing digits read as a thousands
		// separator: "1,234" is the canonical grouped form, not 1.234.
		idx := strings.LastIndex(raw, ",")
		if fracLen := len(raw) - idx - 1; fracLen == 2 {
			raw = raw[:idx] + "." + raw[idx+1:]
		} else {
			raw = strings.ReplaceAll(raw, ",", "")
		}
	case commas > 1:
		// "1,234,567" — only thousands separators.
		raw = strings.ReplaceAll(raw, ",", "")
	}

	if dots > 1 {
		return decimal.Zero, false
	}

	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, false
	}
	if negative {
		amount = amount.Neg()
	}
	return amount, true
}
