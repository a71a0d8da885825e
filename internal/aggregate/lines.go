package aggregate

import (
	"time"

	"github.com/alainbeyonder/aia-regenord/internal/model"
)

// LinesMonthly buckets ledger lines by posting month and account reference.
// Lines dated outside [periodStart, periodEnd] are excluded; zero amounts
// are dropped to match the snapshot aggregator's behavior.
func LinesMonthly(lines []model.TransactionLine, periodStart, periodEnd time.Time) model.MonthlyAmounts {
	amounts := make(model.MonthlyAmounts)
	for _, line := range lines {
		if line.TxnDate.Before(periodStart) || line.TxnDate.After(periodEnd) {
			continue
		}
		if line.AccountRef == "" || line.Amount.IsZero() {
			continue
		}
		amounts.Add(model.MonthKey(line.TxnDate), line.AccountRef, line.Amount)
	}
	return amounts
}
