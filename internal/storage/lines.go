package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/alainbeyonder/aia-regenord/internal/model"
)

// SaveTransactionLines stores a batch of ledger postings, replacing any
// previously imported line with the same transaction id. Amounts are stored
// as their exact decimal strings; REAL columns would round large ledgers.
func (s *SQLiteStorage) SaveTransactionLines(ctx context.Context, companyID string, lines []model.TransactionLine) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(companyID, "companyID"); err != nil {
		return err
	}
	if err := validateLines(lines); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO transaction_lines (company_id, txn_id, txn_date, account_ref, amount, memo)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare line insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, line := range lines {
		if _, err := stmt.ExecContext(ctx,
			companyID,
			line.TxnID,
			line.TxnDate,
			line.AccountRef,
			line.Amount.String(),
			line.Memo,
		); err != nil {
			return fmt.Errorf("failed to insert line %s: %w", line.TxnID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction lines: %w", err)
	}
	return nil
}

// LinesInPeriod returns the company's postings dated inside
// [periodStart, periodEnd], oldest first.
func (s *SQLiteStorage) LinesInPeriod(ctx context.Context, companyID string, periodStart, periodEnd time.Time) ([]model.TransactionLine, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(companyID, "companyID"); err != nil {
		return nil, err
	}
	if err := validateDateRange(periodStart, periodEnd); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT txn_id, txn_date, account_ref, amount, memo
		FROM transaction_lines
		WHERE company_id = ? AND txn_date >= ? AND txn_date <= ?
		ORDER BY txn_date, txn_id`,
		companyID, periodStart, periodEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to query lines for company %s: %w", companyID, err)
	}
	defer func() { _ = rows.Close() }()

	var lines []model.TransactionLine
	for rows.Next() {
		var line model.TransactionLine
		var amount string
		if err := rows.Scan(&line.TxnID, &line.TxnDate, &line.AccountRef, &amount, &line.Memo); err != nil {
			return nil, fmt.Errorf("failed to scan line: %w", err)
		}
		line.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("corrupt amount %q on line %s: %w", amount, line.TxnID, err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate lines: %w", err)
	}
	return lines, nil
}
