package storage

import (
	"context"
	"fmt"

	"github.com/alainbeyonder/aia-regenord/internal/common"
	"github.com/alainbeyonder/aia-regenord/internal/model"
)

// UpsertAccounts stores or refreshes the company's chart of accounts.
// Accounts absent from the batch are left untouched; deactivation comes from
// the provider as active=false, not from omission.
func (s *SQLiteStorage) UpsertAccounts(ctx context.Context, companyID string, accounts []model.Account) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(companyID, "companyID"); err != nil {
		return err
	}
	if err := validateAccounts(accounts); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO accounts (company_id, external_id, display_name, native_type, native_subtype, active, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(company_id, external_id) DO UPDATE SET
			display_name = excluded.display_name,
			native_type = excluded.native_type,
			native_subtype = excluded.native_subtype,
			active = excluded.active,
			updated_at = CURRENT_TIMESTAMP`)
	if err != nil {
		return fmt.Errorf("failed to prepare account upsert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, account := range accounts {
		if _, err := stmt.ExecContext(ctx,
			companyID,
			account.ExternalID,
			account.DisplayName,
			account.NativeType,
			account.NativeSubtype,
			account.Active,
		); err != nil {
			return fmt.Errorf("failed to upsert account %s: %w", account.ExternalID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit accounts: %w", err)
	}
	return nil
}

// ActiveAccounts lists the company's active accounts. It returns
// common.ErrNoActiveConnection when the company has no active provider link;
// callers degrade to an empty mapping rather than failing the run.
func (s *SQLiteStorage) ActiveAccounts(ctx context.Context, companyID string) ([]model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(companyID, "companyID"); err != nil {
		return nil, err
	}

	active, err := s.hasActiveConnection(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if !active {
		return nil, fmt.Errorf("company %s: %w", companyID, common.ErrNoActiveConnection)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT external_id, display_name, native_type, native_subtype, active
		FROM accounts
		WHERE company_id = ? AND active = 1
		ORDER BY display_name`,
		companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts for company %s: %w", companyID, err)
	}
	defer func() { _ = rows.Close() }()

	var accounts []model.Account
	for rows.Next() {
		var account model.Account
		if err := rows.Scan(
			&account.ExternalID,
			&account.DisplayName,
			&account.NativeType,
			&account.NativeSubtype,
			&account.Active,
		); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate accounts: %w", err)
	}
	return accounts, nil
}
