package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Connection statuses.
const (
	ConnectionActive       = "active"
	ConnectionDisconnected = "disconnected"
)

// Connection records a company's link to the external accounting provider.
type Connection struct {
	CompanyID string
	Provider  string
	Status    string
	LinkedAt  time.Time
	UpdatedAt time.Time
}

// LinkConnection records an active link for the company, reactivating a
// previously disconnected one.
func (s *SQLiteStorage) LinkConnection(ctx context.Context, companyID, provider string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(companyID, "companyID"); err != nil {
		return err
	}
	if err := validateString(provider, "provider"); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO connections (company_id, provider, status, linked_at, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT(company_id) DO UPDATE SET
			provider = excluded.provider,
			status = excluded.status,
			updated_at = CURRENT_TIMESTAMP`,
		companyID, provider, ConnectionActive)
	if err != nil {
		return fmt.Errorf("failed to link connection for company %s: %w", companyID, err)
	}
	return nil
}

// DisconnectConnection marks the company's link inactive. Imported data is
// kept; only live account resolution stops.
func (s *SQLiteStorage) DisconnectConnection(ctx context.Context, companyID string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(companyID, "companyID"); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		UPDATE connections SET status = ?, updated_at = CURRENT_TIMESTAMP
		WHERE company_id = ?`,
		ConnectionDisconnected, companyID)
	if err != nil {
		return fmt.Errorf("failed to disconnect company %s: %w", companyID, err)
	}
	return nil
}

// GetConnection returns the company's connection record, or (nil, nil) when
// the company was never linked.
func (s *SQLiteStorage) GetConnection(ctx context.Context, companyID string) (*Connection, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(companyID, "companyID"); err != nil {
		return nil, err
	}

	var conn Connection
	err := s.db.QueryRowContext(ctx, `
		SELECT company_id, provider, status, linked_at, updated_at
		FROM connections WHERE company_id = ?`,
		companyID).Scan(&conn.CompanyID, &conn.Provider, &conn.Status, &conn.LinkedAt, &conn.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get connection for company %s: %w", companyID, err)
	}
	return &conn, nil
}

// hasActiveConnection reports whether the company currently has an active
// link to the accounting provider.
func (s *SQLiteStorage) hasActiveConnection(ctx context.Context, companyID string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(1) FROM connections WHERE company_id = ? AND status = ?`,
		companyID, ConnectionActive).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check connection for company %s: %w", companyID, err)
	}
	return count > 0, nil
}
