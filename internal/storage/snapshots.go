package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alainbeyonder/aia-regenord/internal/model"
)

// SaveSnapshot stores one report capture. Snapshots are append-only; the
// newest one for a period wins at read time.
func (s *SQLiteStorage) SaveSnapshot(ctx context.Context, companyID string, snapshot *model.ReportSnapshot) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(companyID, "companyID"); err != nil {
		return err
	}
	if err := validateSnapshot(snapshot); err != nil {
		return err
	}

	createdAt := snapshot.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO report_snapshots (company_id, report_type, period_start, period_end, raw_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		companyID,
		snapshot.ReportType,
		snapshot.PeriodStart,
		snapshot.PeriodEnd,
		snapshot.RawJSON,
		createdAt)
	if err != nil {
		return fmt.Errorf("failed to save %s snapshot for company %s: %w", snapshot.ReportType, companyID, err)
	}
	return nil
}

// LatestSnapshot returns the most recent snapshot of the given report type
// whose period falls inside [periodStart, periodEnd], or (nil, nil) when
// none exists. Absence is not an error: the engine falls back to transaction
// lines.
func (s *SQLiteStorage) LatestSnapshot(ctx context.Context, companyID, reportType string, periodStart, periodEnd time.Time) (*model.ReportSnapshot, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(companyID, "companyID"); err != nil {
		return nil, err
	}
	if err := validateString(reportType, "reportType"); err != nil {
		return nil, err
	}
	if err := validateDateRange(periodStart, periodEnd); err != nil {
		return nil, err
	}

	var snapshot model.ReportSnapshot
	err := s.db.QueryRowContext(ctx, `
		SELECT report_type, period_start, period_end, raw_json, created_at
		FROM report_snapshots
		WHERE company_id = ? AND report_type = ?
			AND period_start >= ? AND period_end <= ?
		ORDER BY created_at DESC, id DESC
		LIMIT 1`,
		companyID, reportType, periodStart, periodEnd).Scan(
		&snapshot.ReportType,
		&snapshot.PeriodStart,
		&snapshot.PeriodEnd,
		&snapshot.RawJSON,
		&snapshot.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest %s snapshot for company %s: %w", reportType, companyID, err)
	}
	return &snapshot, nil
}
