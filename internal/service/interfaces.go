// Package service defines the collaborator interfaces the core consumes.
// The engine depends only on these contracts; concrete implementations live
// in internal/storage and internal/textextract, and callers may substitute
// their own.
package service

import (
	"context"
	"time"

	"github.com/alainbeyonder/aia-regenord/internal/model"
)

// AccountSource exposes the chart of accounts of the external accounting
// system. ActiveAccounts returns common.ErrNoActiveConnection when the
// company has no active link to the source.
type AccountSource interface {
	ActiveAccounts(ctx context.Context, companyID string) ([]model.Account, error)
}

// SnapshotSource exposes stored report snapshots. LatestSnapshot returns the
// most recent snapshot of the given report type whose period falls within
// [periodStart, periodEnd], or (nil, nil) when none exists.
type SnapshotSource interface {
	LatestSnapshot(ctx context.Context, companyID, reportType string, periodStart, periodEnd time.Time) (*model.ReportSnapshot, error)
}

// TransactionLineSource exposes individual ledger postings, used as the
// fallback aggregation source.
type TransactionLineSource interface {
	LinesInPeriod(ctx context.Context, companyID string, periodStart, periodEnd time.Time) ([]model.TransactionLine, error)
}

// TextExtractor produces raw page text for an input document. Extraction is
// a black box to the core; a failure is surfaced as an error that the
// statement analyzer converts into a warning, not a pipeline abort.
type TextExtractor interface {
	ExtractText(ctx context.Context, path string) (string, error)
}
