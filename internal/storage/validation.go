// Package storage provides the sqlite persistence layer for imported
// accounting data.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alainbeyonder/aia-regenord/internal/model"
)

// Validation errors.
var (
	ErrNilContext       = errors.New("context cannot be nil")
	ErrEmptyString      = errors.New("string parameter cannot be empty")
	ErrNilParameter     = errors.New("parameter cannot be nil")
	ErrEmptySlice       = errors.New("slice cannot be empty")
	ErrInvalidDateRange = errors.New("start date must be before end date")
	ErrInvalidAccount   = errors.New("invalid account")
	ErrInvalidLine      = errors.New("invalid transaction line")
	ErrInvalidSnapshot  = errors.New("invalid report snapshot")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateDateRange ensures start is not after end.
func validateDateRange(start, end time.Time) error {
	if end.Before(start) {
		return ErrInvalidDateRange
	}
	return nil
}

func validateAccounts(accounts []model.Account) error {
	if accounts == nil {
		return fmt.Errorf("%w: accounts", ErrNilParameter)
	}
	for i, account := range accounts {
		if strings.TrimSpace(account.ExternalID) == "" {
			return fmt.Errorf("%w: account at index %d has no external id", ErrInvalidAccount, i)
		}
		if strings.TrimSpace(account.DisplayName) == "" {
			return fmt.Errorf("%w: account %s has no display name", ErrInvalidAccount, account.ExternalID)
		}
	}
	return nil
}

func validateLines(lines []model.TransactionLine) error {
	if lines == nil {
		return fmt.Errorf("%w: lines", ErrNilParameter)
	}
	for i, line := range lines {
		if strings.TrimSpace(line.TxnID) == "" {
			return fmt.Errorf("%w: line at index %d has no transaction id", ErrInvalidLine, i)
		}
		if strings.TrimSpace(line.AccountRef) == "" {
			return fmt.Errorf("%w: line %s has no account reference", ErrInvalidLine, line.TxnID)
		}
		if line.TxnDate.IsZero() {
			return fmt.Errorf("%w: line %s has no date", ErrInvalidLine, line.TxnID)
		}
	}
	return nil
}

func validateSnapshot(snapshot *model.ReportSnapshot) error {
	if snapshot == nil {
		return fmt.Errorf("%w: snapshot", ErrNilParameter)
	}
	if strings.TrimSpace(snapshot.ReportType) == "" {
		return fmt.Errorf("%w: no report type", ErrInvalidSnapshot)
	}
	if len(snapshot.RawJSON) == 0 {
		return fmt.Errorf("%w: empty payload", ErrInvalidSnapshot)
	}
	if err := validateDateRange(snapshot.PeriodStart, snapshot.PeriodEnd); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	return nil
}
