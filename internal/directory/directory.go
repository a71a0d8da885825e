// Package directory resolves a company's ledger accounts into the category
// and confidence maps the aggregation engine consumes.
package directory

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alainbeyonder/aia-regenord/internal/classify"
	"github.com/alainbeyonder/aia-regenord/internal/model"
	"github.com/alainbeyonder/aia-regenord/internal/service"
)

// Mapping is the resolved account picture for one company. Categories and
// Confidences are keyed by BOTH the external account id and the display
// name: transaction lines reference accounts by id while report snapshots
// only carry names, and either dataset may need the lookup.
type Mapping struct {
	Categories  map[string]string
	Confidences map[string]float64
	Accounts    []ResolvedAccount
}

// ResolvedAccount pairs one account with its classification, one entry per
// distinct account regardless of how many keys reference it.
type ResolvedAccount struct {
	Account model.Account
	Result  model.Classification
}

// EmptyMapping returns a mapping with no accounts, used when a company has
// no active connection to the accounting source.
func EmptyMapping() *Mapping {
	return &Mapping{
		Categories:  make(map[string]string),
		Confidences: make(map[string]float64),
	}
}

// Category looks up the category for an account key (id or name).
func (m *Mapping) Category(key string) (string, bool) {
	cat, ok := m.Categories[key]
	return cat, ok
}

// Directory builds account mappings from an AccountSource.
type Directory struct {
	source     service.AccountSource
	classifier *classify.Classifier
}

// New creates a directory over the given account source.
func New(source service.AccountSource, classifier *classify.Classifier) *Directory {
	return &Directory{source: source, classifier: classifier}
}

// Resolve classifies every active account of the company and returns the
// dual-keyed mapping. Errors from the source pass through unchanged, so
// callers can recognize common.ErrNoActiveConnection and degrade to an empty
// mapping.
func (d *Directory) Resolve(ctx context.Context, companyID string) (*Mapping, error) {
	accounts, err := d.source.ActiveAccounts(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list active accounts for company %s: %w", companyID, err)
	}

	mapping := EmptyMapping()
	for _, account := range accounts {
		result := d.classifier.Classify(account.DisplayName, account.NativeType, account.NativeSubtype)

		mapping.Categories[account.ExternalID] = result.CategoryKey
		mapping.Confidences[account.ExternalID] = result.Confidence
		mapping.Categories[account.DisplayName] = result.CategoryKey
		mapping.Confidences[account.DisplayName] = result.Confidence
		mapping.Accounts = append(mapping.Accounts, ResolvedAccount{Account: account, Result: result})
	}

	slog.Debug("resolved account directory",
		"company_id", companyID,
		"accounts", len(mapping.Accounts))
	return mapping, nil
}
