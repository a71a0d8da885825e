// Package engine combines classifier output with either aggregator's raw
// amounts into per-category, per-month totals, and proves that the
// categorized totals reconcile against the source totals.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alainbeyonder/aia-regenord/internal/aggregate"
	"github.com/alainbeyonder/aia-regenord/internal/classify"
	"github.com/alainbeyonder/aia-regenord/internal/common"
	"github.com/alainbeyonder/aia-regenord/internal/directory"
	"github.com/alainbeyonder/aia-regenord/internal/model"
	"github.com/alainbeyonder/aia-regenord/internal/rules"
	"github.com/alainbeyonder/aia-regenord/internal/service"
)

// Engine builds normalized financial views. It holds no per-request state:
// the rule set is immutable for the process lifetime and everything else is
// derived fresh on each call.
type Engine struct {
	rules      *rules.Set
	classifier *classify.Classifier
	directory  *directory.Directory
	snapshots  service.SnapshotSource
	lines      service.TransactionLineSource
}

// New creates an engine over the given rule set and collaborators.
func New(set *rules.Set, accounts service.AccountSource, snapshots service.SnapshotSource, lines service.TransactionLineSource) *Engine {
	classifier := classify.New(set.Categories, set.Fallbacks)
	return &Engine{
		rules:      set,
		classifier: classifier,
		directory:  directory.New(accounts, classifier),
		snapshots:  snapshots,
		lines:      lines,
	}
}

// BuildView produces the financial view for one company over a period.
// Report snapshots are the preferred source; transaction lines are the
// fallback when no snapshot yields data. The two sources are never combined
// within one run.
func (e *Engine) BuildView(ctx context.Context, companyID string, periodStart, periodEnd time.Time) (*model.FinancialView, error) {
	months := model.MonthsBetween(periodStart, periodEnd)
	if len(months) == 0 {
		return nil, fmt.Errorf("invalid period: %s is before %s",
			periodEnd.Format("2006-01-02"), periodStart.Format("2006-01-02"))
	}

	mapping, err := e.directory.Resolve(ctx, companyID)
	if err != nil {
		if !errors.Is(err, common.ErrNoActiveConnection) {
			return nil, err
		}
		// Not fatal: real-time classification still routes every amount.
		slog.Warn("no active accounting connection, proceeding with empty account mapping",
			"company_id", companyID)
		mapping = directory.EmptyMapping()
	}

	raw, source, err := e.rawAmounts(ctx, companyID, periodStart, periodEnd)
	if err != nil {
		return nil, err
	}

	totals, reconciliation := e.Aggregate(raw, mapping, months)

	view := &model.FinancialView{
		PeriodStart:      periodStart,
		PeriodEnd:        periodEnd,
		Months:           months,
		TotalsByCategory: totals,
		AccountsMapping:  mappedAccounts(e.rules, mapping),
		Reconciliation:   reconciliation,
		DataSource:       source,
	}

	slog.Info("financial view generated",
		"company_id", companyID,
		"months", len(months),
		"accounts", len(view.AccountsMapping),
		"data_source", source,
		"total_source", reconciliation.TotalSource,
		"total_categorized", reconciliation.TotalCategorized,
		"reconciled", reconciliation.Reconciled)
	return view, nil
}

// rawAmounts resolves the aggregation source for the run: the most recent
// report snapshot when one yields data, transaction lines otherwise. The
// returned source always reflects the last source attempted, so an entirely
// empty period still reports where the engine looked.
func (e *Engine) rawAmounts(ctx context.Context, companyID string, periodStart, periodEnd time.Time) (model.MonthlyAmounts, model.DataSource, error) {
	snapshot, err := e.snapshots.LatestSnapshot(ctx, companyID, model.ReportTypeProfitAndLoss, periodStart, periodEnd)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load report snapshot: %w", err)
	}

	if snapshot != nil {
		nodes, parseErr := aggregate.ParseReportTree(snapshot.RawJSON)
		if parseErr != nil {
			// A corrupt snapshot degrades to the fallback source instead of
			// failing the run.
			slog.Warn("report snapshot unusable, falling back to transaction lines",
				"company_id", companyID,
				"error", parseErr)
		} else {
			raw := aggregate.SnapshotMonthly(nodes, snapshot.PeriodStart, snapshot.PeriodEnd)
			if !raw.Empty() {
				return raw, model.SourceReportSnapshot, nil
			}
			slog.Info("report snapshot yielded no amounts, falling back to transaction lines",
				"company_id", companyID)
		}
	}

	lines, err := e.lines.LinesInPeriod(ctx, companyID, periodStart, periodEnd)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load transaction lines: %w", err)
	}
	return aggregate.LinesMonthly(lines, periodStart, periodEnd), model.SourceTransactionLines, nil
}

func mappedAccounts(set *rules.Set, mapping *directory.Mapping) map[string]model.MappedAccount {
	out := make(map[string]model.MappedAccount, len(mapping.Accounts))
	for _, resolved := range mapping.Accounts {
		out[resolved.Account.DisplayName] = model.MappedAccount{
			DisplayName:   resolved.Account.DisplayName,
			ExternalID:    resolved.Account.ExternalID,
			NativeType:    resolved.Account.NativeType,
			NativeSubtype: resolved.Account.NativeSubtype,
			CategoryKey:   resolved.Result.CategoryKey,
			CategoryLabel: set.Label(resolved.Result.CategoryKey),
			Tier:          resolved.Result.Tier,
			Keyword:       resolved.Result.Keyword,
			Confidence:    resolved.Result.Confidence,
		}
	}
	return out
}
