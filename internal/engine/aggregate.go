package engine

import (
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/alainbeyonder/aia-regenord/internal/directory"
	"github.com/alainbeyonder/aia-regenord/internal/model"
)

// Aggregate routes raw monthly amounts into categories and builds the
// reconciliation proof. Account keys missing from the mapping are classified
// in real time from the key text alone, so every amount lands in exactly one
// category and the category totals sum to the source total by construction.
func (e *Engine) Aggregate(raw model.MonthlyAmounts, mapping *directory.Mapping, months []string) ([]model.CategoryTotal, model.Reconciliation) {
	type bucket struct {
		monthly    map[string]decimal.Decimal
		confidence []float64
	}

	buckets := make(map[string]*bucket, len(e.rules.Categories))
	ensure := func(key string) *bucket {
		b, ok := buckets[key]
		if !ok {
			b = &bucket{monthly: make(map[string]decimal.Decimal, len(months))}
			buckets[key] = b
		}
		return b
	}

	// realTime holds categories assigned during this pass for keys the
	// directory never saw, recorded once per distinct key so confidence
	// averages count each account exactly once.
	realTime := make(map[string]model.Classification)

	for month, byAccount := range raw {
		for accountKey, amount := range byAccount {
			categoryKey, known := mapping.Category(accountKey)
			if !known {
				result, seen := realTime[accountKey]
				if !seen {
					result = e.classifier.Classify(accountKey, "", "")
					realTime[accountKey] = result
					slog.Debug("classified unmapped account in real time",
						"account", accountKey,
						"category", result.CategoryKey,
						"tier", result.Tier)
				}
				categoryKey = result.CategoryKey
			}

			b := ensure(categoryKey)
			b.monthly[month] = b.monthly[month].Add(amount)
		}
	}

	// Accounts contribute confidence to their category whether or not any
	// amounts landed there this period.
	for _, resolved := range mapping.Accounts {
		b := ensure(resolved.Result.CategoryKey)
		b.confidence = append(b.confidence, resolved.Result.Confidence)
	}
	for _, result := range realTime {
		b := ensure(result.CategoryKey)
		b.confidence = append(b.confidence, result.Confidence)
	}

	// Every configured category appears in the output, zero-filled when
	// nothing landed in it; zero-account categories report the neutral
	// confidence.
	totals := make([]model.CategoryTotal, 0, len(e.rules.Categories))
	totalCategorized := decimal.Zero
	for _, category := range e.rules.Categories {
		b := ensure(category.Key)

		monthly := make(map[string]decimal.Decimal, len(months))
		sum := decimal.Zero
		for _, month := range months {
			amount := b.monthly[month]
			monthly[month] = amount
			sum = sum.Add(amount)
		}
		totalCategorized = totalCategorized.Add(sum)

		totals = append(totals, model.CategoryTotal{
			CategoryKey:     category.Key,
			Label:           category.Label,
			MonthlyTotals:   monthly,
			Total:           sum,
			ConfidenceScore: meanConfidence(b.confidence),
			AccountsCount:   len(b.confidence),
		})
	}

	return totals, e.reconcile(raw.Total(), totalCategorized)
}

func (e *Engine) reconcile(totalSource, totalCategorized decimal.Decimal) model.Reconciliation {
	delta := totalSource.Sub(totalCategorized)

	tolerance := e.rules.Tolerance
	if e.rules.TolerancePct > 0 {
		proportional := totalSource.Abs().Mul(decimal.NewFromFloat(e.rules.TolerancePct / 100))
		if proportional.GreaterThan(tolerance) {
			tolerance = proportional
		}
	}

	var deltaPct float64
	if !totalSource.IsZero() {
		deltaPct = delta.Div(totalSource).Mul(decimal.NewFromInt(100)).InexactFloat64()
	}

	return model.Reconciliation{
		TotalSource:      totalSource,
		TotalCategorized: totalCategorized,
		Delta:            delta,
		DeltaPercentage:  deltaPct,
		Tolerance:        tolerance,
		Reconciled:       delta.Abs().LessThanOrEqual(tolerance),
	}
}

// meanConfidence averages per-account confidences; a category with no
// contributing accounts gets the neutral score.
func meanConfidence(scores []float64) float64 {
	if len(scores) == 0 {
		return model.ConfidenceNeutral
	}
	var sum float64
	for _, score := range scores {
		sum += score
	}
	return sum / float64(len(scores))
}
