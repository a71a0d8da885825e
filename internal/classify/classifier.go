// Package classify implements the rule-driven account classifier. Given an
// account's free-text name and optional native type information, it always
// returns exactly one category with a discrete confidence score; downstream
// reconciliation depends on every amount being assigned somewhere, so there
// is no "unclassified" outcome.
package classify

import (
	"log/slog"
	"strings"

	"github.com/alainbeyonder/aia-regenord/internal/model"
	"github.com/alainbeyonder/aia-regenord/internal/normalize"
)

// Classifier matches account names and types against an ordered category
// list. It is pure and safe for concurrent use: all state is built at
// construction from the immutable rule set.
type Classifier struct {
	categories []model.Category
	prepared   []preparedCategory
	fallbacks  model.Fallbacks
}

// preparedCategory caches the normalized form of every keyword and hint so
// per-request classification never re-normalizes rule text.
type preparedCategory struct {
	keywords []string
	hints    []string
}

// New builds a classifier over the configured category list. Category order
// is matching priority: the first category whose rules match wins.
func New(categories []model.Category, fallbacks model.Fallbacks) *Classifier {
	prepared := make([]preparedCategory, len(categories))
	for i, cat := range categories {
		pc := preparedCategory{
			keywords: make([]string, len(cat.Keywords)),
			hints:    make([]string, len(cat.NativeTypeHints)),
		}
		for j, kw := range cat.Keywords {
			pc.keywords[j] = normalize.Text(kw)
		}
		for j, hint := range cat.NativeTypeHints {
			pc.hints[j] = normalize.Text(hint)
		}
		prepared[i] = pc
	}

	return &Classifier{
		categories: categories,
		prepared:   prepared,
		fallbacks:  fallbacks,
	}
}

// Classify maps one account to a category. It never fails: when no keyword
// or type rule matches, the configured fallback categories guarantee a
// result.
func (c *Classifier) Classify(name, nativeType, nativeSubtype string) model.Classification {
	normName := normalize.Text(name)
	normType := normalize.Text(nativeType)

	for i := range c.categories {
		cat := &c.categories[i]
		prep := &c.prepared[i]

		// Domain guard: never let a keyword collision pull an account onto
		// the wrong side of the statement.
		if normType != "" {
			if cat.Domain == model.DomainRevenue && typeIsExpense(normType) {
				continue
			}
			if cat.Domain == model.DomainExpense && typeIsRevenue(normType) {
				continue
			}
		}

		for j, kw := range prep.keywords {
			if kw == "" {
				continue
			}
			if kw == normName {
				return c.trace(name, nativeType, nativeSubtype, model.Classification{
					CategoryKey: cat.Key,
					Tier:        model.TierExactKeyword,
					Keyword:     cat.Keywords[j],
					Confidence:  model.ConfidenceExactKeyword,
				})
			}
			if strings.Contains(normName, kw) {
				return c.trace(name, nativeType, nativeSubtype, model.Classification{
					CategoryKey: cat.Key,
					Tier:        model.TierPartialKeyword,
					Keyword:     cat.Keywords[j],
					Confidence:  model.ConfidencePartialKeyword,
				})
			}
		}

		if normType != "" {
			for _, hint := range prep.hints {
				if hint != "" && hint == normType {
					return c.trace(name, nativeType, nativeSubtype, model.Classification{
						CategoryKey: cat.Key,
						Tier:        model.TierNativeType,
						Confidence:  model.ConfidenceNativeType,
					})
				}
			}
		}
	}

	// No rule matched: fall back by the coarse domain the native type
	// implies, preferring a domain-consistent guess over defaulting
	// everything to the expense side.
	if normType != "" {
		if typeIsRevenue(normType) {
			return c.trace(name, nativeType, nativeSubtype, model.Classification{
				CategoryKey: c.fallbacks.Revenue,
				Tier:        model.TierDomainFallback,
				Confidence:  model.ConfidenceDomainFallback,
			})
		}
		if typeIsExpense(normType) {
			return c.trace(name, nativeType, nativeSubtype, model.Classification{
				CategoryKey: c.fallbacks.Expense,
				Tier:        model.TierDomainFallback,
				Confidence:  model.ConfidenceDomainFallback,
			})
		}
	}

	return c.trace(name, nativeType, nativeSubtype, model.Classification{
		CategoryKey: c.fallbacks.Expense,
		Tier:        model.TierFinalFallback,
		Confidence:  model.ConfidenceFinalFallback,
	})
}

// trace logs the matched tier and keyword so every assignment stays
// explainable, then passes the result through.
func (c *Classifier) trace(name, nativeType, nativeSubtype string, result model.Classification) model.Classification {
	slog.Debug("account classified",
		"account", name,
		"native_type", nativeType,
		"native_subtype", nativeSubtype,
		"category", result.CategoryKey,
		"tier", result.Tier,
		"keyword", result.Keyword,
		"confidence", result.Confidence)
	return result
}

func typeIsExpense(normType string) bool {
	return strings.Contains(normType, "expense") || strings.Contains(normType, "cost")
}

func typeIsRevenue(normType string) bool {
	return strings.Contains(normType, "income") || strings.Contains(normType, "revenue")
}
