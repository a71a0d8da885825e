// Package rules loads the category rule set document that drives account
// classification. The rule set is loaded once at startup and is immutable for
// the process lifetime; reloading requires explicit re-initialization.
//
// Two on-disk shapes are supported for the categories section: the current
// ordered list of category records, and a legacy map keyed by category key.
// Both are normalized here into one canonical in-memory representation; no
// other package ever branches on the source shape.
package rules

import (
	"crypto/sha256"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"github.com/alainbeyonder/aia-regenord/internal/common"
	"github.com/alainbeyonder/aia-regenord/internal/model"
)

// Default settings applied when the document omits them.
var (
	defaultTolerance       = decimal.NewFromFloat(0.01)
	defaultTotalIndicators = []string{"total", "gross profit", "total income", "total expenses"}
)

// Set is the canonical in-memory category rule set.
type Set struct {
	Categories []model.Category
	Fallbacks  model.Fallbacks

	// Tolerance is the absolute reconciliation tolerance in currency units.
	// TolerancePct, when > 0, adds a tolerance proportional to the source
	// total (percent); the effective tolerance is the larger of the two.
	Tolerance    decimal.Decimal
	TolerancePct float64

	// TotalIndicators are the phrases that mark a statement line as a
	// declared total.
	TotalIndicators []string

	// Fingerprint is a content hash of the source document, suitable as a
	// rule-set version in cache keys.
	Fingerprint string

	byKey map[string]*model.Category
}

// Load reads and validates the rule set document at path. A missing or
// unparseable document is a fatal startup condition.
func Load(path string) (*Set, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: category rule set %s: %v", common.ErrMissingConfig, path, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("%w: category rule set %s: %v", common.ErrInvalidConfig, path, err)
	}

	set, err := fromViper(v)
	if err != nil {
		return nil, err
	}
	set.Fingerprint = fmt.Sprintf("%x", sha256.Sum256(raw))

	slog.Info("category rule set loaded",
		"path", path,
		"categories", len(set.Categories),
		"fingerprint", set.Fingerprint[:12])
	return set, nil
}

func fromViper(v *viper.Viper) (*Set, error) {
	categories, err := normalizeCategories(v.Get("categories"))
	if err != nil {
		return nil, err
	}

	set := &Set{
		Categories:      categories,
		Tolerance:       defaultTolerance,
		TotalIndicators: defaultTotalIndicators,
	}

	if v.IsSet("settings.reconciliation_tolerance") {
		tol, convErr := decimal.NewFromString(cast.ToString(v.Get("settings.reconciliation_tolerance")))
		if convErr != nil || tol.IsNegative() {
			return nil, fmt.Errorf("%w: settings.reconciliation_tolerance must be a non-negative number", common.ErrInvalidConfig)
		}
		set.Tolerance = tol
	}
	if v.IsSet("settings.reconciliation_tolerance_pct") {
		pct := cast.ToFloat64(v.Get("settings.reconciliation_tolerance_pct"))
		if pct < 0 {
			return nil, fmt.Errorf("%w: settings.reconciliation_tolerance_pct must be non-negative", common.ErrInvalidConfig)
		}
		set.TolerancePct = pct
	}
	if v.IsSet("total_indicators") {
		set.TotalIndicators = cast.ToStringSlice(v.Get("total_indicators"))
	}

	set.Fallbacks = model.Fallbacks{
		Revenue: fallbackKey(v.Get("fallback.revenue")),
		Expense: fallbackKey(v.Get("fallback.expense")),
	}

	if err := set.validate(); err != nil {
		return nil, err
	}
	return set, nil
}

// fallbackKey accepts both the current plain-string form and the legacy
// nested {key: ...} form.
func fallbackKey(raw any) string {
	switch val := raw.(type) {
	case string:
		return val
	case map[string]any:
		return cast.ToString(val["key"])
	default:
		return ""
	}
}

// normalizeCategories converts either supported document shape into the
// canonical ordered category list.
func normalizeCategories(raw any) ([]model.Category, error) {
	switch shaped := raw.(type) {
	case []any:
		return categoriesFromList(shaped)
	case map[string]any:
		return categoriesFromMap(shaped)
	case nil:
		return nil, fmt.Errorf("%w: rule set has no categories section", common.ErrInvalidConfig)
	default:
		return nil, fmt.Errorf("%w: categories must be a list or a map, got %T", common.ErrInvalidConfig, raw)
	}
}

func categoriesFromList(items []any) ([]model.Category, error) {
	categories := make([]model.Category, 0, len(items))
	for i, item := range items {
		record, err := cast.ToStringMapE(item)
		if err != nil {
			return nil, fmt.Errorf("%w: categories[%d] is not a mapping", common.ErrInvalidConfig, i)
		}

		cat := model.Category{
			Key:             cast.ToString(record["key"]),
			Label:           cast.ToString(record["label"]),
			Domain:          model.Domain(cast.ToString(record["domain"])),
			Keywords:        cast.ToStringSlice(record["keywords"]),
			NativeTypeHints: cast.ToStringSlice(record["native_type_hints"]),
		}
		if cat.Key == "" {
			return nil, fmt.Errorf("%w: categories[%d] has no key", common.ErrInvalidConfig, i)
		}
		finishCategory(&cat)
		categories = append(categories, cat)
	}
	return categories, nil
}

// categoriesFromMap handles the legacy shape. Map order is not meaningful in
// YAML-as-Go-map, so keys are sorted to keep matching priority deterministic;
// installations that depend on category order should migrate to the list
// shape.
func categoriesFromMap(records map[string]any) ([]model.Category, error) {
	keys := make([]string, 0, len(records))
	for key := range records {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	categories := make([]model.Category, 0, len(keys))
	for _, key := range keys {
		record, err := cast.ToStringMapE(records[key])
		if err != nil {
			return nil, fmt.Errorf("%w: category %q is not a mapping", common.ErrInvalidConfig, key)
		}

		cat := model.Category{
			Key:             key,
			Label:           cast.ToString(record["label"]),
			Domain:          model.Domain(cast.ToString(record["domain"])),
			Keywords:        cast.ToStringSlice(record["keywords"]),
			NativeTypeHints: cast.ToStringSlice(record["native_type_hints"]),
		}
		// The legacy shape used "name" for the display label and often
		// omitted the domain, which was then implied by the key prefix.
		if cat.Label == "" {
			cat.Label = cast.ToString(record["name"])
		}
		if cat.Domain == "" {
			switch {
			case hasPrefix(key, "revenue"):
				cat.Domain = model.DomainRevenue
			case hasPrefix(key, "expense"):
				cat.Domain = model.DomainExpense
			}
		}
		finishCategory(&cat)
		categories = append(categories, cat)
	}
	return categories, nil
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}

// finishCategory applies defaults shared by both shapes: the key doubles as
// the label when none is configured, and domains imply a standard set of
// native-type hints when none are listed.
func finishCategory(cat *model.Category) {
	if cat.Label == "" {
		cat.Label = cat.Key
	}
	if len(cat.NativeTypeHints) == 0 {
		switch cat.Domain {
		case model.DomainRevenue:
			cat.NativeTypeHints = []string{"Income", "Revenue"}
		case model.DomainExpense:
			cat.NativeTypeHints = []string{"Expense", "Cost of Goods Sold"}
		}
	}
}

func (s *Set) validate() error {
	if len(s.Categories) == 0 {
		return fmt.Errorf("%w: rule set has no categories", common.ErrInvalidConfig)
	}

	s.byKey = make(map[string]*model.Category, len(s.Categories))
	for i := range s.Categories {
		cat := &s.Categories[i]
		if cat.Domain != model.DomainRevenue && cat.Domain != model.DomainExpense {
			return fmt.Errorf("%w: category %q has invalid domain %q", common.ErrInvalidConfig, cat.Key, cat.Domain)
		}
		if _, dup := s.byKey[cat.Key]; dup {
			return fmt.Errorf("%w: duplicate category key %q", common.ErrInvalidConfig, cat.Key)
		}
		s.byKey[cat.Key] = cat
	}

	if s.Fallbacks.Revenue == "" || s.Fallbacks.Expense == "" {
		return fmt.Errorf("%w: fallback block must name both revenue and expense categories", common.ErrInvalidConfig)
	}
	if _, ok := s.byKey[s.Fallbacks.Revenue]; !ok {
		return fmt.Errorf("%w: revenue fallback %q is not a configured category", common.ErrInvalidConfig, s.Fallbacks.Revenue)
	}
	if _, ok := s.byKey[s.Fallbacks.Expense]; !ok {
		return fmt.Errorf("%w: expense fallback %q is not a configured category", common.ErrInvalidConfig, s.Fallbacks.Expense)
	}
	return nil
}

// Category looks up a configured category by key.
func (s *Set) Category(key string) (*model.Category, bool) {
	cat, ok := s.byKey[key]
	return cat, ok
}

// Label returns the display label for key, falling back to the key itself for
// categories outside the configured set.
func (s *Set) Label(key string) string {
	if cat, ok := s.byKey[key]; ok {
		return cat.Label
	}
	return key
}
