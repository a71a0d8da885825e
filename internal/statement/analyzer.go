package statement

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/alainbeyonder/aia-regenord/internal/classify"
	"github.com/alainbeyonder/aia-regenord/internal/model"
	"github.com/alainbeyonder/aia-regenord/internal/rules"
	"github.com/alainbeyonder/aia-regenord/internal/service"
)

// DocumentAnalysis is the result for one statement document: the rows as the
// client's statement shows them, the declared totals found in the text, and
// the same rows regrouped by category.
type DocumentAnalysis struct {
	Rows             []Line                     `json:"rows"`
	DeclaredTotals   map[string]decimal.Decimal `json:"declared_totals"`
	TotalsByCategory []model.CategoryTotal      `json:"totals_by_category"`
	Reconciliation   DeclaredReconciliation     `json:"reconciliation"`
}

// DeclaredReconciliation is the lighter per-document check: the statement's
// own bottom-line total against the sum of its itemized rows. It is
// independent of the category reconciliation, which compares itemized rows
// against categorized rows.
type DeclaredReconciliation struct {
	ItemizedTotal decimal.Decimal `json:"itemized_total"`
	DeclaredTotal decimal.Decimal `json:"declared_total"`
	Delta         decimal.Decimal `json:"delta"`
	Checked       bool            `json:"checked"`
}

// Analysis is the combined result over both statement documents. Warnings
// collect per-document problems that did not stop the rest of the pipeline.
type Analysis struct {
	ProfitAndLoss DocumentAnalysis `json:"pnl"`
	BalanceSheet  DocumentAnalysis `json:"bs"`
	Warnings      []string         `json:"warnings"`
}

// Analyzer runs the statement pipeline: extract text, parse rows, regroup by
// category, and check declared totals.
type Analyzer struct {
	parser     *Parser
	classifier *classify.Classifier
	rules      *rules.Set
	extractor  service.TextExtractor
}

// NewAnalyzer builds an analyzer over the rule set's categories and total
// indicators.
func NewAnalyzer(set *rules.Set, classifier *classify.Classifier, extractor service.TextExtractor) *Analyzer {
	return &Analyzer{
		parser:     NewParser(set.TotalIndicators),
		classifier: classifier,
		rules:      set,
		extractor:  extractor,
	}
}

// Analyze processes the profit-and-loss and balance-sheet documents. Either
// path may be empty; a missing or unextractable document contributes a
// warning and an empty analysis while the other document still proceeds.
func (a *Analyzer) Analyze(ctx context.Context, plPath, bsPath string) (*Analysis, error) {
	analysis := &Analysis{Warnings: []string{}}

	analysis.ProfitAndLoss = a.analyzeDocument(ctx, plPath, "P&L", &analysis.Warnings)
	analysis.BalanceSheet = a.analyzeDocument(ctx, bsPath, "Balance Sheet", &analysis.Warnings)

	slog.Info("statement analysis complete",
		"pnl_rows", len(analysis.ProfitAndLoss.Rows),
		"bs_rows", len(analysis.BalanceSheet.Rows),
		"warnings", len(analysis.Warnings))
	return analysis, nil
}

func (a *Analyzer) analyzeDocument(ctx context.Context, path, label string, warnings *[]string) DocumentAnalysis {
	empty := DocumentAnalysis{
		DeclaredTotals:   map[string]decimal.Decimal{},
		TotalsByCategory: []model.CategoryTotal{},
	}

	if path == "" {
		*warnings = append(*warnings, fmt.Sprintf("%s file missing", label))
		return empty
	}

	text, err := a.extractor.ExtractText(ctx, path)
	if err != nil {
		// Extraction failure degrades this document to an empty row set; it
		// never aborts the other document.
		*warnings = append(*warnings, fmt.Sprintf("%s extraction failed: %v", label, err))
		slog.Warn("statement text extraction failed", "document", label, "path", path, "error", err)
		return empty
	}

	doc := a.analyzeRows(a.parser.ParseLines(text))
	if doc.Reconciliation.Checked && !doc.Reconciliation.Delta.Abs().LessThanOrEqual(a.rules.Tolerance) {
		*warnings = append(*warnings, fmt.Sprintf(
			"%s declared total %s differs from itemized sum %s by %s",
			label,
			doc.Reconciliation.DeclaredTotal,
			doc.Reconciliation.ItemizedTotal,
			doc.Reconciliation.Delta))
	}
	return doc
}

// analyzeRows regroups itemized rows by category. Declared-total rows are
// excluded from the category buckets: they restate amounts the itemized rows
// already carry, and counting both would double every section.
func (a *Analyzer) analyzeRows(rows []Line) DocumentAnalysis {
	doc := DocumentAnalysis{
		Rows:           rows,
		DeclaredTotals: map[string]decimal.Decimal{},
	}

	type bucket struct {
		total      decimal.Decimal
		count      int
		confidence []float64
	}
	buckets := make(map[string]*bucket)
	itemized := decimal.Zero
	declared := decimal.Zero

	for _, row := range rows {
		if !row.HasAmount {
			continue
		}
		if row.Total {
			doc.DeclaredTotals[row.Label] = row.Amount
			declared = row.Amount // the last declared total is the bottom line
			doc.Reconciliation.Checked = true
			continue
		}

		itemized = itemized.Add(row.Amount)
		result := a.classifier.Classify(row.Label, "", "")
		b, ok := buckets[result.CategoryKey]
		if !ok {
			b = &bucket{}
			buckets[result.CategoryKey] = b
		}
		b.total = b.total.Add(row.Amount)
		b.count++
		b.confidence = append(b.confidence, result.Confidence)
	}

	// Every configured category appears in the output; categories no row
	// landed in carry a zero total and the neutral confidence.
	doc.TotalsByCategory = make([]model.CategoryTotal, 0, len(a.rules.Categories))
	for _, category := range a.rules.Categories {
		total := model.CategoryTotal{
			CategoryKey:     category.Key,
			Label:           category.Label,
			ConfidenceScore: model.ConfidenceNeutral,
		}
		if b, ok := buckets[category.Key]; ok {
			total.Total = b.total
			total.AccountsCount = b.count
			total.ConfidenceScore = meanRowConfidence(b.confidence)
		}
		doc.TotalsByCategory = append(doc.TotalsByCategory, total)
	}

	doc.Reconciliation.ItemizedTotal = itemized
	doc.Reconciliation.DeclaredTotal = declared
	if doc.Reconciliation.Checked {
		doc.Reconciliation.Delta = declared.Sub(itemized)
	}
	return doc
}

func meanRowConfidence(scores []float64) float64 {
	if len(scores) == 0 {
		return model.ConfidenceNeutral
	}
	var sum float64
	for _, score := range scores {
		sum += score
	}
	return sum / float64(len(scores))
}
