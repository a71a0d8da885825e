// Package statement turns extracted financial-statement text into labeled
// rows and maps those rows onto the configured categories. The input is raw
// page text from a text-extraction collaborator; extraction itself is out of
// scope here.
package statement

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/alainbeyonder/aia-regenord/internal/aggregate"
	"github.com/alainbeyonder/aia-regenord/internal/normalize"
)

// amountPattern anchors on a trailing numeric token: optional leading paren
// or minus, digits with space/comma/dot grouping, optional closing paren.
var amountPattern = regexp.MustCompile(`([(\-]?\d[\d\s,.]*\d\)?)\s*$`)

// Line is one parsed statement row. Section headers and free text survive as
// label-only rows (HasAmount false); they are kept because downstream
// consumers render the statement as the client saw it.
type Line struct {
	Label     string          `json:"label"`
	Amount    decimal.Decimal `json:"amount"`
	HasAmount bool            `json:"has_amount"`
	Total     bool            `json:"total"`
}

// Parser splits statement text into lines. Total-indicator phrases come from
// the rule set so deployments can extend them without a code change.
type Parser struct {
	indicators []string
}

// NewParser builds a parser that tags rows whose normalized label contains
// any of the given indicator phrases as declared totals.
func NewParser(totalIndicators []string) *Parser {
	indicators := make([]string, 0, len(totalIndicators))
	for _, phrase := range totalIndicators {
		if norm := normalize.Text(phrase); norm != "" {
			indicators = append(indicators, norm)
		}
	}
	return &Parser{indicators: indicators}
}

// ParseLines processes text line by line. A line with no parseable trailing
// number is kept as label-only, never treated as an error: statements are
// full of headers, dates, and page furniture.
func (p *Parser) ParseLines(text string) []Line {
	var lines []Line
	for _, raw := range strings.Split(text, "\n") {
		cleaned := strings.TrimSpace(raw)
		if cleaned == "" {
			continue
		}

		label, amount, ok := splitLineAmount(cleaned)
		if label == "" {
			continue
		}

		line := Line{Label: label, Amount: amount, HasAmount: ok}
		if ok {
			line.Total = p.isTotal(label)
		}
		lines = append(lines, line)
	}
	return lines
}

func (p *Parser) isTotal(label string) bool {
	norm := normalize.Text(label)
	for _, indicator := range p.indicators {
		if strings.Contains(norm, indicator) {
			return true
		}
	}
	return false
}

// splitLineAmount separates a trailing numeric token from its label. When the
// token does not parse, or nothing precedes it, the whole line is the label:
// a bare number on its own line is a page artifact, not a row.
func splitLineAmount(line string) (string, decimal.Decimal, bool) {
	loc := amountPattern.FindStringSubmatchIndex(line)
	if loc == nil {
		return line, decimal.Zero, false
	}

	amount, ok := aggregate.ParseAmount(line[loc[2]:loc[3]])
	if !ok {
		return line, decimal.Zero, false
	}

	// Dot leaders and spacing between the label and its amount column are
	// layout, not label text.
	label := strings.TrimRight(line[:loc[2]], ". \t")
	if label == "" {
		return line, decimal.Zero, false
	}
	return label, amount, true
}
