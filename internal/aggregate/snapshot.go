package aggregate

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/alainbeyonder/aia-regenord/internal/model"
)

// Node is one row of a hierarchical report after parsing: a label, one value
// per period column, and optional child rows. Converting the provider's
// loosely-typed JSON into this fixed shape up front keeps the traversal free
// of ad hoc map walking.
type Node struct {
	Label    string
	Values   []string
	Children []Node
}

// Leaf reports whether the node carries amounts of its own. Parent rows are
// structural subtotals and must not contribute, or their children would be
// double-counted.
func (n *Node) Leaf() bool {
	return len(n.Children) == 0
}

// Raw report shape as stored from the provider: rows nest recursively under
// "Rows"/"Row", and each row's first column is its label.
type rawReport struct {
	Rows rawRows `json:"Rows"`
}

type rawRows struct {
	Row []rawRow `json:"Row"`
}

type rawRow struct {
	ColData []rawCol `json:"ColData"`
	Rows    rawRows  `json:"Rows"`
}

type rawCol struct {
	Value string `json:"value"`
}

// ParseReportTree decodes a raw snapshot payload into typed nodes.
func ParseReportTree(raw []byte) ([]Node, error) {
	var report rawReport
	if err := json.Unmarshal(raw, &report); err != nil {
		return nil, fmt.Errorf("failed to decode report snapshot: %w", err)
	}
	return convertRows(report.Rows.Row), nil
}

func convertRows(rows []rawRow) []Node {
	nodes := make([]Node, 0, len(rows))
	for _, row := range rows {
		node := Node{Children: convertRows(row.Rows.Row)}
		if len(row.ColData) > 0 {
			node.Label = row.ColData[0].Value
			for _, col := range row.ColData[1:] {
				node.Values = append(node.Values, col.Value)
			}
		}
		// Rows with neither a label nor children are padding in some
		// provider payloads.
		if node.Label == "" && len(node.Children) == 0 {
			continue
		}
		nodes = append(nodes, node)
	}
	return nodes
}

// SnapshotMonthly walks the report tree depth-first and returns per-month,
// per-label amounts for leaf rows only. Value column i maps to the i-th
// month of the report period; columns beyond the period (such as a trailing
// report total) are ignored. Rows whose parsed amount is exactly zero are
// dropped, and unparseable tokens are skipped without failing the run.
func SnapshotMonthly(nodes []Node, periodStart, periodEnd time.Time) model.MonthlyAmounts {
	months := model.MonthsBetween(periodStart, periodEnd)
	amounts := make(model.MonthlyAmounts)
	walkSnapshot(nodes, months, amounts)
	return amounts
}

func walkSnapshot(nodes []Node, months []string, amounts model.MonthlyAmounts) {
	for _, node := range nodes {
		if !node.Leaf() {
			walkSnapshot(node.Children, months, amounts)
			continue
		}
		if node.Label == "" {
			continue
		}
		for i, token := range node.Values {
			if i >= len(months) {
				slog.Debug("report column outside period ignored",
					"label", node.Label,
					"column", i+1)
				break
			}
			amount, ok := ParseAmount(token)
			if !ok {
				if token != "" {
					slog.Debug("unparseable report amount dropped",
						"label", node.Label,
						"token", token)
				}
				continue
			}
			if amount.IsZero() {
				continue
			}
			amounts.Add(months[i], node.Label, amount)
		}
	}
}
