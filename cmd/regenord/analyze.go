package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/alainbeyonder/aia-regenord/internal/classify"
	"github.com/alainbeyonder/aia-regenord/internal/cli"
	"github.com/alainbeyonder/aia-regenord/internal/statement"
	"github.com/alainbeyonder/aia-regenord/internal/textextract"
)

func analyzeCmd() *cobra.Command {
	var (
		plPath   string
		bsPath   string
		asJSON   bool
		showRows bool
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze extracted statement text",
		Long: `Parse extracted P&L and balance-sheet text, regroup the itemized rows
by category, and check the statement's declared totals against the sum of
its itemized lines. Either document may be omitted; a missing or
unextractable document is reported as a warning.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			set, err := loadRules()
			if err != nil {
				return err
			}

			analyzer := statement.NewAnalyzer(set,
				classify.New(set.Categories, set.Fallbacks),
				textextract.NewFileExtractor())

			analysis, err := analyzer.Analyze(ctx, plPath, bsPath)
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON("", analysis)
			}

			renderDocument("Profit & Loss", analysis.ProfitAndLoss, showRows)
			renderDocument("Balance Sheet", analysis.BalanceSheet, showRows)

			for _, warning := range analysis.Warnings {
				fmt.Println(cli.WarningStyle.Render("! " + warning))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&plPath, "pl", "", "extracted P&L text file")
	cmd.Flags().StringVar(&bsPath, "bs", "", "extracted balance-sheet text file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit the full analysis as JSON")
	cmd.Flags().BoolVar(&showRows, "rows", false, "also print every parsed statement row")

	return cmd
}

func renderDocument(title string, doc statement.DocumentAnalysis, showRows bool) {
	if len(doc.Rows) == 0 {
		return
	}
	fmt.Println(cli.TitleStyle.Render(title))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprint(w, "CATEGORY\tTOTAL\tROWS\n")
	for _, total := range doc.TotalsByCategory {
		fmt.Fprintf(w, "%s\t%s\t%d\n", total.Label, total.Total, total.AccountsCount)
	}
	_ = w.Flush()

	if showRows {
		w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		for _, row := range doc.Rows {
			switch {
			case row.Total:
				fmt.Fprintf(w, "%s\t%s\t(declared total)\n", row.Label, row.Amount)
			case row.HasAmount:
				fmt.Fprintf(w, "%s\t%s\t\n", row.Label, row.Amount)
			default:
				fmt.Fprintf(w, "%s\t\t\n", row.Label)
			}
		}
		_ = w.Flush()
	}

	rec := doc.Reconciliation
	if rec.Checked {
		line := fmt.Sprintf("declared %s / itemized %s / delta %s",
			rec.DeclaredTotal, rec.ItemizedTotal, rec.Delta)
		if rec.Delta.IsZero() {
			fmt.Println(cli.SuccessStyle.Render("✓ " + line))
		} else {
			fmt.Println(cli.InfoStyle.Render(line))
		}
	}
}
