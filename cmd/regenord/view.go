package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/alainbeyonder/aia-regenord/internal/cli"
	"github.com/alainbeyonder/aia-regenord/internal/engine"
	"github.com/alainbeyonder/aia-regenord/internal/export"
	"github.com/alainbeyonder/aia-regenord/internal/model"
)

func viewCmd() *cobra.Command {
	var (
		companyID string
		fromFlag  string
		toFlag    string
		format    string
		outPath   string
	)

	cmd := &cobra.Command{
		Use:   "view",
		Short: "Generate the categorized financial view for a period",
		Long: `Aggregate a company's accounting data over a period, regroup it by
category, and verify that the categorized totals reconcile against the
source totals.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			from, err := parseDate("from", fromFlag)
			if err != nil {
				return err
			}
			to, err := parseDate("to", toFlag)
			if err != nil {
				return err
			}

			set, err := loadRules()
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			eng := engine.New(set, store, store, store)
			view, err := eng.BuildView(ctx, companyID, from, to)
			if err != nil {
				return err
			}

			switch format {
			case "table":
				return renderView(view)
			case "json":
				return writeJSON(outPath, view)
			case "csv":
				return writeCSV(outPath, view)
			case "xlsx":
				if outPath == "" {
					return fmt.Errorf("--out is required for xlsx output")
				}
				return export.SaveWorkbook(outPath, view)
			default:
				return fmt.Errorf("invalid --format %q (table, json, csv, xlsx)", format)
			}
		},
	}

	cmd.Flags().StringVar(&companyID, "company", "", "company identifier (required)")
	cmd.Flags().StringVar(&fromFlag, "from", "", "period start, YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&toFlag, "to", "", "period end, YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&format, "format", "table", "output format (table, json, csv, xlsx)")
	cmd.Flags().StringVar(&outPath, "out", "", "output file (defaults to stdout; required for xlsx)")
	_ = cmd.MarkFlagRequired("company")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

func renderView(view *model.FinancialView) error {
	fmt.Println(cli.TitleStyle.Render(fmt.Sprintf("Financial view %s — %s",
		view.PeriodStart.Format("2006-01-02"), view.PeriodEnd.Format("2006-01-02"))))
	fmt.Println(cli.SubtleStyle.Render(fmt.Sprintf("source: %s", view.DataSource)))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprint(w, "CATEGORY")
	for _, month := range view.Months {
		fmt.Fprintf(w, "\t%s", month)
	}
	fmt.Fprint(w, "\tTOTAL\tCONFIDENCE\n")

	for _, total := range view.TotalsByCategory {
		fmt.Fprint(w, total.Label)
		for _, month := range view.Months {
			fmt.Fprintf(w, "\t%s", total.MonthlyTotals[month])
		}
		fmt.Fprintf(w, "\t%s\t%.1f\n", total.Total, total.ConfidenceScore)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	rec := view.Reconciliation
	line := fmt.Sprintf("source %s / categorized %s / delta %s (tolerance %s)",
		rec.TotalSource, rec.TotalCategorized, rec.Delta, rec.Tolerance)
	if rec.Reconciled {
		fmt.Println(cli.SuccessStyle.Render("✓ reconciled: " + line))
	} else {
		fmt.Println(cli.ErrorStyle.Render("✗ NOT reconciled: " + line))
	}
	return nil
}

func writeJSON(outPath string, v any) error {
	out, closer, err := openOutput(outPath)
	if err != nil {
		return err
	}
	defer closer()

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode json: %w", err)
	}
	return nil
}

func writeCSV(outPath string, view *model.FinancialView) error {
	out, closer, err := openOutput(outPath)
	if err != nil {
		return err
	}
	defer closer()
	return export.WriteCSV(out, view)
}

// openOutput returns stdout when path is empty, a created file otherwise.
func openOutput(path string) (*os.File, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	return f, func() { _ = f.Close() }, nil
}
