package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/alainbeyonder/aia-regenord/internal/cli"
	"github.com/alainbeyonder/aia-regenord/internal/model"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import accounting data",
		Long:  `Import a company's chart of accounts, transaction lines, or report snapshots from exported files.`,
	}

	cmd.AddCommand(importAccountsCmd())
	cmd.AddCommand(importLinesCmd())
	cmd.AddCommand(importSnapshotCmd())

	return cmd
}

func importAccountsCmd() *cobra.Command {
	var companyID string

	cmd := &cobra.Command{
		Use:   "accounts <file.csv>",
		Short: "Import the chart of accounts",
		Long: `Import accounts from a CSV export with columns:
external_id, display_name, native_type, native_subtype, active.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			accounts, err := readAccountsCSV(args[0])
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.UpsertAccounts(ctx, companyID, accounts); err != nil {
				return err
			}

			fmt.Println(cli.SuccessStyle.Render(
				fmt.Sprintf("✓ Imported %d accounts for %s", len(accounts), companyID)))
			return nil
		},
	}

	cmd.Flags().StringVar(&companyID, "company", "", "company identifier (required)")
	_ = cmd.MarkFlagRequired("company")
	return cmd
}

func importLinesCmd() *cobra.Command {
	var companyID string

	cmd := &cobra.Command{
		Use:   "lines <file.csv>",
		Short: "Import transaction lines",
		Long: `Import ledger postings from a CSV export with columns:
txn_id, date (YYYY-MM-DD), account_ref, amount, memo.
Credits must already carry a negative sign.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			lines, err := readLinesCSV(args[0])
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			bar := progressbar.NewOptions(len(lines),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionShowCount(),
				progressbar.OptionSetWidth(40),
				progressbar.OptionSetDescription("Importing transaction lines..."),
			)

			// Chunked so the bar reflects actual progress on large ledgers.
			const chunkSize = 500
			for start := 0; start < len(lines); start += chunkSize {
				end := min(start+chunkSize, len(lines))
				if err := store.SaveTransactionLines(ctx, companyID, lines[start:end]); err != nil {
					return err
				}
				_ = bar.Add(end - start)
			}
			fmt.Fprintln(os.Stderr)

			fmt.Println(cli.SuccessStyle.Render(
				fmt.Sprintf("✓ Imported %d transaction lines for %s", len(lines), companyID)))
			return nil
		},
	}

	cmd.Flags().StringVar(&companyID, "company", "", "company identifier (required)")
	_ = cmd.MarkFlagRequired("company")
	return cmd
}

func importSnapshotCmd() *cobra.Command {
	var (
		companyID  string
		reportType string
		fromFlag   string
		toFlag     string
	)

	cmd := &cobra.Command{
		Use:   "snapshot <report.json>",
		Short: "Import a report snapshot",
		Long:  `Store a raw hierarchical report payload (for example a QuickBooks P&L export) as a snapshot for the given period.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			from, err := parseDate("from", fromFlag)
			if err != nil {
				return err
			}
			to, err := parseDate("to", toFlag)
			if err != nil {
				return err
			}

			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			snapshot := &model.ReportSnapshot{
				ReportType:  reportType,
				PeriodStart: from,
				PeriodEnd:   to,
				RawJSON:     raw,
			}
			if err := store.SaveSnapshot(ctx, companyID, snapshot); err != nil {
				return err
			}

			fmt.Println(cli.SuccessStyle.Render(
				fmt.Sprintf("✓ Stored %s snapshot for %s (%s to %s)",
					reportType, companyID, fromFlag, toFlag)))
			return nil
		},
	}

	cmd.Flags().StringVar(&companyID, "company", "", "company identifier (required)")
	cmd.Flags().StringVar(&reportType, "report-type", model.ReportTypeProfitAndLoss, "report type (ProfitAndLoss, BalanceSheet)")
	cmd.Flags().StringVar(&fromFlag, "from", "", "report period start, YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&toFlag, "to", "", "report period end, YYYY-MM-DD (required)")
	_ = cmd.MarkFlagRequired("company")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func readAccountsCSV(path string) ([]model.Account, error) {
	records, err := readCSV(path, 5)
	if err != nil {
		return nil, err
	}

	accounts := make([]model.Account, 0, len(records))
	for i, record := range records {
		active, parseErr := strconv.ParseBool(record[4])
		if parseErr != nil {
			return nil, fmt.Errorf("%s line %d: invalid active flag %q", path, i+1, record[4])
		}
		accounts = append(accounts, model.Account{
			ExternalID:    record[0],
			DisplayName:   record[1],
			NativeType:    record[2],
			NativeSubtype: record[3],
			Active:        active,
		})
	}
	return accounts, nil
}

func readLinesCSV(path string) ([]model.TransactionLine, error) {
	records, err := readCSV(path, 5)
	if err != nil {
		return nil, err
	}

	lines := make([]model.TransactionLine, 0, len(records))
	for i, record := range records {
		date, parseErr := time.Parse("2006-01-02", record[1])
		if parseErr != nil {
			return nil, fmt.Errorf("%s line %d: invalid date %q", path, i+1, record[1])
		}
		amount, parseErr := decimal.NewFromString(record[3])
		if parseErr != nil {
			return nil, fmt.Errorf("%s line %d: invalid amount %q", path, i+1, record[3])
		}
		lines = append(lines, model.TransactionLine{
			TxnID:      record[0],
			TxnDate:    date,
			AccountRef: record[2],
			Amount:     amount,
			Memo:       record[4],
		})
	}
	return lines, nil
}

// readCSV reads all records with the expected column count, skipping a
// header row when the first field is not data-shaped.
func readCSV(path string, fields int) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = fields

	var records [][]string
	for {
		record, readErr := reader.Read()
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, readErr)
		}
		records = append(records, record)
	}

	if len(records) > 0 && (records[0][0] == "external_id" || records[0][0] == "txn_id") {
		records = records[1:]
	}
	return records, nil
}
