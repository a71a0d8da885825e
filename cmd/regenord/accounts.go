package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/alainbeyonder/aia-regenord/internal/classify"
	"github.com/alainbeyonder/aia-regenord/internal/cli"
	"github.com/alainbeyonder/aia-regenord/internal/directory"
)

func accountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Inspect imported ledger accounts",
	}

	cmd.AddCommand(listAccountsCmd())
	return cmd
}

func listAccountsCmd() *cobra.Command {
	var companyID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a company's active accounts and their categories",
		Long:  `Resolve the company's active accounts through the classifier and show where each one lands.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			set, err := loadRules()
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			dir := directory.New(store, classify.New(set.Categories, set.Fallbacks))
			mapping, err := dir.Resolve(ctx, companyID)
			if err != nil {
				return err
			}

			if len(mapping.Accounts) == 0 {
				fmt.Println(cli.InfoStyle.Render(
					"No active accounts. Use 'regenord import accounts' to load a chart of accounts."))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprint(w, "ACCOUNT\tTYPE\tCATEGORY\tTIER\tCONFIDENCE\n")
			for _, resolved := range mapping.Accounts {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.1f\n",
					resolved.Account.DisplayName,
					resolved.Account.NativeType,
					set.Label(resolved.Result.CategoryKey),
					resolved.Result.Tier,
					resolved.Result.Confidence)
			}
			if err := w.Flush(); err != nil {
				return fmt.Errorf("failed to render table: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&companyID, "company", "", "company identifier (required)")
	_ = cmd.MarkFlagRequired("company")
	return cmd
}
