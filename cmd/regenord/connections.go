package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alainbeyonder/aia-regenord/internal/cli"
)

func connectCmd() *cobra.Command {
	var (
		companyID string
		provider  string
	)

	cmd := &cobra.Command{
		Use:   "connect",
		Short: "Mark a company's accounting connection active",
		Long: `Record that a company is linked to its external accounting provider.
Account resolution only runs for companies with an active connection.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.LinkConnection(ctx, companyID, provider); err != nil {
				return err
			}
			fmt.Println(cli.SuccessStyle.Render(
				fmt.Sprintf("✓ %s connected via %s", companyID, provider)))
			return nil
		},
	}

	cmd.Flags().StringVar(&companyID, "company", "", "company identifier (required)")
	cmd.Flags().StringVar(&provider, "provider", "quickbooks", "accounting provider name")
	_ = cmd.MarkFlagRequired("company")
	return cmd
}

func disconnectCmd() *cobra.Command {
	var companyID string

	cmd := &cobra.Command{
		Use:   "disconnect",
		Short: "Mark a company's accounting connection inactive",
		Long: `Deactivate a company's provider link. Imported data stays; views fall
back to real-time classification of whatever labels the data carries.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.DisconnectConnection(ctx, companyID); err != nil {
				return err
			}
			fmt.Println(cli.InfoStyle.Render(fmt.Sprintf("%s disconnected", companyID)))
			return nil
		},
	}

	cmd.Flags().StringVar(&companyID, "company", "", "company identifier (required)")
	_ = cmd.MarkFlagRequired("company")
	return cmd
}
