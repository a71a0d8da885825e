package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alainbeyonder/aia-regenord/internal/cli"
	"github.com/alainbeyonder/aia-regenord/internal/storage"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long:  `Bring the database schema up to the version this build expects. Commands run migrations automatically; this exists for explicit upgrades and scripting.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := initStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			fmt.Println(cli.SuccessStyle.Render(
				fmt.Sprintf("✓ Database schema at version %d", storage.ExpectedSchemaVersion)))
			return nil
		},
	}
}
