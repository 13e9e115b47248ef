package main

import (
	"github.com/spf13/cobra"

	"github.com/valeriaulyamaeva/budget-ledger/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the ledger tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, pool, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := database.Migrate(cmd.Context(), pool); err != nil {
			return err
		}
		log.Info("Schema is up to date")
		return nil
	},
}
