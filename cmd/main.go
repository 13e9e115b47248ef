package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/valeriaulyamaeva/budget-ledger/internal/config"
	"github.com/valeriaulyamaeva/budget-ledger/internal/database"
	"github.com/valeriaulyamaeva/budget-ledger/internal/logging"
)

var (
	configPath string
	cfg        *config.Config
	log        = logrus.New()

	rootCmd = &cobra.Command{
		Use:           "budget-ledger",
		Short:         "Personal finance ledger with consistent account balances",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if cfg, err = config.Load(configPath); err != nil {
				return err
			}
			log = logging.New(cfg.Log)
			return nil
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	rootCmd.AddCommand(serveCmd, migrateCmd, reconcileCmd, seedCmd, tokenCmd)
}

// openStore connects to the configured database. The caller closes the pool.
func openStore(ctx context.Context) (*database.Store, *pgxpool.Pool, error) {
	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	return database.NewStore(pool), pool, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
