package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/valeriaulyamaeva/budget-ledger/internal/ledger"
	"github.com/valeriaulyamaeva/budget-ledger/models"
	"github.com/valeriaulyamaeva/budget-ledger/utils"
)

var (
	seedUser string
	seedName string
	seedDays int
	seedOpts utils.SeedOptions
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill a user's ledger with generated demo data",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		owner := uuid.New()
		if seedUser != "" {
			var err error
			if owner, err = uuid.Parse(seedUser); err != nil {
				return fmt.Errorf("invalid --user: %w", err)
			}
		}
		if seedDays < 1 {
			return fmt.Errorf("--days must be positive")
		}

		store, pool, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := store.EnsureUser(ctx, owner, seedName); err != nil {
			return err
		}
		opts := seedOpts
		opts.To = models.DateOf(time.Now())
		opts.From = opts.To.AddDays(1 - seedDays)
		if opts.Seed == 0 {
			opts.Seed = time.Now().UnixNano()
		}

		res, err := utils.GenerateLedger(ctx, ledger.NewService(store, log), owner, opts, log)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "user %s: %d accounts, %d categories, %d transactions, %d transfers\n",
			owner, res.Accounts, res.Categories, res.Transactions, res.Transfers)
		return nil
	},
}

func init() {
	f := seedCmd.Flags()
	f.StringVarP(&seedUser, "user", "u", "", "user id, a new one when empty")
	f.StringVar(&seedName, "name", "Demo user", "display name for a new user")
	f.IntVar(&seedDays, "days", 90, "spread the history over this many days")
	f.IntVar(&seedOpts.Accounts, "accounts", 5, "number of accounts")
	f.IntVar(&seedOpts.Transactions, "transactions", 200, "number of transactions")
	f.IntVar(&seedOpts.Transfers, "transfers", 30, "number of transfers")
	f.Int64Var(&seedOpts.Seed, "seed", 0, "random seed, time based when zero")
}
