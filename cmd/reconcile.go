package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/valeriaulyamaeva/budget-ledger/internal/ledger"
	"github.com/valeriaulyamaeva/budget-ledger/internal/reports"
)

var (
	reconcileUser    string
	reconcileAccount string
	reconcileFormat  string
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Check stored account balances against their history",
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Report accounts whose stored balance differs from the replay",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReconcile(cmd, false)
	},
}

var fixCmd = &cobra.Command{
	Use:   "fix",
	Short: "Overwrite drifted balances with the replayed value",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReconcile(cmd, true)
	},
}

func init() {
	for _, c := range []*cobra.Command{verifyCmd, fixCmd} {
		c.Flags().StringVarP(&reconcileUser, "user", "u", "", "user id")
		c.Flags().StringVarP(&reconcileAccount, "account", "a", "", "limit to one account")
		c.Flags().StringVarP(&reconcileFormat, "format", "f", "table", "output format: table, json, yaml or csv")
		_ = c.MarkFlagRequired("user")
	}
	reconcileCmd.AddCommand(verifyCmd, fixCmd)
}

func runReconcile(cmd *cobra.Command, fix bool) error {
	ctx := cmd.Context()
	format, err := reports.ParseFormat(reconcileFormat)
	if err != nil {
		return err
	}
	owner, err := uuid.Parse(reconcileUser)
	if err != nil {
		return fmt.Errorf("invalid --user: %w", err)
	}
	var account *uuid.UUID
	if reconcileAccount != "" {
		id, err := uuid.Parse(reconcileAccount)
		if err != nil {
			return fmt.Errorf("invalid --account: %w", err)
		}
		account = &id
	}

	store, pool, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()
	rec := ledger.NewReconciler(store, log)

	var report []ledger.Discrepancy
	switch {
	case account != nil:
		d, err := rec.Verify(ctx, owner, *account)
		if err != nil {
			return err
		}
		if d != nil {
			report = append(report, *d)
			if fix {
				if _, err := rec.Fix(ctx, owner, *account); err != nil {
					return err
				}
			}
		}
	case fix:
		report, err = rec.FixAll(ctx, owner)
	default:
		report, err = rec.VerifyAll(ctx, owner)
	}
	if err != nil {
		return err
	}
	return reports.WriteIntegrity(cmd.OutOrStdout(), format, report)
}
