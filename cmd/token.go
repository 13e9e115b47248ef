package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/valeriaulyamaeva/budget-ledger/internal/auth"
	"github.com/valeriaulyamaeva/budget-ledger/internal/logging"
)

var (
	tokenUser string
	tokenName string
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Print an API token for a user",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.RequireJWT(); err != nil {
			return err
		}
		owner, err := uuid.Parse(tokenUser)
		if err != nil {
			return fmt.Errorf("invalid --user: %w", err)
		}
		if tokenName != "" {
			store, pool, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()
			if err := store.EnsureUser(cmd.Context(), owner, tokenName); err != nil {
				return err
			}
		}
		token, err := auth.NewSigner(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.TTL).Sign(owner)
		if err != nil {
			return err
		}
		log.WithField(logging.FieldUserID, owner).Debug("Token issued")
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVarP(&tokenUser, "user", "u", "", "user id")
	tokenCmd.Flags().StringVar(&tokenName, "name", "", "register the user with this display name first")
	_ = tokenCmd.MarkFlagRequired("user")
}
