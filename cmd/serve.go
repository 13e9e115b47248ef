package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/valeriaulyamaeva/budget-ledger/internal/auth"
	"github.com/valeriaulyamaeva/budget-ledger/internal/database"
	"github.com/valeriaulyamaeva/budget-ledger/internal/handlers"
	"github.com/valeriaulyamaeva/budget-ledger/internal/ledger"
	"github.com/valeriaulyamaeva/budget-ledger/internal/logging"
	"github.com/valeriaulyamaeva/budget-ledger/internal/reports"
	"github.com/valeriaulyamaeva/budget-ledger/internal/routes"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.RequireJWT(); err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		store, pool, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		svc := ledger.NewService(store, log)
		rec := ledger.NewReconciler(store, log)
		h := handlers.New(svc, rec, reports.NewReader(store), log)
		signer := auth.NewSigner(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.TTL)

		gin.SetMode(cfg.Server.Mode)
		servers := []*http.Server{{
			Addr:         cfg.Server.Addr,
			Handler:      routes.SetupRouter(h, signer, cfg.Server.AllowedOrigins, log),
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		}}
		if cfg.Admin.Token != "" {
			servers = append(servers, &http.Server{
				Addr:         cfg.Admin.Addr,
				Handler:      routes.SetupAdminRouter(rec, cfg.Admin.Token, log),
				ReadTimeout:  cfg.Server.ReadTimeout,
				WriteTimeout: cfg.Server.WriteTimeout,
			})
		} else {
			log.Warn("admin.token is empty, admin endpoints are disabled")
		}

		if cfg.Reconcile.Schedule != "" {
			c := cron.New()
			if _, err := c.AddFunc(cfg.Reconcile.Schedule, func() { audit(ctx, store, rec) }); err != nil {
				return err
			}
			c.Start()
			defer c.Stop()
			log.WithField("schedule", cfg.Reconcile.Schedule).Info("Balance audit scheduled")
		}

		errc := make(chan error, len(servers))
		for _, srv := range servers {
			go func(srv *http.Server) {
				log.WithField("addr", srv.Addr).Info("Listening")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errc <- err
				}
			}(srv)
		}

		select {
		case <-ctx.Done():
			log.Info("Shutting down")
		case err = <-errc:
			log.WithError(err).Error("Server failed")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		for _, srv := range servers {
			if serr := srv.Shutdown(shutdownCtx); serr != nil {
				log.WithError(serr).WithField("addr", srv.Addr).Warn("Graceful shutdown failed")
			}
		}
		return err
	},
}

// audit verifies every user's balances and logs the drift it finds.
// It never writes.
func audit(ctx context.Context, store *database.Store, rec *ledger.Reconciler) {
	alog := log.WithField(logging.FieldComponent, "audit")
	users, err := store.ListUserIDs(ctx)
	if err != nil {
		alog.WithError(err).Error("Failed to list users")
		return
	}
	drifted := 0
	for _, owner := range users {
		report, err := rec.VerifyAll(ctx, owner)
		if err != nil {
			alog.WithError(err).WithField(logging.FieldUserID, owner).Error("Balance audit failed")
			continue
		}
		for _, d := range report {
			alog.WithFields(logrus.Fields{
				logging.FieldUserID:      owner,
				logging.FieldAccountID:   d.AccountID,
				logging.FieldAccountName: d.AccountName,
				logging.FieldStored:      d.Stored.StringFixed(2),
				logging.FieldRecomputed:  d.Recomputed.StringFixed(2),
				logging.FieldDifference:  d.Difference.StringFixed(2),
			}).Warn("Stored balance drifted")
		}
		drifted += len(report)
	}
	alog.WithFields(logrus.Fields{"users": len(users), logging.FieldCount: drifted}).Info("Balance audit finished")
}
