package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/valeriaulyamaeva/budget-ledger/internal/balance"
	"github.com/valeriaulyamaeva/budget-ledger/internal/logging"
	"github.com/valeriaulyamaeva/budget-ledger/models"
)

// Discrepancy is an account whose stored running balance differs from the
// replay of its history. Difference is Stored minus Recomputed.
type Discrepancy struct {
	AccountID   uuid.UUID       `json:"account_id"`
	AccountName string          `json:"account_name"`
	Stored      decimal.Decimal `json:"stored"`
	Recomputed  decimal.Decimal `json:"recomputed"`
	Difference  decimal.Decimal `json:"difference"`
}

func newDiscrepancy(acc *models.Account, recomputed decimal.Decimal) *Discrepancy {
	if acc.CurrentBalance.Equal(recomputed) {
		return nil
	}
	return &Discrepancy{
		AccountID:   acc.ID,
		AccountName: acc.Name,
		Stored:      acc.CurrentBalance,
		Recomputed:  recomputed,
		Difference:  acc.CurrentBalance.Sub(recomputed),
	}
}

// Reconciler audits and repairs stored running balances by full replay.
type Reconciler struct {
	store Store
	log   logrus.FieldLogger
}

func NewReconciler(store Store, log logrus.FieldLogger) *Reconciler {
	return &Reconciler{store: store, log: log.WithField(logging.FieldComponent, "reconciler")}
}

func replay(ctx context.Context, r Reader, owner uuid.UUID, acc *models.Account) (decimal.Decimal, error) {
	txs, err := r.ListTransactions(ctx, owner, models.TransactionFilter{AccountID: &acc.ID, Limit: -1})
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to load transactions of account %s: %w", acc.ID, err)
	}
	transfers, err := r.ListTransfers(ctx, owner, models.TransferFilter{AccountID: &acc.ID, Limit: -1})
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to load transfers of account %s: %w", acc.ID, err)
	}
	return balance.Recompute(acc, txs, transfers)
}

// Recompute returns the balance the account should have according to its history.
func (r *Reconciler) Recompute(ctx context.Context, owner, accountID uuid.UUID) (decimal.Decimal, error) {
	var recomputed decimal.Decimal
	err := r.store.Snapshot(ctx, func(rd Reader) error {
		acc, err := rd.GetAccount(ctx, owner, accountID)
		if err != nil {
			return err
		}
		recomputed, err = replay(ctx, rd, owner, acc)
		return err
	})
	if err != nil {
		return decimal.Zero, err
	}
	return recomputed, nil
}

// Verify returns nil when the stored balance matches the replay. The account
// row and its history are read from one snapshot.
func (r *Reconciler) Verify(ctx context.Context, owner, accountID uuid.UUID) (*Discrepancy, error) {
	var d *Discrepancy
	err := r.store.Snapshot(ctx, func(rd Reader) error {
		acc, err := rd.GetAccount(ctx, owner, accountID)
		if err != nil {
			return err
		}
		recomputed, err := replay(ctx, rd, owner, acc)
		if err != nil {
			return err
		}
		d = newDiscrepancy(acc, recomputed)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

// VerifyAll checks every account of the owner, active or not, from one
// snapshot. An empty result means the owner's balances are consistent.
func (r *Reconciler) VerifyAll(ctx context.Context, owner uuid.UUID) ([]Discrepancy, error) {
	report := []Discrepancy{}
	err := r.store.Snapshot(ctx, func(rd Reader) error {
		accounts, err := rd.ListAccounts(ctx, owner, models.AccountFilter{})
		if err != nil {
			return fmt.Errorf("failed to list accounts: %w", err)
		}
		for i := range accounts {
			recomputed, err := replay(ctx, rd, owner, &accounts[i])
			if err != nil {
				return err
			}
			if d := newDiscrepancy(&accounts[i], recomputed); d != nil {
				report = append(report, *d)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

// Fix overwrites the stored balance with the replay, under the account's
// row lock. An account that is already correct is not written.
func (r *Reconciler) Fix(ctx context.Context, owner, accountID uuid.UUID) (*models.Account, error) {
	acc, _, err := r.fix(ctx, owner, accountID)
	return acc, err
}

func (r *Reconciler) fix(ctx context.Context, owner, accountID uuid.UUID) (*models.Account, *Discrepancy, error) {
	var (
		fixed *models.Account
		found *Discrepancy
	)
	err := r.store.InTx(ctx, func(tx Tx) error {
		locked, err := tx.LockAccounts(ctx, owner, []uuid.UUID{accountID})
		if err != nil {
			return fmt.Errorf("failed to lock account: %w", err)
		}
		acc, err := usableAccount(locked, accountID, "account", false)
		if err != nil {
			return err
		}
		recomputed, err := replay(ctx, tx, owner, acc)
		if err != nil {
			return err
		}
		fixed = acc
		if found = newDiscrepancy(acc, recomputed); found == nil {
			return nil
		}
		acc.CurrentBalance = recomputed
		return tx.SetBalances(ctx, []*models.Account{acc})
	})
	if err != nil {
		return nil, nil, err
	}
	if found != nil {
		r.log.WithFields(logrus.Fields{
			logging.FieldUserID:      owner,
			logging.FieldAccountID:   found.AccountID,
			logging.FieldAccountName: found.AccountName,
			logging.FieldStored:      found.Stored.String(),
			logging.FieldRecomputed:  found.Recomputed.String(),
			logging.FieldDifference:  found.Difference.String(),
		}).Warn("Running balance corrected")
	}
	return fixed, found, nil
}

// FixAll repairs every drifted account of the owner and reports what was
// corrected. Each account is fixed in its own unit of work.
func (r *Reconciler) FixAll(ctx context.Context, owner uuid.UUID) ([]Discrepancy, error) {
	accounts, err := r.store.ListAccounts(ctx, owner, models.AccountFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	corrected := []Discrepancy{}
	for _, acc := range accounts {
		_, d, err := r.fix(ctx, owner, acc.ID)
		if err != nil {
			return corrected, err
		}
		if d != nil {
			corrected = append(corrected, *d)
		}
	}
	return corrected, nil
}
