package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/valeriaulyamaeva/budget-ledger/internal/balance"
	"github.com/valeriaulyamaeva/budget-ledger/internal/logging"
	"github.com/valeriaulyamaeva/budget-ledger/models"
)

// CreateAccount opens an account with its running balance at the initial balance.
func (s *Service) CreateAccount(ctx context.Context, owner uuid.UUID, in models.AccountCreate) (*models.Account, error) {
	if err := in.Validate(); err != nil {
		return nil, invalid(err)
	}
	acc := in.NewAccount(owner, s.now())
	err := s.store.InTx(ctx, func(tx Tx) error {
		return tx.InsertAccount(ctx, acc)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	s.opLog("create_account", owner).WithField(logging.FieldAccountID, acc.ID).Info("Account created")
	return acc, nil
}

func (s *Service) GetAccount(ctx context.Context, owner, id uuid.UUID) (*models.Account, error) {
	return s.store.GetAccount(ctx, owner, id)
}

func (s *Service) ListAccounts(ctx context.Context, owner uuid.UUID, filter models.AccountFilter) ([]models.Account, error) {
	return s.store.ListAccounts(ctx, owner, filter)
}

// UpdateAccount edits descriptive fields and the active flag. Balances are
// not reachable from here.
func (s *Service) UpdateAccount(ctx context.Context, owner, id uuid.UUID, in models.AccountUpdate) (*models.Account, error) {
	if err := in.Validate(); err != nil {
		return nil, invalid(err)
	}
	var updated *models.Account
	err := s.store.InTx(ctx, func(tx Tx) error {
		locked, err := lockAccounts(ctx, tx, owner, id)
		if err != nil {
			return err
		}
		acc, err := usableAccount(locked, id, "account", false)
		if err != nil {
			return err
		}
		in.ApplyTo(acc, s.now())
		if err := tx.UpdateAccount(ctx, acc); err != nil {
			return fmt.Errorf("failed to update account: %w", err)
		}
		updated = acc
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeactivateAccount is the soft delete: history and balance stay, but the
// account can no longer be newly referenced.
func (s *Service) DeactivateAccount(ctx context.Context, owner, id uuid.UUID) (*models.Account, error) {
	off := false
	acc, err := s.UpdateAccount(ctx, owner, id, models.AccountUpdate{IsActive: &off})
	if err != nil {
		return nil, err
	}
	s.opLog("deactivate_account", owner).WithField(logging.FieldAccountID, id).Info("Account deactivated")
	return acc, nil
}

// DeleteAccount removes the account together with its transactions and
// transfers. Transfers to or from other accounts are reversed on those
// accounts first, so their running balances keep matching their history.
func (s *Service) DeleteAccount(ctx context.Context, owner, id uuid.UUID) error {
	var reversed int
	err := s.store.InTx(ctx, func(tx Tx) error {
		transfers, err := tx.ListTransfers(ctx, owner, models.TransferFilter{AccountID: &id, Limit: -1})
		if err != nil {
			return fmt.Errorf("failed to list transfers: %w", err)
		}
		locked, err := lockAccounts(ctx, tx, owner, append(counterparts(transfers, id), id)...)
		if err != nil {
			return err
		}
		if _, err := usableAccount(locked, id, "account", false); err != nil {
			return err
		}

		// Re-read under the lock; a transfer created in between needs its
		// counterpart locked as well.
		if transfers, err = tx.ListTransfers(ctx, owner, models.TransferFilter{AccountID: &id, Limit: -1}); err != nil {
			return fmt.Errorf("failed to list transfers: %w", err)
		}
		var missing []uuid.UUID
		for _, other := range counterparts(transfers, id) {
			if _, ok := locked[other]; !ok {
				missing = append(missing, other)
			}
		}
		if len(missing) > 0 {
			more, err := lockAccounts(ctx, tx, owner, missing...)
			if err != nil {
				return err
			}
			for k, v := range more {
				locked[k] = v
			}
		}

		delta := balance.Adjustments{}
		for i := range transfers {
			effect, err := balance.TransferEffect(balance.TransferStateOf(&transfers[i]))
			if err != nil {
				return err
			}
			delta.Add(balance.Delta(effect, nil))
		}
		delete(delta, id)
		if err := applyAdjustments(ctx, tx, locked, delta); err != nil {
			return err
		}
		reversed = len(transfers)
		return tx.DeleteAccount(ctx, owner, id)
	})
	if err != nil {
		return err
	}
	s.opLog("delete_account", owner).WithFields(logrus.Fields{
		logging.FieldAccountID: id,
		logging.FieldCount:     reversed,
	}).Info("Account deleted")
	return nil
}

func counterparts(transfers []models.Transfer, id uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(transfers))
	for _, t := range transfers {
		if t.FromAccountID != id {
			out = append(out, t.FromAccountID)
		}
		if t.ToAccountID != id {
			out = append(out, t.ToAccountID)
		}
	}
	return out
}
