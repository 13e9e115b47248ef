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

// CreateTransfer checks both accounts and the direction rule of the transfer
// type, then debits the source and credits the destination.
func (s *Service) CreateTransfer(ctx context.Context, owner uuid.UUID, in models.TransferCreate) (*models.Transfer, error) {
	if err := in.Validate(); err != nil {
		return nil, invalid(err)
	}
	var created *models.Transfer
	err := s.store.InTx(ctx, func(tx Tx) error {
		locked, err := lockAccounts(ctx, tx, owner, in.FromAccountID, in.ToAccountID)
		if err != nil {
			return err
		}
		from, err := usableAccount(locked, in.FromAccountID, "source account", true)
		if err != nil {
			return err
		}
		to, err := usableAccount(locked, in.ToAccountID, "destination account", true)
		if err != nil {
			return err
		}
		if err := balance.ValidateDirection(in.Type, from, to); err != nil {
			return invalid(err)
		}

		t := in.NewTransfer(owner, s.now())
		effect, err := balance.TransferEffect(balance.TransferStateOf(t))
		if err != nil {
			return invalid(err)
		}
		if err := tx.InsertTransfer(ctx, t); err != nil {
			return fmt.Errorf("failed to insert transfer: %w", err)
		}
		if err := applyAdjustments(ctx, tx, locked, effect); err != nil {
			return err
		}
		created = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.opLog("create_transfer", owner).WithFields(logrus.Fields{
		logging.FieldTransferID: created.ID,
		"from_account_id":       created.FromAccountID,
		"to_account_id":         created.ToAccountID,
	}).Debug("Transfer created")
	return created, nil
}

func (s *Service) GetTransfer(ctx context.Context, owner, id uuid.UUID) (*models.Transfer, error) {
	return s.store.GetTransfer(ctx, owner, id)
}

func (s *Service) ListTransfers(ctx context.Context, owner uuid.UUID, filter models.TransferFilter) ([]models.Transfer, error) {
	return s.store.ListTransfers(ctx, owner, filter)
}

// UpdateTransfer edits a transfer and moves up to four accounts by the
// difference between its old and new effect. The direction rule is checked
// again only when the account pair or the type changes.
func (s *Service) UpdateTransfer(ctx context.Context, owner, id uuid.UUID, in models.TransferUpdate) (*models.Transfer, error) {
	if err := in.Validate(); err != nil {
		return nil, invalid(err)
	}
	var updated *models.Transfer
	err := s.store.InTx(ctx, func(tx Tx) error {
		old, err := tx.LockTransfer(ctx, owner, id)
		if err != nil {
			return err
		}
		next := *old
		in.ApplyTo(&next, s.now())
		if next.FromAccountID == next.ToAccountID {
			return validationf("to_account_id", "source and destination accounts must be different")
		}
		if err := models.ValidateConverted(next.Amount, next.ExchangeRate); err != nil {
			return invalid(err)
		}

		locked, err := lockAccounts(ctx, tx, owner, old.FromAccountID, old.ToAccountID, next.FromAccountID, next.ToAccountID)
		if err != nil {
			return err
		}
		from, err := usableAccount(locked, next.FromAccountID, "source account", next.FromAccountID != old.FromAccountID)
		if err != nil {
			return err
		}
		to, err := usableAccount(locked, next.ToAccountID, "destination account", next.ToAccountID != old.ToAccountID)
		if err != nil {
			return err
		}
		if next.FromAccountID != old.FromAccountID || next.ToAccountID != old.ToAccountID || next.Type != old.Type {
			if err := balance.ValidateDirection(next.Type, from, to); err != nil {
				return invalid(err)
			}
		}

		before, err := balance.TransferEffect(balance.TransferStateOf(old))
		if err != nil {
			return err
		}
		after, err := balance.TransferEffect(balance.TransferStateOf(&next))
		if err != nil {
			return invalid(err)
		}
		if err := tx.UpdateTransfer(ctx, &next); err != nil {
			return fmt.Errorf("failed to update transfer: %w", err)
		}
		if err := applyAdjustments(ctx, tx, locked, balance.Delta(before, after)); err != nil {
			return err
		}
		updated = &next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteTransfer removes a transfer and reverses it on both accounts.
func (s *Service) DeleteTransfer(ctx context.Context, owner, id uuid.UUID) error {
	return s.store.InTx(ctx, func(tx Tx) error {
		old, err := tx.LockTransfer(ctx, owner, id)
		if err != nil {
			return err
		}
		locked, err := lockAccounts(ctx, tx, owner, old.FromAccountID, old.ToAccountID)
		if err != nil {
			return err
		}
		effect, err := balance.TransferEffect(balance.TransferStateOf(old))
		if err != nil {
			return err
		}
		if err := tx.DeleteTransfer(ctx, owner, id); err != nil {
			return fmt.Errorf("failed to delete transfer: %w", err)
		}
		return applyAdjustments(ctx, tx, locked, balance.Delta(effect, nil))
	})
}
