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

// usableCategory loads a category for a transaction. The active check is
// skipped for the category the transaction already had.
func usableCategory(ctx context.Context, tx Tx, owner, id uuid.UUID, checkActive bool) (*models.Category, error) {
	cat, err := tx.GetCategory(ctx, owner, id)
	if err != nil {
		if isNotFound(err) {
			return nil, NotFound("category", id)
		}
		return nil, fmt.Errorf("failed to load category: %w", err)
	}
	if checkActive && !cat.IsActive {
		return nil, inactive("category", id, cat.Name)
	}
	return cat, nil
}

// CreateTransaction books an income or expense and moves the account's
// running balance by it. The type comes from the category.
func (s *Service) CreateTransaction(ctx context.Context, owner uuid.UUID, in models.TransactionCreate) (*models.Transaction, error) {
	if err := in.Validate(); err != nil {
		return nil, invalid(err)
	}
	var created *models.Transaction
	err := s.store.InTx(ctx, func(tx Tx) error {
		cat, err := usableCategory(ctx, tx, owner, in.CategoryID, true)
		if err != nil {
			return err
		}
		locked, err := lockAccounts(ctx, tx, owner, in.AccountID)
		if err != nil {
			return err
		}
		if _, err := usableAccount(locked, in.AccountID, "account", true); err != nil {
			return err
		}

		t := in.NewTransaction(owner, cat.Type, s.now())
		effect, err := balance.TransactionEffect(balance.TransactionStateOf(t))
		if err != nil {
			return err
		}
		if err := tx.InsertTransaction(ctx, t); err != nil {
			return fmt.Errorf("failed to insert transaction: %w", err)
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
	s.opLog("create_transaction", owner).WithFields(logrus.Fields{
		logging.FieldTransactionID: created.ID,
		logging.FieldAccountID:     created.AccountID,
	}).Debug("Transaction created")
	return created, nil
}

func (s *Service) GetTransaction(ctx context.Context, owner, id uuid.UUID) (*models.Transaction, error) {
	return s.store.GetTransaction(ctx, owner, id)
}

func (s *Service) ListTransactions(ctx context.Context, owner uuid.UUID, filter models.TransactionFilter) ([]models.Transaction, error) {
	return s.store.ListTransactions(ctx, owner, filter)
}

// UpdateTransaction edits a transaction and moves balances by the difference
// between its old and new effect, including moves between accounts.
func (s *Service) UpdateTransaction(ctx context.Context, owner, id uuid.UUID, in models.TransactionUpdate) (*models.Transaction, error) {
	if err := in.Validate(); err != nil {
		return nil, invalid(err)
	}
	var updated *models.Transaction
	err := s.store.InTx(ctx, func(tx Tx) error {
		old, err := tx.LockTransaction(ctx, owner, id)
		if err != nil {
			return err
		}
		next := *old
		in.ApplyTo(&next, s.now())

		if next.CategoryID != old.CategoryID {
			cat, err := usableCategory(ctx, tx, owner, next.CategoryID, true)
			if err != nil {
				return err
			}
			next.Type = cat.Type
		}

		locked, err := lockAccounts(ctx, tx, owner, old.AccountID, next.AccountID)
		if err != nil {
			return err
		}
		if _, err := usableAccount(locked, next.AccountID, "account", next.AccountID != old.AccountID); err != nil {
			return err
		}

		before, err := balance.TransactionEffect(balance.TransactionStateOf(old))
		if err != nil {
			return err
		}
		after, err := balance.TransactionEffect(balance.TransactionStateOf(&next))
		if err != nil {
			return err
		}
		if err := tx.UpdateTransaction(ctx, &next); err != nil {
			return fmt.Errorf("failed to update transaction: %w", err)
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

// DeleteTransaction removes a transaction and reverses its effect.
func (s *Service) DeleteTransaction(ctx context.Context, owner, id uuid.UUID) error {
	return s.store.InTx(ctx, func(tx Tx) error {
		old, err := tx.LockTransaction(ctx, owner, id)
		if err != nil {
			return err
		}
		locked, err := lockAccounts(ctx, tx, owner, old.AccountID)
		if err != nil {
			return err
		}
		if _, err := usableAccount(locked, old.AccountID, "account", false); err != nil {
			return err
		}
		effect, err := balance.TransactionEffect(balance.TransactionStateOf(old))
		if err != nil {
			return err
		}
		if err := tx.DeleteTransaction(ctx, owner, id); err != nil {
			return fmt.Errorf("failed to delete transaction: %w", err)
		}
		return applyAdjustments(ctx, tx, locked, balance.Delta(effect, nil))
	})
}
