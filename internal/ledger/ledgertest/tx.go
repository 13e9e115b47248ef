package ledgertest

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/valeriaulyamaeva/budget-ledger/internal/ledger"
	"github.com/valeriaulyamaeva/budget-ledger/models"
)

type memTx struct {
	store *Store
	st    *state

	balanceWrites int
}

var _ ledger.Tx = (*memTx)(nil)

func (tx *memTx) fail(op string) error {
	err, ok := tx.store.failures[op]
	if !ok {
		return nil
	}
	delete(tx.store.failures, op)
	return err
}

func (tx *memTx) GetAccount(ctx context.Context, owner, id uuid.UUID) (*models.Account, error) {
	return tx.st.getAccount(owner, id)
}

func (tx *memTx) ListAccounts(ctx context.Context, owner uuid.UUID, filter models.AccountFilter) ([]models.Account, error) {
	return tx.st.listAccounts(owner, filter), nil
}

func (tx *memTx) GetCategory(ctx context.Context, owner, id uuid.UUID) (*models.Category, error) {
	return tx.st.getCategory(owner, id)
}

func (tx *memTx) ListCategories(ctx context.Context, owner uuid.UUID) ([]models.Category, error) {
	return tx.st.listCategories(owner), nil
}

func (tx *memTx) GetTransaction(ctx context.Context, owner, id uuid.UUID) (*models.Transaction, error) {
	return tx.st.getTransaction(owner, id)
}

func (tx *memTx) ListTransactions(ctx context.Context, owner uuid.UUID, filter models.TransactionFilter) ([]models.Transaction, error) {
	return tx.st.listTransactions(owner, filter), nil
}

func (tx *memTx) GetTransfer(ctx context.Context, owner, id uuid.UUID) (*models.Transfer, error) {
	return tx.st.getTransfer(owner, id)
}

func (tx *memTx) ListTransfers(ctx context.Context, owner uuid.UUID, filter models.TransferFilter) ([]models.Transfer, error) {
	return tx.st.listTransfers(owner, filter), nil
}

func (tx *memTx) LockAccounts(ctx context.Context, owner uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]*models.Account, error) {
	if err := tx.fail("LockAccounts"); err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]*models.Account, len(ids))
	for _, id := range ids {
		if a, err := tx.st.getAccount(owner, id); err == nil {
			out[id] = a
		}
	}
	return out, nil
}

func (tx *memTx) LockTransaction(ctx context.Context, owner, id uuid.UUID) (*models.Transaction, error) {
	return tx.st.getTransaction(owner, id)
}

func (tx *memTx) LockTransfer(ctx context.Context, owner, id uuid.UUID) (*models.Transfer, error) {
	return tx.st.getTransfer(owner, id)
}

func (tx *memTx) InsertAccount(ctx context.Context, a *models.Account) error {
	if err := tx.fail("InsertAccount"); err != nil {
		return err
	}
	if _, ok := tx.st.accounts[a.ID]; ok {
		return fmt.Errorf("account %s already exists", a.ID)
	}
	tx.st.accounts[a.ID] = *a
	return nil
}

// UpdateAccount keeps the stored balances, as the SQL store does.
func (tx *memTx) UpdateAccount(ctx context.Context, a *models.Account) error {
	if err := tx.fail("UpdateAccount"); err != nil {
		return err
	}
	cur, ok := tx.st.accounts[a.ID]
	if !ok || cur.UserID != a.UserID {
		return ledger.NotFound("account", a.ID)
	}
	next := *a
	next.InitialBalance = cur.InitialBalance
	next.CurrentBalance = cur.CurrentBalance
	next.CreatedAt = cur.CreatedAt
	tx.st.accounts[a.ID] = next
	return nil
}

func (tx *memTx) DeleteAccount(ctx context.Context, owner, id uuid.UUID) error {
	if err := tx.fail("DeleteAccount"); err != nil {
		return err
	}
	if _, err := tx.st.getAccount(owner, id); err != nil {
		return err
	}
	delete(tx.st.accounts, id)
	for k, t := range tx.st.transactions {
		if t.AccountID == id {
			delete(tx.st.transactions, k)
		}
	}
	for k, t := range tx.st.transfers {
		if t.Involves(id) {
			delete(tx.st.transfers, k)
		}
	}
	return nil
}

func (tx *memTx) SetBalances(ctx context.Context, accounts []*models.Account) error {
	if err := tx.fail("SetBalances"); err != nil {
		return err
	}
	for _, a := range accounts {
		cur, ok := tx.st.accounts[a.ID]
		if !ok {
			return ledger.NotFound("account", a.ID)
		}
		cur.CurrentBalance = a.CurrentBalance
		tx.st.accounts[a.ID] = cur
		tx.balanceWrites++
	}
	return nil
}

func (tx *memTx) InsertCategory(ctx context.Context, c *models.Category) error {
	if err := tx.fail("InsertCategory"); err != nil {
		return err
	}
	tx.st.categories[c.ID] = *c
	return nil
}

func (tx *memTx) InsertTransaction(ctx context.Context, t *models.Transaction) error {
	if err := tx.fail("InsertTransaction"); err != nil {
		return err
	}
	tx.st.transactions[t.ID] = copyTransaction(*t)
	return nil
}

func (tx *memTx) UpdateTransaction(ctx context.Context, t *models.Transaction) error {
	if err := tx.fail("UpdateTransaction"); err != nil {
		return err
	}
	if _, err := tx.st.getTransaction(t.UserID, t.ID); err != nil {
		return err
	}
	tx.st.transactions[t.ID] = copyTransaction(*t)
	return nil
}

func (tx *memTx) DeleteTransaction(ctx context.Context, owner, id uuid.UUID) error {
	if err := tx.fail("DeleteTransaction"); err != nil {
		return err
	}
	if _, err := tx.st.getTransaction(owner, id); err != nil {
		return err
	}
	delete(tx.st.transactions, id)
	return nil
}

func (tx *memTx) InsertTransfer(ctx context.Context, t *models.Transfer) error {
	if err := tx.fail("InsertTransfer"); err != nil {
		return err
	}
	tx.st.transfers[t.ID] = *t
	return nil
}

func (tx *memTx) UpdateTransfer(ctx context.Context, t *models.Transfer) error {
	if err := tx.fail("UpdateTransfer"); err != nil {
		return err
	}
	if _, err := tx.st.getTransfer(t.UserID, t.ID); err != nil {
		return err
	}
	tx.st.transfers[t.ID] = *t
	return nil
}

func (tx *memTx) DeleteTransfer(ctx context.Context, owner, id uuid.UUID) error {
	if err := tx.fail("DeleteTransfer"); err != nil {
		return err
	}
	if _, err := tx.st.getTransfer(owner, id); err != nil {
		return err
	}
	delete(tx.st.transfers, id)
	return nil
}
