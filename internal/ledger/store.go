package ledger

import (
	"context"

	"github.com/google/uuid"

	"github.com/valeriaulyamaeva/budget-ledger/models"
)

// Reader is the owner-scoped lookup side of the store. Single-row getters
// return an error matching ErrNotFound when the row is missing or belongs to
// another user.
type Reader interface {
	GetAccount(ctx context.Context, owner, id uuid.UUID) (*models.Account, error)
	ListAccounts(ctx context.Context, owner uuid.UUID, filter models.AccountFilter) ([]models.Account, error)
	GetCategory(ctx context.Context, owner, id uuid.UUID) (*models.Category, error)
	ListCategories(ctx context.Context, owner uuid.UUID) ([]models.Category, error)
	GetTransaction(ctx context.Context, owner, id uuid.UUID) (*models.Transaction, error)
	ListTransactions(ctx context.Context, owner uuid.UUID, filter models.TransactionFilter) ([]models.Transaction, error)
	GetTransfer(ctx context.Context, owner, id uuid.UUID) (*models.Transfer, error)
	ListTransfers(ctx context.Context, owner uuid.UUID, filter models.TransferFilter) ([]models.Transfer, error)
}

// Tx is a unit of work. Rows returned by the Lock methods stay write-locked
// until the unit of work ends.
type Tx interface {
	Reader

	// LockAccounts locks the owner's accounts among ids in ascending id order.
	// Missing ids are absent from the result.
	LockAccounts(ctx context.Context, owner uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]*models.Account, error)
	LockTransaction(ctx context.Context, owner, id uuid.UUID) (*models.Transaction, error)
	LockTransfer(ctx context.Context, owner, id uuid.UUID) (*models.Transfer, error)

	InsertAccount(ctx context.Context, a *models.Account) error
	// UpdateAccount writes the descriptive fields and is_active, never balances.
	UpdateAccount(ctx context.Context, a *models.Account) error
	// DeleteAccount removes the account with its transactions and transfers.
	DeleteAccount(ctx context.Context, owner, id uuid.UUID) error
	// SetBalances writes current_balance of each account.
	SetBalances(ctx context.Context, accounts []*models.Account) error

	InsertCategory(ctx context.Context, c *models.Category) error

	InsertTransaction(ctx context.Context, t *models.Transaction) error
	UpdateTransaction(ctx context.Context, t *models.Transaction) error
	DeleteTransaction(ctx context.Context, owner, id uuid.UUID) error

	InsertTransfer(ctx context.Context, t *models.Transfer) error
	UpdateTransfer(ctx context.Context, t *models.Transfer) error
	DeleteTransfer(ctx context.Context, owner, id uuid.UUID) error
}

// Store runs fn inside one atomic unit of work. Any error returned by fn, a
// panic or a cancelled context rolls back everything fn wrote.
//
// Snapshot runs fn against a single consistent, read-only view, so several
// reads see the same committed state.
type Store interface {
	Reader
	InTx(ctx context.Context, fn func(tx Tx) error) error
	Snapshot(ctx context.Context, fn func(r Reader) error) error
}
