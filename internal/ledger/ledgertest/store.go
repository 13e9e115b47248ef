// Package ledgertest provides an in-memory ledger.Store for tests. A unit of
// work runs on a private copy of the data that replaces the shared state only
// when it succeeds, and units of work are serialized.
package ledgertest

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/valeriaulyamaeva/budget-ledger/internal/ledger"
	"github.com/valeriaulyamaeva/budget-ledger/models"
)

type state struct {
	accounts     map[uuid.UUID]models.Account
	categories   map[uuid.UUID]models.Category
	transactions map[uuid.UUID]models.Transaction
	transfers    map[uuid.UUID]models.Transfer
}

func newState() *state {
	return &state{
		accounts:     map[uuid.UUID]models.Account{},
		categories:   map[uuid.UUID]models.Category{},
		transactions: map[uuid.UUID]models.Transaction{},
		transfers:    map[uuid.UUID]models.Transfer{},
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.accounts {
		c.accounts[k] = v
	}
	for k, v := range s.categories {
		c.categories[k] = v
	}
	for k, v := range s.transactions {
		c.transactions[k] = copyTransaction(v)
	}
	for k, v := range s.transfers {
		c.transfers[k] = v
	}
	return c
}

func copyTransaction(t models.Transaction) models.Transaction {
	if t.Tags != nil {
		t.Tags = append([]string(nil), t.Tags...)
	}
	return t
}

// Store is safe for concurrent use.
type Store struct {
	mu       sync.Mutex
	st       *state
	failures map[string]error

	balanceWrites int
	snapshots     int
}

var _ ledger.Store = (*Store)(nil)

func New() *Store {
	return &Store{st: newState(), failures: map[string]error{}}
}

// FailOn makes the next call of the named Tx method return err.
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = err
}

// BalanceWrites counts accounts written through SetBalances by committed units of work.
func (s *Store) BalanceWrites() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balanceWrites
}

// CorruptBalance overwrites a stored running balance behind the ledger's back.
func (s *Store) CorruptBalance(id uuid.UUID, v decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc := s.st.accounts[id]
	acc.CurrentBalance = v
	s.st.accounts[id] = acc
}

// InTx runs fn on a copy of the data and keeps the copy only when fn
// succeeds and ctx is still live.
func (s *Store) InTx(ctx context.Context, fn func(tx ledger.Tx) error) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	tx := &memTx{store: s, st: s.st.clone()}
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("unit of work panicked: %v", p)
		}
	}()
	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.st = tx.st
	s.balanceWrites += tx.balanceWrites
	return nil
}

// Snapshot runs fn with no unit of work able to commit in between.
func (s *Store) Snapshot(ctx context.Context, fn func(r ledger.Reader) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	s.snapshots++
	return fn(&memTx{store: s, st: s.st})
}

// Snapshots counts the read-only views taken so far.
func (s *Store) Snapshots() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshots
}

func (s *Store) GetAccount(ctx context.Context, owner, id uuid.UUID) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.getAccount(owner, id)
}

func (s *Store) ListAccounts(ctx context.Context, owner uuid.UUID, filter models.AccountFilter) ([]models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.listAccounts(owner, filter), nil
}

func (s *Store) GetCategory(ctx context.Context, owner, id uuid.UUID) (*models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.getCategory(owner, id)
}

func (s *Store) ListCategories(ctx context.Context, owner uuid.UUID) ([]models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.listCategories(owner), nil
}

func (s *Store) GetTransaction(ctx context.Context, owner, id uuid.UUID) (*models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.getTransaction(owner, id)
}

func (s *Store) ListTransactions(ctx context.Context, owner uuid.UUID, filter models.TransactionFilter) ([]models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.listTransactions(owner, filter), nil
}

func (s *Store) GetTransfer(ctx context.Context, owner, id uuid.UUID) (*models.Transfer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.getTransfer(owner, id)
}

func (s *Store) ListTransfers(ctx context.Context, owner uuid.UUID, filter models.TransferFilter) ([]models.Transfer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.listTransfers(owner, filter), nil
}

func (s *state) getAccount(owner, id uuid.UUID) (*models.Account, error) {
	a, ok := s.accounts[id]
	if !ok || a.UserID != owner {
		return nil, ledger.NotFound("account", id)
	}
	return &a, nil
}

func (s *state) listAccounts(owner uuid.UUID, filter models.AccountFilter) []models.Account {
	out := []models.Account{}
	for _, a := range s.accounts {
		if a.UserID != owner {
			continue
		}
		if filter.Type != nil && a.Type != *filter.Type {
			continue
		}
		if filter.ActiveOnly && !a.IsActive {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}

func (s *state) getCategory(owner, id uuid.UUID) (*models.Category, error) {
	c, ok := s.categories[id]
	if !ok || c.UserID != owner {
		return nil, ledger.NotFound("category", id)
	}
	return &c, nil
}

func (s *state) listCategories(owner uuid.UUID) []models.Category {
	out := []models.Category{}
	for _, c := range s.categories {
		if c.UserID == owner {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Type != out[j].Type {
			return out[i].Type < out[j].Type
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func (s *state) getTransaction(owner, id uuid.UUID) (*models.Transaction, error) {
	t, ok := s.transactions[id]
	if !ok || t.UserID != owner {
		return nil, ledger.NotFound("transaction", id)
	}
	t = copyTransaction(t)
	return &t, nil
}

// listTransactions orders newest first, like the SQL store.
func (s *state) listTransactions(owner uuid.UUID, filter models.TransactionFilter) []models.Transaction {
	out := []models.Transaction{}
	for _, t := range s.transactions {
		if t.UserID == owner && filter.Matches(&t) {
			out = append(out, copyTransaction(t))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date.Time) {
			return out[i].Date.After(out[j].Date.Time)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	start, end := models.Page(len(out), filter.Offset, filter.Limit)
	return out[start:end]
}

func (s *state) getTransfer(owner, id uuid.UUID) (*models.Transfer, error) {
	t, ok := s.transfers[id]
	if !ok || t.UserID != owner {
		return nil, ledger.NotFound("transfer", id)
	}
	return &t, nil
}

func (s *state) listTransfers(owner uuid.UUID, filter models.TransferFilter) []models.Transfer {
	out := []models.Transfer{}
	for _, t := range s.transfers {
		if t.UserID == owner && filter.Matches(&t) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date.Time) {
			return out[i].Date.After(out[j].Date.Time)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	start, end := models.Page(len(out), filter.Offset, filter.Limit)
	return out[start:end]
}
