// Package ledger orchestrates every write that moves an account's running
// balance. Each operation checks its references, computes a single balance
// adjustment and persists it with the entity row inside one Store unit of work.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/valeriaulyamaeva/budget-ledger/internal/balance"
	"github.com/valeriaulyamaeva/budget-ledger/internal/logging"
	"github.com/valeriaulyamaeva/budget-ledger/models"
)

type Service struct {
	store Store
	log   logrus.FieldLogger
	now   func() time.Time
}

type Option func(*Service)

// WithClock replaces the wall clock used for created/updated timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store Store, log logrus.FieldLogger, opts ...Option) *Service {
	s := &Service{
		store: store,
		log:   log.WithField(logging.FieldComponent, "ledger"),
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// lockAccounts locks the distinct non-nil ids in ascending order.
func lockAccounts(ctx context.Context, tx Tx, owner uuid.UUID, ids ...uuid.UUID) (map[uuid.UUID]*models.Account, error) {
	seen := make(map[uuid.UUID]bool, len(ids))
	unique := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil || seen[id] {
			continue
		}
		seen[id] = true
		unique = append(unique, id)
	}
	balance.SortIDs(unique)
	locked, err := tx.LockAccounts(ctx, owner, unique)
	if err != nil {
		return nil, fmt.Errorf("failed to lock accounts: %w", err)
	}
	return locked, nil
}

// usableAccount returns the locked account or a reference error. The active
// check is skipped for accounts the entity already pointed at.
func usableAccount(locked map[uuid.UUID]*models.Account, id uuid.UUID, role string, checkActive bool) (*models.Account, error) {
	acc, ok := locked[id]
	if !ok {
		return nil, NotFound(role, id)
	}
	if checkActive && !acc.IsActive {
		return nil, inactive(role, id, acc.Name)
	}
	return acc, nil
}

// applyAdjustments moves the locked accounts by delta and persists the
// changed balances.
func applyAdjustments(ctx context.Context, tx Tx, locked map[uuid.UUID]*models.Account, delta balance.Adjustments) error {
	if len(delta) == 0 {
		return nil
	}
	if err := delta.ApplyTo(locked); err != nil {
		return err
	}
	changed := make([]*models.Account, 0, len(delta))
	for _, id := range delta.Accounts() {
		changed = append(changed, locked[id])
	}
	if err := tx.SetBalances(ctx, changed); err != nil {
		return fmt.Errorf("failed to store balances: %w", err)
	}
	return nil
}

func (s *Service) opLog(op string, owner uuid.UUID) logrus.FieldLogger {
	return s.log.WithFields(logrus.Fields{
		logging.FieldOperation: op,
		logging.FieldUserID:    owner,
	})
}
