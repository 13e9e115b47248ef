package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/valeriaulyamaeva/budget-ledger/internal/ledger"
	"github.com/valeriaulyamaeva/budget-ledger/models"
)

const accountColumns = `id, user_id, name, type, currency, initial_balance, current_balance,
	color, icon, notes, is_active, created_at, updated_at`

func scanAccount(row pgx.Row) (*models.Account, error) {
	var (
		a   models.Account
		typ string
	)
	err := row.Scan(
		&a.ID,
		&a.UserID,
		&a.Name,
		&typ,
		&a.Currency,
		&a.InitialBalance,
		&a.CurrentBalance,
		&a.Color,
		&a.Icon,
		&a.Notes,
		&a.IsActive,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	a.Type = models.AccountType(typ)
	return &a, nil
}

func collectAccounts(rows pgx.Rows) ([]models.Account, error) {
	defer rows.Close()
	accounts := []models.Account{}
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read accounts: %w", err)
	}
	return accounts, nil
}

func (q queries) GetAccount(ctx context.Context, owner, id uuid.UUID) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1 AND user_id = $2`
	a, err := scanAccount(q.q.QueryRow(ctx, query, id, owner))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ledger.NotFound("account", id)
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return a, nil
}

func (q queries) ListAccounts(ctx context.Context, owner uuid.UUID, filter models.AccountFilter) ([]models.Account, error) {
	w := &where{}
	w.add("user_id = ?", owner)
	if filter.Type != nil {
		w.add("type = ?", string(*filter.Type))
	}
	if filter.ActiveOnly {
		w.conds = append(w.conds, "is_active")
	}
	query := `SELECT ` + accountColumns + ` FROM accounts` + w.String() + ` ORDER BY name, id`
	rows, err := q.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return collectAccounts(rows)
}

// LockAccounts takes row locks in id order, the same order every writer uses.
func (q queries) LockAccounts(ctx context.Context, owner uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]*models.Account, error) {
	out := make(map[uuid.UUID]*models.Account, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	query := `SELECT ` + accountColumns + ` FROM accounts
		WHERE user_id = $1 AND id = ANY($2::uuid[])
		ORDER BY id
		FOR UPDATE`
	rows, err := q.q.Query(ctx, query, owner, uuidStrings(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to lock accounts: %w", err)
	}
	accounts, err := collectAccounts(rows)
	if err != nil {
		return nil, err
	}
	for i := range accounts {
		out[accounts[i].ID] = &accounts[i]
	}
	return out, nil
}

func (q queries) InsertAccount(ctx context.Context, a *models.Account) error {
	if err := q.ensureUser(ctx, a.UserID, ""); err != nil {
		return err
	}
	query := `
		INSERT INTO accounts (id, user_id, name, type, currency, initial_balance, current_balance,
			color, icon, notes, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := q.q.Exec(ctx, query,
		a.ID,
		a.UserID,
		a.Name,
		string(a.Type),
		a.Currency,
		a.InitialBalance,
		a.CurrentBalance,
		a.Color,
		a.Icon,
		a.Notes,
		a.IsActive,
		a.CreatedAt,
		a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert account: %w", err)
	}
	return nil
}

// UpdateAccount has no balance column in its SET list.
func (q queries) UpdateAccount(ctx context.Context, a *models.Account) error {
	query := `
		UPDATE accounts
		SET name = $1, type = $2, currency = $3, color = $4, icon = $5, notes = $6,
			is_active = $7, updated_at = $8
		WHERE id = $9 AND user_id = $10`
	result, err := q.q.Exec(ctx, query,
		a.Name, string(a.Type), a.Currency, a.Color, a.Icon, a.Notes, a.IsActive, a.UpdatedAt,
		a.ID, a.UserID)
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ledger.NotFound("account", a.ID)
	}
	return nil
}

func (q queries) DeleteAccount(ctx context.Context, owner, id uuid.UUID) error {
	result, err := q.q.Exec(ctx, `DELETE FROM accounts WHERE id = $1 AND user_id = $2`, id, owner)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ledger.NotFound("account", id)
	}
	return nil
}

func (q queries) SetBalances(ctx context.Context, accounts []*models.Account) error {
	query := `UPDATE accounts SET current_balance = $1, updated_at = now() WHERE id = $2 AND user_id = $3`
	for _, a := range accounts {
		result, err := q.q.Exec(ctx, query, a.CurrentBalance, a.ID, a.UserID)
		if err != nil {
			return fmt.Errorf("failed to set balance of account %s: %w", a.ID, err)
		}
		if result.RowsAffected() == 0 {
			return ledger.NotFound("account", a.ID)
		}
	}
	return nil
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
