package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/valeriaulyamaeva/budget-ledger/internal/ledger"
	"github.com/valeriaulyamaeva/budget-ledger/models"
)

const transactionColumns = `t.id, t.user_id, t.account_id, t.category_id, t.amount, t.type, t.date,
	t.description, t.notes, t.tags, t.is_recurring, t.recurring_frequency, t.created_at, t.updated_at`

func scanTransaction(row pgx.Row) (*models.Transaction, error) {
	var (
		t    models.Transaction
		typ  string
		date time.Time
	)
	err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.AccountID,
		&t.CategoryID,
		&t.Amount,
		&typ,
		&date,
		&t.Description,
		&t.Notes,
		&t.Tags,
		&t.IsRecurring,
		&t.RecurringFrequency,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.Type = models.MacroType(typ)
	t.Date = models.DateOf(date)
	return &t, nil
}

func (q queries) getTransaction(ctx context.Context, owner, id uuid.UUID, lock bool) (*models.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions t WHERE t.id = $1 AND t.user_id = $2`
	if lock {
		query += ` FOR UPDATE`
	}
	t, err := scanTransaction(q.q.QueryRow(ctx, query, id, owner))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ledger.NotFound("transaction", id)
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return t, nil
}

func (q queries) GetTransaction(ctx context.Context, owner, id uuid.UUID) (*models.Transaction, error) {
	return q.getTransaction(ctx, owner, id, false)
}

func (q queries) LockTransaction(ctx context.Context, owner, id uuid.UUID) (*models.Transaction, error) {
	return q.getTransaction(ctx, owner, id, true)
}

// ListTransactions returns the newest transactions first.
func (q queries) ListTransactions(ctx context.Context, owner uuid.UUID, filter models.TransactionFilter) ([]models.Transaction, error) {
	w := &where{}
	w.add("t.user_id = ?", owner)
	if filter.AccountID != nil {
		w.add("t.account_id = ?", *filter.AccountID)
	}
	if filter.CategoryID != nil {
		w.add("t.category_id = ?", *filter.CategoryID)
	}
	if filter.Type != nil {
		w.add("t.type = ?", string(*filter.Type))
	}
	if filter.From != nil {
		w.add("t.date >= ?", filter.From.Time)
	}
	if filter.To != nil {
		w.add("t.date <= ?", filter.To.Time)
	}
	if filter.MinAmount != nil {
		w.add("t.amount >= ?", *filter.MinAmount)
	}
	if filter.MaxAmount != nil {
		w.add("t.amount <= ?", *filter.MaxAmount)
	}
	if len(filter.Tags) > 0 {
		w.add("t.tags && ?::text[]", filter.Tags)
	}
	if filter.Search != "" {
		w.add("(t.description ILIKE ? OR t.notes ILIKE ?)", "%"+filter.Search+"%")
	}
	query := `SELECT ` + transactionColumns + ` FROM transactions t` + w.String() +
		` ORDER BY t.date DESC, t.created_at DESC`
	query += w.page(filter.Limit, filter.Offset)

	rows, err := q.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	transactions := []models.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read transactions: %w", err)
	}
	return transactions, nil
}

func (q queries) InsertTransaction(ctx context.Context, t *models.Transaction) error {
	query := `
		INSERT INTO transactions (id, user_id, account_id, category_id, amount, type, date,
			description, notes, tags, is_recurring, recurring_frequency, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := q.q.Exec(ctx, query,
		t.ID,
		t.UserID,
		t.AccountID,
		t.CategoryID,
		t.Amount,
		string(t.Type),
		t.Date.Time,
		t.Description,
		t.Notes,
		t.Tags,
		t.IsRecurring,
		t.RecurringFrequency,
		t.CreatedAt,
		t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

func (q queries) UpdateTransaction(ctx context.Context, t *models.Transaction) error {
	query := `
		UPDATE transactions
		SET account_id = $1, category_id = $2, amount = $3, type = $4, date = $5, description = $6,
			notes = $7, tags = $8, is_recurring = $9, recurring_frequency = $10, updated_at = $11
		WHERE id = $12 AND user_id = $13`
	result, err := q.q.Exec(ctx, query,
		t.AccountID, t.CategoryID, t.Amount, string(t.Type), t.Date.Time, t.Description,
		t.Notes, t.Tags, t.IsRecurring, t.RecurringFrequency, t.UpdatedAt,
		t.ID, t.UserID)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ledger.NotFound("transaction", t.ID)
	}
	return nil
}

func (q queries) DeleteTransaction(ctx context.Context, owner, id uuid.UUID) error {
	result, err := q.q.Exec(ctx, `DELETE FROM transactions WHERE id = $1 AND user_id = $2`, id, owner)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ledger.NotFound("transaction", id)
	}
	return nil
}
