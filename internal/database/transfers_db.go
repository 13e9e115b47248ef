package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/valeriaulyamaeva/budget-ledger/internal/ledger"
	"github.com/valeriaulyamaeva/budget-ledger/models"
)

const transferColumns = `id, user_id, from_account_id, to_account_id, transfer_type, amount, exchange_rate,
	fee, date, description, notes, created_at, updated_at`

func scanTransfer(row pgx.Row) (*models.Transfer, error) {
	var (
		t    models.Transfer
		typ  string
		rate decimal.NullDecimal
		date time.Time
	)
	err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.FromAccountID,
		&t.ToAccountID,
		&typ,
		&t.Amount,
		&rate,
		&t.Fee,
		&date,
		&t.Description,
		&t.Notes,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.Type = models.TransferType(typ)
	t.Date = models.DateOf(date)
	if rate.Valid {
		t.ExchangeRate = &rate.Decimal
	}
	return &t, nil
}

func nullRate(rate *decimal.Decimal) decimal.NullDecimal {
	if rate == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*rate)
}

func (q queries) getTransfer(ctx context.Context, owner, id uuid.UUID, lock bool) (*models.Transfer, error) {
	query := `SELECT ` + transferColumns + ` FROM transfers WHERE id = $1 AND user_id = $2`
	if lock {
		query += ` FOR UPDATE`
	}
	t, err := scanTransfer(q.q.QueryRow(ctx, query, id, owner))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ledger.NotFound("transfer", id)
		}
		return nil, fmt.Errorf("failed to get transfer: %w", err)
	}
	return t, nil
}

func (q queries) GetTransfer(ctx context.Context, owner, id uuid.UUID) (*models.Transfer, error) {
	return q.getTransfer(ctx, owner, id, false)
}

func (q queries) LockTransfer(ctx context.Context, owner, id uuid.UUID) (*models.Transfer, error) {
	return q.getTransfer(ctx, owner, id, true)
}

func (q queries) ListTransfers(ctx context.Context, owner uuid.UUID, filter models.TransferFilter) ([]models.Transfer, error) {
	w := &where{}
	w.add("user_id = ?", owner)
	if filter.AccountID != nil {
		w.add("(from_account_id = ? OR to_account_id = ?)", *filter.AccountID)
	}
	if filter.FromAccountID != nil {
		w.add("from_account_id = ?", *filter.FromAccountID)
	}
	if filter.ToAccountID != nil {
		w.add("to_account_id = ?", *filter.ToAccountID)
	}
	if filter.Type != nil {
		w.add("transfer_type = ?", string(*filter.Type))
	}
	if filter.From != nil {
		w.add("date >= ?", filter.From.Time)
	}
	if filter.To != nil {
		w.add("date <= ?", filter.To.Time)
	}
	query := `SELECT ` + transferColumns + ` FROM transfers` + w.String() + ` ORDER BY date DESC, created_at DESC`
	query += w.page(filter.Limit, filter.Offset)

	rows, err := q.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transfers: %w", err)
	}
	defer rows.Close()

	transfers := []models.Transfer{}
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transfer: %w", err)
		}
		transfers = append(transfers, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read transfers: %w", err)
	}
	return transfers, nil
}

func (q queries) InsertTransfer(ctx context.Context, t *models.Transfer) error {
	query := `
		INSERT INTO transfers (id, user_id, from_account_id, to_account_id, transfer_type, amount,
			exchange_rate, fee, date, description, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := q.q.Exec(ctx, query,
		t.ID,
		t.UserID,
		t.FromAccountID,
		t.ToAccountID,
		string(t.Type),
		t.Amount,
		nullRate(t.ExchangeRate),
		t.Fee,
		t.Date.Time,
		t.Description,
		t.Notes,
		t.CreatedAt,
		t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transfer: %w", err)
	}
	return nil
}

func (q queries) UpdateTransfer(ctx context.Context, t *models.Transfer) error {
	query := `
		UPDATE transfers
		SET from_account_id = $1, to_account_id = $2, transfer_type = $3, amount = $4, exchange_rate = $5,
			fee = $6, date = $7, description = $8, notes = $9, updated_at = $10
		WHERE id = $11 AND user_id = $12`
	result, err := q.q.Exec(ctx, query,
		t.FromAccountID, t.ToAccountID, string(t.Type), t.Amount, nullRate(t.ExchangeRate),
		t.Fee, t.Date.Time, t.Description, t.Notes, t.UpdatedAt,
		t.ID, t.UserID)
	if err != nil {
		return fmt.Errorf("failed to update transfer: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ledger.NotFound("transfer", t.ID)
	}
	return nil
}

func (q queries) DeleteTransfer(ctx context.Context, owner, id uuid.UUID) error {
	result, err := q.q.Exec(ctx, `DELETE FROM transfers WHERE id = $1 AND user_id = $2`, id, owner)
	if err != nil {
		return fmt.Errorf("failed to delete transfer: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ledger.NotFound("transfer", id)
	}
	return nil
}
