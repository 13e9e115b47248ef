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

const categoryColumns = `id, user_id, parent_id, name, type, color, icon, is_active, is_system, created_at`

func scanCategory(row pgx.Row) (*models.Category, error) {
	var (
		c      models.Category
		parent uuid.NullUUID
		typ    string
	)
	err := row.Scan(
		&c.ID,
		&c.UserID,
		&parent,
		&c.Name,
		&typ,
		&c.Color,
		&c.Icon,
		&c.IsActive,
		&c.IsSystem,
		&c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if parent.Valid {
		c.ParentID = &parent.UUID
	}
	c.Type = models.MacroType(typ)
	return &c, nil
}

func (q queries) GetCategory(ctx context.Context, owner, id uuid.UUID) (*models.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1 AND user_id = $2`
	c, err := scanCategory(q.q.QueryRow(ctx, query, id, owner))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ledger.NotFound("category", id)
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return c, nil
}

func (q queries) ListCategories(ctx context.Context, owner uuid.UUID) ([]models.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE user_id = $1 ORDER BY type, name`
	rows, err := q.q.Query(ctx, query, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read categories: %w", err)
	}
	return categories, nil
}

func (q queries) InsertCategory(ctx context.Context, c *models.Category) error {
	if err := q.ensureUser(ctx, c.UserID, ""); err != nil {
		return err
	}
	query := `
		INSERT INTO categories (id, user_id, parent_id, name, type, color, icon, is_active, is_system, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	var parent uuid.NullUUID
	if c.ParentID != nil {
		parent = uuid.NullUUID{UUID: *c.ParentID, Valid: true}
	}
	_, err := q.q.Exec(ctx, query,
		c.ID, c.UserID, parent, c.Name, string(c.Type), c.Color, c.Icon, c.IsActive, c.IsSystem, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert category: %w", err)
	}
	return nil
}
