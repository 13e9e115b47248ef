package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// User is the owner row that accounts and entries hang off. Sign-up and
// credentials live outside this service.
type User struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// EnsureUser inserts the owner row unless it already exists.
func (s *Store) EnsureUser(ctx context.Context, id uuid.UUID, name string) error {
	return s.ensureUser(ctx, id, name)
}

// ensureUser is the upsert behind EnsureUser. Account and category inserts run
// it in their own unit of work, so an owner known only from a token gets a row
// on first write. A blank stored name is filled in later; a set one is kept.
func (q queries) ensureUser(ctx context.Context, id uuid.UUID, name string) error {
	query := `
		INSERT INTO users (id, name) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name
		WHERE users.name = '' AND EXCLUDED.name <> ''`
	if _, err := q.q.Exec(ctx, query, id, name); err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (s *Store) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name, created_at FROM users ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := []User{}
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Name, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read users: %w", err)
	}
	return users, nil
}

// ListUserIDs returns every owner id, for jobs that walk all ledgers.
func (s *Store) ListUserIDs(ctx context.Context) ([]uuid.UUID, error) {
	users, err := s.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	return ids, nil
}
