package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"freelance-backend/internal/models"
)

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (q *Queries) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := q.db.QueryRowContext(ctx, `
		SELECT id, email, username, user_type, created_at
		FROM users
		WHERE id = $1
	`, id).Scan(&user.ID, &user.Email, &user.Username, &user.Role, &user.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", mapError(err))
	}

	return &user, nil
}

// CreateUser inserts the user unless a row with the same id already exists.
func (q *Queries) CreateUser(ctx context.Context, user *models.User) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO users (id, email, username, user_type)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO NOTHING
	`, user.ID, user.Email, user.Username, user.Role)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", mapError(err))
	}
	return nil
}

// LockUser takes a row lock on the user until the surrounding transaction ends.
// Rating recomputation uses it to serialize concurrent completions for the
// same freelancer.
func (q *Queries) LockUser(ctx context.Context, id uuid.UUID) error {
	var locked uuid.UUID
	err := q.db.QueryRowContext(ctx, `
		SELECT id FROM users WHERE id = $1 FOR UPDATE
	`, id).Scan(&locked)
	if err != nil {
		return fmt.Errorf("failed to lock user: %w", mapError(err))
	}
	return nil
}

// DeleteUser removes the user. Owned projects, bids, the profile and
// payments cascade; projects whose winning bid is removed keep no winner.
func (q *Queries) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return q.execOne(ctx, "delete user", `
		DELETE FROM users
		WHERE id = $1
	`, id)
}
