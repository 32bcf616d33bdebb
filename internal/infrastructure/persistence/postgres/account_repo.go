package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/mmt697/EcoTracker-Project/internal/domain/account"
	"github.com/mmt697/EcoTracker-Project/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════
// ACCOUNT REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════

// AccountRepository implements account.Repository for PostgreSQL.
type AccountRepository struct {
	conn *Connection
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(conn *Connection) *AccountRepository {
	return &AccountRepository{conn: conn}
}

// Create stores a new user.
func (r *AccountRepository) Create(ctx context.Context, user *account.User) error {
	query := `
		INSERT INTO users (id, name, email, password_hash, joined_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.conn.Exec(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.JoinedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrUserAlreadyExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByID returns a user by internal id.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*account.User, error) {
	query := `
		SELECT id, name, email, password_hash, joined_at
		FROM users
		WHERE id = $1
	`

	return r.scanUser(ctx, query, id)
}

// GetByEmail returns a user by email, case-insensitive.
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*account.User, error) {
	query := `
		SELECT id, name, email, password_hash, joined_at
		FROM users
		WHERE email = $1
	`

	return r.scanUser(ctx, query, strings.ToLower(strings.TrimSpace(email)))
}

// Delete removes a user.
func (r *AccountRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.conn.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrUserNotFound
	}

	return nil
}

func (r *AccountRepository) scanUser(ctx context.Context, query string, arg interface{}) (*account.User, error) {
	var user account.User

	err := r.conn.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.JoinedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	return &user, nil
}
