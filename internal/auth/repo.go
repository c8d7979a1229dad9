package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates no matching account.
var ErrNotFound = errors.New("user not found")

// Repository provides account lookups for authentication.
type Repository interface {
	GetByUsername(ctx context.Context, username string) (*User, string, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository backed by PostgreSQL.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

// GetByUsername returns the user and its PIN hash.
func (r *repository) GetByUsername(ctx context.Context, username string) (*User, string, error) {
	const query = `
		SELECT id, username, display_name, role, pin_hash, is_active, created_at
		FROM users
		WHERE username = $1
	`
	var u User
	var pinHash string
	err := r.pool.QueryRow(ctx, query, username).Scan(
		&u.ID, &u.Username, &u.DisplayName, &u.Role, &pinHash, &u.IsActive, &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", ErrNotFound
		}
		return nil, "", err
	}
	return &u, pinHash, nil
}
