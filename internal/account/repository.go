// Package account manages board user accounts and authentication.
package account

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Account represents a registered board user.
type Account struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Nickname     string    `json:"nickname"`
	Email        *string   `json:"email,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ErrNotFound is returned when an account does not exist.
var ErrNotFound = errors.New("account not found")

// ErrAlreadyExists is returned when a username is already taken.
var ErrAlreadyExists = errors.New("account already exists")

// Repository handles all account database operations.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new Repository with the given connection pool.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Create inserts a new account and returns the created record.
func (r *Repository) Create(ctx context.Context, username, passwordHash, nickname string, email *string) (*Account, error) {
	a := &Account{}
	err := r.db.QueryRow(ctx,
		`INSERT INTO user_accounts (username, password_hash, nickname, email)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, username, password_hash, nickname, email, created_at, updated_at`,
		username, passwordHash, nickname, email,
	).Scan(&a.ID, &a.Username, &a.PasswordHash, &a.Nickname, &a.Email, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("create account: %w", err)
	}
	return a, nil
}

// GetByID fetches an account by its UUID.
func (r *Repository) GetByID(ctx context.Context, id string) (*Account, error) {
	a := &Account{}
	err := r.db.QueryRow(ctx,
		`SELECT id, username, password_hash, nickname, email, created_at, updated_at
		 FROM user_accounts WHERE id = $1`,
		id,
	).Scan(&a.ID, &a.Username, &a.PasswordHash, &a.Nickname, &a.Email, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get account by id: %w", err)
	}
	return a, nil
}

// GetByUsername fetches an account by its username.
func (r *Repository) GetByUsername(ctx context.Context, username string) (*Account, error) {
	a := &Account{}
	err := r.db.QueryRow(ctx,
		`SELECT id, username, password_hash, nickname, email, created_at, updated_at
		 FROM user_accounts WHERE username = $1`,
		username,
	).Scan(&a.ID, &a.Username, &a.PasswordHash, &a.Nickname, &a.Email, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get account by username: %w", err)
	}
	return a, nil
}

// isUniqueViolation checks whether an error is a PostgreSQL unique_violation (code 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
