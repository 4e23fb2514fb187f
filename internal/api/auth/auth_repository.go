package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/sisgestion/empresas/internal/api"
)

// PgxPool is the subset of pgxpool.Pool the repository needs.
// Declared here so tests can substitute a pgxmock pool.
type PgxPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var _ AuthRepo = (*PostgresAuthRepo)(nil)

// AuthRepo is the credential store: identity lookup and creation.
// Password hashing happens in the service layer; the repository only
// stores and returns hashes.
type AuthRepo interface {
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	CreateUser(ctx context.Context, email, passwordHash string) (*User, error)
}

type PostgresAuthRepo struct {
	logger *slog.Logger
	pgpool PgxPool
}

func NewPostgresAuthRepo(pgpool PgxPool, logger *slog.Logger) *PostgresAuthRepo {
	return &PostgresAuthRepo{
		logger: logger,
		pgpool: pgpool,
	}
}

// GetUserByEmail returns the identity for an email, or api.ErrNotFound.
func (r *PostgresAuthRepo) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	err := r.pgpool.QueryRow(ctx,
		"SELECT id, email, password_hash, created_at FROM users WHERE lower(email) = lower($1)",
		email).Scan(&user.ID, &user.Email, &user.Password, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, api.ErrNotFound
		}
		return nil, fmt.Errorf("get user by email: query failed: %w", err)
	}
	return &user, nil
}

// CreateUser inserts a new identity and returns it with the assigned id.
// A duplicate email maps to api.ErrConflict.
func (r *PostgresAuthRepo) CreateUser(ctx context.Context, email, passwordHash string) (*User, error) {
	var user User
	err := r.pgpool.QueryRow(ctx,
		`INSERT INTO users (email, password_hash)
         VALUES ($1, $2)
         RETURNING id, email, password_hash, created_at`,
		email, passwordHash).Scan(&user.ID, &user.Email, &user.Password, &user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, api.ErrConflict
		}
		return nil, fmt.Errorf("create user: db insert failed: %w", err)
	}
	return &user, nil
}
