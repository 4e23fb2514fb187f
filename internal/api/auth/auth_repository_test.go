package auth

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sisgestion/empresas/internal/api"
)

var userRowColumns = []string{"id", "email", "password_hash", "created_at"}

func setupAuthRepoTest(t *testing.T) (*PostgresAuthRepo, pgxmock.PgxPoolIface) {
	t.Helper()
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mockPool.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewPostgresAuthRepo(mockPool, logger), mockPool
}

func TestPostgresAuthRepo_GetUserByEmail(t *testing.T) {
	ctx := context.Background()

	t.Run("lookup is case-insensitive on the stored side", func(t *testing.T) {
		repo, mockPool := setupAuthRepoTest(t)
		userID := uuid.New()
		rows := pgxmock.NewRows(userRowColumns).
			AddRow(userID, "a@b.com", "$2a$10$hash", time.Now())
		mockPool.ExpectQuery("SELECT (.+) FROM users WHERE lower").
			WithArgs("A@B.com").WillReturnRows(rows)

		user, err := repo.GetUserByEmail(ctx, "A@B.com")
		require.NoError(t, err)
		assert.Equal(t, userID, user.ID)
		assert.Equal(t, "a@b.com", user.Email)
		assert.Equal(t, "$2a$10$hash", user.Password)
		require.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("unknown email maps to ErrNotFound", func(t *testing.T) {
		repo, mockPool := setupAuthRepoTest(t)
		mockPool.ExpectQuery("SELECT (.+) FROM users WHERE lower").
			WithArgs("nobody@b.com").WillReturnRows(pgxmock.NewRows(userRowColumns))

		_, err := repo.GetUserByEmail(ctx, "nobody@b.com")
		assert.ErrorIs(t, err, api.ErrNotFound)
		require.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestPostgresAuthRepo_CreateUser(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the stored identity", func(t *testing.T) {
		repo, mockPool := setupAuthRepoTest(t)
		userID := uuid.New()
		rows := pgxmock.NewRows(userRowColumns).
			AddRow(userID, "new@b.com", "$2a$10$hash", time.Now())
		mockPool.ExpectQuery("INSERT INTO users").
			WithArgs("new@b.com", "$2a$10$hash").WillReturnRows(rows)

		user, err := repo.CreateUser(ctx, "new@b.com", "$2a$10$hash")
		require.NoError(t, err)
		assert.Equal(t, userID, user.ID)
		require.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("duplicate email maps to ErrConflict", func(t *testing.T) {
		repo, mockPool := setupAuthRepoTest(t)
		mockPool.ExpectQuery("INSERT INTO users").
			WithArgs("dup@b.com", "$2a$10$hash").
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

		_, err := repo.CreateUser(ctx, "dup@b.com", "$2a$10$hash")
		assert.ErrorIs(t, err, api.ErrConflict)
		require.NoError(t, mockPool.ExpectationsWereMet())
	})
}
