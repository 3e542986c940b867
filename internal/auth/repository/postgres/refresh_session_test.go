package postgres_test

import (
	"context"
	"fmt"
	"regexp"
	"testing"

	repo "github.com/AnthoniusHendriyanto/blog-auth-service/internal/auth/repository/postgres"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestUpsert covers the Upsert method.
func TestUpsert(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	r := repo.NewPostgresRepository(mock)
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO refresh_sessions").
			WithArgs("user-123", "token").
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		assert.NoError(t, r.Upsert(ctx, "user-123", "token"))
	})

	t.Run("database error", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO refresh_sessions").
			WithArgs("user-123", "token").
			WillReturnError(fmt.Errorf("db error"))

		assert.Error(t, r.Upsert(ctx, "user-123", "token"))
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestFindExact covers the FindExact method.
func TestFindExact(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	r := repo.NewPostgresRepository(mock)
	ctx := context.Background()
	query := regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM refresh_sessions WHERE user_id = $1 AND token = $2)")

	t.Run("match", func(t *testing.T) {
		mock.ExpectQuery(query).
			WithArgs("user-123", "current-token").
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

		found, err := r.FindExact(ctx, "user-123", "current-token")
		require.NoError(t, err)
		assert.True(t, found)
	})

	t.Run("rotated out", func(t *testing.T) {
		mock.ExpectQuery(query).
			WithArgs("user-123", "old-token").
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

		found, err := r.FindExact(ctx, "user-123", "old-token")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("database error", func(t *testing.T) {
		mock.ExpectQuery(query).
			WithArgs("user-123", "current-token").
			WillReturnError(fmt.Errorf("db error"))

		_, err := r.FindExact(ctx, "user-123", "current-token")
		assert.Error(t, err)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestDeleteByToken covers the DeleteByToken method.
func TestDeleteByToken(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	r := repo.NewPostgresRepository(mock)
	ctx := context.Background()

	t.Run("deletes existing", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM refresh_sessions").
			WithArgs("token").
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		assert.NoError(t, r.DeleteByToken(ctx, "token"))
	})

	t.Run("unknown token is not an error", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM refresh_sessions").
			WithArgs("missing").
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		assert.NoError(t, r.DeleteByToken(ctx, "missing"))
	})

	t.Run("database error", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM refresh_sessions").
			WithArgs("token").
			WillReturnError(fmt.Errorf("db error"))

		assert.Error(t, r.DeleteByToken(ctx, "token"))
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
