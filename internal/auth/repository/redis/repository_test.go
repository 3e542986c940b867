package redis_test

import (
	"context"
	"testing"
	"time"

	repo "github.com/AnthoniusHendriyanto/blog-auth-service/internal/auth/repository/redis"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T, ttl time.Duration) (*repo.RefreshSessionRepository, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})

	return repo.NewRefreshSessionRepository(rdb, ttl), mr
}

func TestUpsertAndFindExact(t *testing.T) {
	r, _ := newTestRepository(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, "user-123", "token-1"))

	found, err := r.FindExact(ctx, "user-123", "token-1")
	require.NoError(t, err)
	assert.True(t, found)

	found, err = r.FindExact(ctx, "user-123", "token-2")
	require.NoError(t, err)
	assert.False(t, found)

	found, err = r.FindExact(ctx, "user-456", "token-1")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestUpsert_OverwritesPreviousToken(t *testing.T) {
	r, mr := newTestRepository(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, "user-123", "token-1"))
	require.NoError(t, r.Upsert(ctx, "user-123", "token-2"))

	found, err := r.FindExact(ctx, "user-123", "token-1")
	require.NoError(t, err)
	assert.False(t, found, "rotated-out token must not match")

	found, err = r.FindExact(ctx, "user-123", "token-2")
	require.NoError(t, err)
	assert.True(t, found)

	assert.False(t, mr.Exists("refresh:token:token-1"))
	assert.True(t, mr.Exists("refresh:token:token-2"))
}

func TestUpsert_SetsTTL(t *testing.T) {
	r, mr := newTestRepository(t, time.Hour)

	require.NoError(t, r.Upsert(context.Background(), "user-123", "token-1"))

	assert.Equal(t, time.Hour, mr.TTL("refresh:user:user-123"))
	assert.Equal(t, time.Hour, mr.TTL("refresh:token:token-1"))

	mr.FastForward(time.Hour + time.Second)

	found, err := r.FindExact(context.Background(), "user-123", "token-1")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestDeleteByToken(t *testing.T) {
	r, mr := newTestRepository(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, "user-123", "token-1"))
	require.NoError(t, r.DeleteByToken(ctx, "token-1"))

	found, err := r.FindExact(ctx, "user-123", "token-1")
	require.NoError(t, err)
	assert.False(t, found)
	assert.False(t, mr.Exists("refresh:user:user-123"))

	// Idempotent
	assert.NoError(t, r.DeleteByToken(ctx, "token-1"))
	assert.NoError(t, r.DeleteByToken(ctx, "never-issued"))
}

func TestDeleteByToken_StaleTokenKeepsCurrentSession(t *testing.T) {
	r, _ := newTestRepository(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, "user-123", "token-1"))
	require.NoError(t, r.Upsert(ctx, "user-123", "token-2"))
	require.NoError(t, r.DeleteByToken(ctx, "token-1"))

	found, err := r.FindExact(ctx, "user-123", "token-2")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestStoreUnavailable(t *testing.T) {
	r, mr := newTestRepository(t, time.Hour)
	mr.Close()

	ctx := context.Background()
	assert.Error(t, r.Upsert(ctx, "user-123", "token-1"))
	_, err := r.FindExact(ctx, "user-123", "token-1")
	assert.Error(t, err)
	assert.Error(t, r.DeleteByToken(ctx, "token-1"))
}

func TestSessionsOfDifferentUsersAreIndependent(t *testing.T) {
	r, mr := newTestRepository(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, "user-123", "token-a"))
	require.NoError(t, r.Upsert(ctx, "user-456", "token-b"))
	require.NoError(t, r.Upsert(ctx, "user-123", "token-c"))
	require.NoError(t, r.DeleteByToken(ctx, "token-c"))

	found, err := r.FindExact(ctx, "user-456", "token-b")
	require.NoError(t, err)
	assert.True(t, found)

	stored, err := mr.Get("refresh:token:token-b")
	require.NoError(t, err)
	assert.Equal(t, "user-456", stored)
	assert.False(t, mr.Exists("refresh:token:token-a"))
	assert.False(t, mr.Exists("refresh:user:user-123"))
}
