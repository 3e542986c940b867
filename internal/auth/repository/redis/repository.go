package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	userKeyPrefix  = "refresh:user:"
	tokenKeyPrefix = "refresh:token:"
)

// upsertScript replaces the user's token and drops the reverse entry of the
// token it replaced, so a rotated-out token cannot be found by DeleteByToken.
const upsertScript = `
local old = redis.call("GET", KEYS[1])
if old and old ~= ARGV[1] then
  redis.call("DEL", ARGV[4] .. old)
end
redis.call("SET", KEYS[1], ARGV[1], "PX", ARGV[3])
redis.call("SET", KEYS[2], ARGV[2], "PX", ARGV[3])
return 1
`

const deleteScript = `
local uid = redis.call("GET", KEYS[1])
if not uid then
  return 0
end
redis.call("DEL", KEYS[1])
local userKey = ARGV[2] .. uid
if redis.call("GET", userKey) == ARGV[1] then
  redis.call("DEL", userKey)
end
return 1
`

var (
	upsertLua = redis.NewScript(upsertScript)
	deleteLua = redis.NewScript(deleteScript)
)

// RefreshSessionRepository stores one refresh token per user in Redis. Entries
// expire together with the refresh token they hold.
//
// The scripts derive keys from stored values, so they need a single-node
// client; Redis Cluster is not supported.
type RefreshSessionRepository struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRefreshSessionRepository(rdb *redis.Client, ttl time.Duration) *RefreshSessionRepository {
	return &RefreshSessionRepository{rdb: rdb, ttl: ttl}
}

func (r *RefreshSessionRepository) Upsert(ctx context.Context, userID, token string) error {
	keys := []string{userKeyPrefix + userID, tokenKeyPrefix + token}
	err := upsertLua.Run(ctx, r.rdb, keys, token, userID, r.ttl.Milliseconds(), tokenKeyPrefix).Err()
	if err != nil {
		return fmt.Errorf("failed to upsert refresh token: %w", err)
	}
	return nil
}

func (r *RefreshSessionRepository) FindExact(ctx context.Context, userID, token string) (bool, error) {
	stored, err := r.rdb.Get(ctx, userKeyPrefix+userID).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to find refresh token: %w", err)
	}
	return stored == token, nil
}

func (r *RefreshSessionRepository) DeleteByToken(ctx context.Context, token string) error {
	err := deleteLua.Run(ctx, r.rdb, []string{tokenKeyPrefix + token}, token, userKeyPrefix).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("failed to delete refresh token: %w", err)
	}
	return nil
}
