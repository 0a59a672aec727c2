// internal/agent/session/redis.go
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "bazaar-workers/internal/common/errors"
)

const keyPrefix = "ai:context:"

// DefaultTTL bounds how long a half-complete command stays answerable.
const DefaultTTL = 5 * time.Minute

// RedisStore keeps pending context in Redis with a TTL, so stale
// conversations expire on their own and multiple worker instances see the
// same state.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Get(ctx context.Context, sessionID string) (*PendingContext, error) {
	raw, err := s.client.Get(ctx, keyPrefix+sessionID).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewContextStoreFailedError(fmt.Errorf("get pending context for session %s: %w", sessionID, err))
	}

	var pc PendingContext
	if err := json.Unmarshal([]byte(raw), &pc); err != nil {
		// Corrupt state is unrecoverable for this session; drop it.
		_ = s.client.Del(ctx, keyPrefix+sessionID).Err()
		return nil, nil
	}
	return &pc, nil
}

func (s *RedisStore) Put(ctx context.Context, sessionID string, pc PendingContext) error {
	raw, err := json.Marshal(pc)
	if err != nil {
		return apperrors.NewContextStoreFailedError(fmt.Errorf("marshal pending context: %w", err))
	}
	if err := s.client.Set(ctx, keyPrefix+sessionID, raw, s.ttl).Err(); err != nil {
		return apperrors.NewContextStoreFailedError(fmt.Errorf("store pending context for session %s: %w", sessionID, err))
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, keyPrefix+sessionID).Err(); err != nil {
		return apperrors.NewContextStoreFailedError(fmt.Errorf("clear pending context for session %s: %w", sessionID, err))
	}
	return nil
}
