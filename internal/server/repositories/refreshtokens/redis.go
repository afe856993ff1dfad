package refreshtokens

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const DefaultRedisPrefix = "authkeeper:refresh:"

// RedisRepository keeps the slot under prefix+userID and lets it expire
// together with the refresh token. It has no view of the users table, so Get
// on an unknown id reports an empty slot.
type RedisRepository struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
}

func NewRedisRepository(client redis.Cmdable, prefix string, ttl time.Duration) *RedisRepository {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisRepository{client: client, prefix: prefix, ttl: ttl}
}

func (r *RedisRepository) key(userID string) string {
	return r.prefix + userID
}

func (r *RedisRepository) Set(ctx context.Context, userID, token string) error {
	if err := r.client.Set(ctx, r.key(userID), token, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	return nil
}

func (r *RedisRepository) Clear(ctx context.Context, userID string) error {
	if err := r.client.Del(ctx, r.key(userID)).Err(); err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	return nil
}

func (r *RedisRepository) Get(ctx context.Context, userID string) (string, error) {
	token, err := r.client.Get(ctx, r.key(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("redis error: %w", err)
	}
	return token, nil
}
