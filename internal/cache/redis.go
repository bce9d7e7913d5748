package cache

import (
	"context"
	"errors"
	"time"

	"github.com/golang/snappy"
	redis "github.com/redis/go-redis/v9"
)

// RedisStore shares cached summaries between replicas. Values are stored
// snappy-compressed.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	decoded, err := snappy.Decode(nil, value)
	if err != nil {
		// Unreadable entries count as a miss and are overwritten on the next Set.
		return nil, false, nil
	}
	return decoded, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return s.client.Set(ctx, key, snappy.Encode(nil, value), ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.client.Del(ctx, keys...).Err()
}
