package idempotency

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore records seen markers in Redis so deduplication survives
// restarts and is shared between replicas.
type RedisStore struct {
	client *redis.Client
	log    *slog.Logger
}

// NewRedisStore wraps the given Redis client.
func NewRedisStore(client *redis.Client, log *slog.Logger) *RedisStore {
	if log == nil {
		log = slog.Default()
	}

	return &RedisStore{
		client: client,
		log:    log,
	}
}

func (s *RedisStore) Remember(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	first, err := s.client.SetNX(ctx, redisKey(key), 1, ttl).Result()
	if err != nil {
		s.log.Error("failed to record seen marker", slog.String("key", key), slog.Any("error", err))
		return false, err
	}

	return first, nil
}

func redisKey(key string) string {
	return fmt.Sprintf("seen:%s", key)
}
