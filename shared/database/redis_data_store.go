package database

import (
	"context"
	"errors"
	"fmt"

	"butterfly-story/shared/interfaces"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Compile-time check to ensure redisDataStore implements DataStore
var _ interfaces.DataStore = (*redisDataStore)(nil)

type redisDataStore struct {
	client  *redis.Client
	prefix  string
	address string
	logger  *zap.Logger
}

// NewRedisDataStore creates a Redis-backed DataStore.
// Every key is stored as <prefix><key>; the prefix lets several stories share one Redis.
func NewRedisDataStore(client *redis.Client, prefix, address string, logger *zap.Logger) interfaces.DataStore {
	return &redisDataStore{
		client:  client,
		prefix:  prefix,
		address: address,
		logger:  logger.Named("RedisDataStore"),
	}
}

func (r *redisDataStore) IsAvailable(ctx context.Context) (bool, error) {
	if err := r.client.Ping(ctx).Err(); err != nil {
		r.logger.Warn("Redis ping failed", zap.Error(err))
		return false, nil
	}
	return true, nil
}

// GetData возвращает пустой срез для отсутствующего ключа.
func (r *redisDataStore) GetData(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []byte{}, nil
		}
		r.logger.Error("Failed to get data from redis", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return val, nil
}

func (r *redisDataStore) SetData(ctx context.Context, key string, value []byte) error {
	// Без TTL: данные append-only и живут столько же, сколько история.
	if err := r.client.Set(ctx, r.prefix+key, value, 0).Err(); err != nil {
		r.logger.Error("Failed to set data in redis", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	r.logger.Debug("Data stored in redis", zap.String("key", key), zap.Int("bytes", len(value)))
	return nil
}

func (r *redisDataStore) Address() string { return r.address }
