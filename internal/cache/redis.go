package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Slots in Redis outlive their logical TTL so read paths can still fall back
// to stale data after transport failures. This is housekeeping only.
const redisSlotExpiry = 24 * time.Hour

// RedisStore keeps slots in Redis so several facade instances share one
// cache. A slot is one JSON value, so replacement stays atomic. Sequence
// tokens stay process-local, so only one instance may write a given
// collection; the others read.
type RedisStore[T any] struct {
	client *redis.Client
}

func NewRedisStore[T any](client *redis.Client) *RedisStore[T] {
	return &RedisStore[T]{client: client}
}

func (s *RedisStore[T]) Load(ctx context.Context, key string) (Slot[T], bool, error) {
	var slot Slot[T]
	val, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return slot, false, nil
	}
	if err != nil {
		return slot, false, fmt.Errorf("failed to get cache slot: %w", err)
	}
	if err := json.Unmarshal(val, &slot); err != nil {
		return slot, false, fmt.Errorf("failed to unmarshal cache slot: %w", err)
	}
	return slot, true, nil
}

func (s *RedisStore[T]) Save(ctx context.Context, key string, slot Slot[T]) error {
	data, err := json.Marshal(slot)
	if err != nil {
		return fmt.Errorf("failed to marshal cache slot: %w", err)
	}
	if err := s.client.Set(ctx, key, data, redisSlotExpiry).Err(); err != nil {
		return fmt.Errorf("failed to set cache slot: %w", err)
	}
	return nil
}

func (s *RedisStore[T]) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete cache slot: %w", err)
	}
	return nil
}

// InitRedis initializes the Redis client from config. Returns nil when Redis
// is unreachable; callers fall back to the memory store.
func InitRedis(logger *zap.Logger) *redis.Client {
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", "6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)

	addr := viper.GetString("redis.host") + ":" + viper.GetString("redis.port")
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: viper.GetString("redis.password"),
		DB:       viper.GetInt("redis.db"),
	})

	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Warn("Redis connection failed, continuing with in-memory cache", zap.Error(err))
		return nil
	}

	logger.Info("Redis connection established", zap.String("addr", addr))
	return rdb
}
