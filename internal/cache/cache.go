package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Unitive-Technologies/Retail-ERP-sub003/pkg/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Cache stores serialized lookup data such as dropdown lists.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}

// New returns a Redis-backed cache when an address is configured and a no-op cache otherwise.
func New(ctx context.Context, cfg config.RedisConfig, log *zap.Logger) (Cache, error) {
	if cfg.Addr == "" {
		log.Info("Redis not configured, dropdown cache disabled")
		return Noop{}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}

	log.Info("Connected to Redis", zap.String("addr", cfg.Addr), zap.Duration("ttl", cfg.TTL))
	return NewRedis(client, cfg.TTL), nil
}

// Redis keeps entries under the "erp:" prefix with a fixed TTL.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

func generateKey(key string) string {
	return "erp:" + key
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := r.client.Get(ctx, generateKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	return r.client.Set(ctx, generateKey(key), value, r.ttl).Err()
}

func (r *Redis) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, len(keys))
	for i, key := range keys {
		prefixed[i] = generateKey(key)
	}
	return r.client.Del(ctx, prefixed...).Err()
}

func (r *Redis) Close() error {
	return r.client.Close()
}

// Noop never stores anything.
type Noop struct{}

func (Noop) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (Noop) Set(context.Context, string, []byte) error          { return nil }
func (Noop) Delete(context.Context, ...string) error            { return nil }
func (Noop) Close() error                                       { return nil }
