package kv

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Redis is the production Store, backed by a shared go-redis client.
type Redis struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedis connects a Redis-backed store and verifies connectivity.
func NewRedis(ctx context.Context, addr, password string, db int, logger *zap.Logger) (*Redis, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	logger.Info("Redis store connected", zap.String("addr", addr))
	return &Redis{client: rdb, logger: logger}, nil
}

// Client exposes the underlying go-redis client (shared with the job queue).
func (r *Redis) Client() *redis.Client { return r.client }

// Close releases the underlying client.
func (r *Redis) Close() error { return r.client.Close() }

// Get returns the value stored at key, with found=false for a missing key.
func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return v, true, nil
}

// Set overwrites the value at key with no expiry.
func (r *Redis) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}
