package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/RichMarin19/fast-life-sub000/internal/config"
)

// RedisClient wraps redis.Client for caching and tracker state
type RedisClient struct {
	*redis.Client
}

// NewRedisClient creates a new Redis client
func NewRedisClient(cfg config.RedisConfig) (*RedisClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test the connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisClient{Client: rdb}, nil
}

// CacheRules caches the full rule configuration as JSON
func (r *RedisClient) CacheRules(ctx context.Context, rules interface{}) error {
	data, err := json.Marshal(rules)
	if err != nil {
		return err
	}
	return r.Set(ctx, "settings:rules", data, time.Hour).Err()
}

// GetCachedRules retrieves the cached rule configuration
func (r *RedisClient) GetCachedRules(ctx context.Context) (string, error) {
	return r.Get(ctx, "settings:rules").Result()
}

// InvalidateRules drops the cached rule configuration after a settings write
func (r *RedisClient) InvalidateRules(ctx context.Context) error {
	return r.Del(ctx, "settings:rules").Err()
}

// Close closes the Redis connection
func (r *RedisClient) Close() error {
	return r.Client.Close()
}
