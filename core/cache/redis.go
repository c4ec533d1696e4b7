package cache

import (
	"context"
	"date-booker/core/constants"
	"date-booker/core/logger"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Cache interface {
	IncrementLoginAttempt(ctx context.Context, key string) error
	IsLoginBlocked(ctx context.Context, key string) (bool, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
	Del(ctx context.Context, key string) error
	AddToTokenBlacklist(ctx context.Context, tokenID string, ttl time.Duration) error
	IsTokenBlacklisted(ctx context.Context, tokenID string) (bool, error)
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type Options struct {
	MaxLoginAttempts int
	BlockDuration    time.Duration
}

type RedisCache struct {
	client *redis.Client
	opts   Options
}

func NewRedisClient(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, constants.DefaultTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Error("Cache:NewRedisClient:Ping:Error", "error", err, "addr", cfg.Addr)
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	logger.Info("Redis initialized", "addr", cfg.Addr, "db", cfg.DB)
	return client, nil
}

func NewRedisCache(client *redis.Client, opts Options) *RedisCache {
	if opts.MaxLoginAttempts <= 0 {
		opts.MaxLoginAttempts = constants.MaxJoinAttempts
	}
	if opts.BlockDuration <= 0 {
		opts.BlockDuration = constants.BlockDuration
	}
	return &RedisCache{client: client, opts: opts}
}

// IncrementLoginAttempt counts a failed attempt. The counter lives for the
// block duration after the first failure.
func (c *RedisCache) IncrementLoginAttempt(ctx context.Context, key string) error {
	count, err := c.client.Incr(ctx, key).Result()
	if err != nil {
		return err
	}
	if count == 1 {
		return c.client.Expire(ctx, key, c.opts.BlockDuration).Err()
	}
	return nil
}

func (c *RedisCache) IsLoginBlocked(ctx context.Context, key string) (bool, error) {
	count, err := c.client.Get(ctx, key).Int()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return count >= c.opts.MaxLoginAttempts, nil
}

func (c *RedisCache) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return c.client.Expire(ctx, key, ttl).Err()
}

func (c *RedisCache) Del(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

func (c *RedisCache) AddToTokenBlacklist(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return c.client.Set(ctx, fmt.Sprintf(constants.RedisKeyTokenBlacklist, tokenID), 1, ttl).Err()
}

func (c *RedisCache) IsTokenBlacklisted(ctx context.Context, tokenID string) (bool, error) {
	n, err := c.client.Exists(ctx, fmt.Sprintf(constants.RedisKeyTokenBlacklist, tokenID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
