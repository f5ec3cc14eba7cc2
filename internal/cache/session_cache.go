// Package cache provides the optional Redis-backed session cache.
package cache

import (
	"context"
	"time"

	"github.com/dftlabs-home/oyoagro-api/internal/config"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const sessionPrefix = "session:"

// RedisSessionCache stores a token -> account id mapping with the token's
// TTL. It is a lookup accelerator for the verify path only; revocation
// authority stays with the database row.
type RedisSessionCache struct {
	client *redis.Client
}

func NewRedisSessionCache(cfg *config.RedisConfig) *RedisSessionCache {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.GetAddr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &RedisSessionCache{client: client}
}

func (c *RedisSessionCache) Set(token string, userID uuid.UUID, ttl time.Duration) error {
	return c.client.Set(context.Background(), sessionPrefix+token, userID.String(), ttl).Err()
}

func (c *RedisSessionCache) Get(token string) (uuid.UUID, bool, error) {
	val, err := c.client.Get(context.Background(), sessionPrefix+token).Result()
	if err == redis.Nil {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, err
	}
	id, err := uuid.Parse(val)
	if err != nil {
		return uuid.Nil, false, nil
	}
	return id, true, nil
}

func (c *RedisSessionCache) Invalidate(token string) error {
	return c.client.Del(context.Background(), sessionPrefix+token).Err()
}

func (c *RedisSessionCache) Close() error {
	return c.client.Close()
}
