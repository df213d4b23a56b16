package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ContractCache implements usecase.ContractCache using Redis.
type ContractCache struct {
	client *redis.Client
	prefix string
}

// NewContractCache creates a new ContractCache.
func NewContractCache(client *redis.Client) *ContractCache {
	return &ContractCache{
		client: client,
		prefix: "contract:",
	}
}

// Get returns the cached number. A miss is not an error.
func (c *ContractCache) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := c.client.Get(ctx, c.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

// Set stores a number with TTL.
func (c *ContractCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.client.Set(ctx, c.prefix+key, value, ttl).Err()
}
