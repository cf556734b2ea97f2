package cep

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "cep:"

// RedisCache keeps resolved addresses in Redis for a fixed TTL.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// NewRedisClient connects to addr and verifies the connection with a ping.
func NewRedisClient(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

func (c *RedisCache) Get(ctx context.Context, cep string) (*Address, bool, error) {
	raw, err := c.client.Get(ctx, keyPrefix+cep).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var addr Address
	if err := json.Unmarshal(raw, &addr); err != nil {
		return nil, false, fmt.Errorf("decode cached address: %w", err)
	}
	return &addr, true, nil
}

func (c *RedisCache) Set(ctx context.Context, addr *Address) error {
	raw, err := json.Marshal(addr)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, keyPrefix+addr.CEP, raw, c.ttl).Err()
}
