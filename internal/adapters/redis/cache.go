package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/rafaelleal24/product-catalog/internal/core/port"
)

// Cache stores JSON-encoded values under "<prefix>:<key>".
type Cache[T any] struct {
	rdb    *goredis.Client
	prefix string
}

func NewCache[T any](client *Client, prefix string) port.CachePort[T] {
	return &Cache[T]{rdb: client.rdb, prefix: prefix}
}

func (c *Cache[T]) key(id string) string {
	return c.prefix + ":" + id
}

func (c *Cache[T]) Get(ctx context.Context, id string) (*T, error) {
	data, err := c.rdb.Get(ctx, c.key(id)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache get %s: %w", id, err)
	}

	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		return nil, fmt.Errorf("cache decode %s: %w", id, err)
	}
	return &value, nil
}

func (c *Cache[T]) Set(ctx context.Context, id string, value *T, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", id, err)
	}
	return c.rdb.Set(ctx, c.key(id), data, ttl).Err()
}

func (c *Cache[T]) SetNX(ctx context.Context, id string, value *T, ttl time.Duration) (bool, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return false, fmt.Errorf("cache encode %s: %w", id, err)
	}
	return c.rdb.SetNX(ctx, c.key(id), data, ttl).Result()
}

func (c *Cache[T]) Del(ctx context.Context, id string) error {
	return c.rdb.Del(ctx, c.key(id)).Err()
}
