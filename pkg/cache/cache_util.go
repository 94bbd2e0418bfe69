// Package cache is a thin namespaced view over the shared redis client.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned by Get for absent or expired keys.
var ErrMiss = errors.New("cache miss")

const keyPrefix = "pilotonotary"

type Cache struct {
	client redis.UniversalClient
}

// FromClient wraps the redis client the rate limiter already uses.
func FromClient(rdb redis.UniversalClient) *Cache {
	return &Cache{client: rdb}
}

// Key builds "pilotonotary:<namespace>:<key>".
func Key(namespace, key string) string {
	return strings.Join([]string{keyPrefix, namespace, key}, ":")
}

func (c *Cache) Set(ctx context.Context, namespace, key string, value interface{}, ttl time.Duration) error {
	if ttl <= 0 {
		// non-positive ttl: the entry is already stale
		return c.Delete(ctx, namespace, key)
	}
	if err := c.client.Set(ctx, Key(namespace, key), value, ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", namespace, err)
	}
	return nil
}

func (c *Cache) Get(ctx context.Context, namespace, key string) (string, error) {
	v, err := c.client.Get(ctx, Key(namespace, key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrMiss
	}
	if err != nil {
		return "", fmt.Errorf("cache get %s: %w", namespace, err)
	}
	return v, nil
}

func (c *Cache) Delete(ctx context.Context, namespace, key string) error {
	if err := c.client.Del(ctx, Key(namespace, key)).Err(); err != nil {
		return fmt.Errorf("cache delete %s: %w", namespace, err)
	}
	return nil
}
