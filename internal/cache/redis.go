package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/actuallystonmai/group-dining-service/internal/domain"
)

const (
	defaultTTL = 10 * time.Minute
	keyPrefix  = "venues:"
)

type Cache struct {
	client *redis.Client
}

func NewCache(client *redis.Client) *Cache {
	return &Cache{client: client}
}

func buildKey(key string) string {
	return keyPrefix + key
}

// Get candidates from cache
func (c *Cache) Get(ctx context.Context, key string) ([]domain.Venue, bool, error) {
	k := buildKey(key)
	val, err := c.client.Get(ctx, k).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get candidates from cache: %w", err)
	}

	var venues []domain.Venue
	if err := json.Unmarshal(val, &venues); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal candidates %s: %w", k, err)
	}
	return venues, true, nil
}

// Store candidates in cache
func (c *Cache) Set(ctx context.Context, key string, venues []domain.Venue, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	val, err := json.Marshal(venues)
	if err != nil {
		return fmt.Errorf("failed to marshal candidates: %w", err)
	}

	if err := c.client.Set(ctx, buildKey(key), val, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set candidates in cache: %w", err)
	}
	return nil
}

// Flush removes every cached candidate list, returning how many were deleted.
func (c *Cache) Flush(ctx context.Context) (int, error) {
	deleted := 0
	iter := c.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return deleted, fmt.Errorf("cache delete %s: %w", iter.Val(), err)
		}
		deleted++
	}
	return deleted, iter.Err()
}

// Ping connectivity
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
