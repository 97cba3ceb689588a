package subscriber

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/newscluster/telegram-bot/internal/domain"
)

// Cache provides Redis-backed caching for subscriber profiles.
// Callers may pass a nil cache; all operations become no-ops.
type Cache struct {
	client *redis.Client
}

// NewCache constructs a subscriber cache backed by the provided Redis client.
func NewCache(client *redis.Client) *Cache {
	return &Cache{client: client}
}

// Get fetches a cached subscriber profile if it exists.
func (c *Cache) Get(ctx context.Context, id int64) (*domain.Subscriber, error) {
	if c == nil || c.client == nil {
		return nil, nil
	}

	data, err := c.client.Get(ctx, cacheKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cached subscriber: %w", err)
	}

	var sub domain.Subscriber
	if err := json.Unmarshal(data, &sub); err != nil {
		return nil, fmt.Errorf("decode cached subscriber: %w", err)
	}

	return &sub, nil
}

// Set stores the subscriber profile in cache for the provided TTL.
func (c *Cache) Set(ctx context.Context, id int64, sub *domain.Subscriber, ttl time.Duration) error {
	if c == nil || c.client == nil || sub == nil {
		return nil
	}

	payload, err := json.Marshal(sub)
	if err != nil {
		return fmt.Errorf("encode subscriber for cache: %w", err)
	}

	if err := c.client.Set(ctx, cacheKey(id), payload, ttl).Err(); err != nil {
		return fmt.Errorf("set cached subscriber: %w", err)
	}

	return nil
}

// Invalidate removes the cached profile entry if it exists.
func (c *Cache) Invalidate(ctx context.Context, id int64) error {
	if c == nil || c.client == nil {
		return nil
	}

	if err := c.client.Del(ctx, cacheKey(id)).Err(); err != nil {
		return fmt.Errorf("delete cached subscriber: %w", err)
	}

	return nil
}

func cacheKey(id int64) string {
	return fmt.Sprintf("subscriber:%d", id)
}
