// Package cache provides a Redis-backed catalog cache.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/andresfq/mercadito/internal/model"
)

const catalogKey = "catalog:published"

// CatalogCache stores the published catalog as one JSON blob under a fixed
// key. Writers invalidate instead of updating in place.
type CatalogCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient connects and pings, closing the client on failure.
func NewRedisClient(addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

// NewCatalogCache wraps an established client.
func NewCatalogCache(client *redis.Client, ttl time.Duration) *CatalogCache {
	return &CatalogCache{client: client, ttl: ttl}
}

// Get returns the cached catalog, or (nil, nil) on a miss.
func (c *CatalogCache) Get(ctx context.Context) ([]model.Product, error) {
	val, err := c.client.Get(ctx, catalogKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get catalog from redis: %w", err)
	}

	var products []model.Product
	if err := json.Unmarshal([]byte(val), &products); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached catalog: %w", err)
	}
	return products, nil
}

// Set replaces the cached catalog with the given TTL.
func (c *CatalogCache) Set(ctx context.Context, products []model.Product) error {
	blob, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}
	if err := c.client.Set(ctx, catalogKey, blob, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set catalog in redis: %w", err)
	}
	return nil
}

// Invalidate drops the cached catalog.
func (c *CatalogCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, catalogKey).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("failed to delete catalog from redis: %w", err)
	}
	return nil
}

// Close releases the underlying client.
func (c *CatalogCache) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}
