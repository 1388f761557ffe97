package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"storefront-service/internal/models"

	"github.com/go-redis/redis/v8"
)

// Client is a read-through cache for catalog detail pages. All callers must
// treat it as best-effort and fall back to the store on any error.
type Client struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewClient connects to Redis and verifies the connection
func NewClient(addr, password string, db int, ttl time.Duration) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb, ttl: ttl}, nil
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

func productKey(slug string) string {
	return fmt.Sprintf("product:slug:%s", slug)
}

// GetProduct returns the cached product for slug, or (nil, nil) on a miss
func (c *Client) GetProduct(ctx context.Context, slug string) (*models.Product, error) {
	data, err := c.rdb.Get(ctx, productKey(slug)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var product models.Product
	if err := json.Unmarshal(data, &product); err != nil {
		return nil, fmt.Errorf("corrupt cache entry for %s: %w", slug, err)
	}
	return &product, nil
}

// SetProduct caches a product detail snapshot under its slug
func (c *Client) SetProduct(ctx context.Context, product *models.Product) error {
	data, err := json.Marshal(product)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, productKey(product.Slug), data, c.ttl).Err()
}

// InvalidateProduct drops the cached entry for slug after a mutation
func (c *Client) InvalidateProduct(ctx context.Context, slug string) error {
	return c.rdb.Del(ctx, productKey(slug)).Err()
}
