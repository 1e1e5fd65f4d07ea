package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dressly/storefront/internal/domain"
)

const cacheKeyPrefix = "product:"

// ProductSource loads a product by ID.
type ProductSource interface {
	GetProduct(ctx context.Context, productID string) (*domain.Product, error)
}

// CachedClient wraps a ProductSource with a Redis read-through cache.
// Cache failures are logged and degrade to the underlying source.
type CachedClient struct {
	source ProductSource
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedClient creates a read-through product cache.
func NewCachedClient(source ProductSource, client *redis.Client, ttl time.Duration, logger *slog.Logger) *CachedClient {
	return &CachedClient{
		source: source,
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// GetProduct returns the cached product when present, otherwise fetches it
// from the source and stores the result.
func (c *CachedClient) GetProduct(ctx context.Context, productID string) (*domain.Product, error) {
	key := cacheKeyPrefix + productID

	data, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var product domain.Product
		if err := json.Unmarshal(data, &product); err == nil {
			return &product, nil
		}
		// Corrupt entry; fall through to the source and overwrite.
		c.logger.WarnContext(ctx, "discarding corrupt product cache entry",
			slog.String("product_id", productID),
		)
	} else if err != redis.Nil {
		c.logger.WarnContext(ctx, "product cache read failed",
			slog.String("product_id", productID),
			slog.String("error", err.Error()),
		)
	}

	product, err := c.source.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(product); err == nil {
		if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.logger.WarnContext(ctx, "product cache write failed",
				slog.String("product_id", productID),
				slog.String("error", err.Error()),
			)
		}
	} else {
		return nil, fmt.Errorf("marshal product for cache: %w", err)
	}

	return product, nil
}

// Invalidate drops a product from the cache.
func (c *CachedClient) Invalidate(ctx context.Context, productID string) error {
	if err := c.client.Del(ctx, cacheKeyPrefix+productID).Err(); err != nil {
		return fmt.Errorf("redis del product: %w", err)
	}
	return nil
}
