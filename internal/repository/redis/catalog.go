package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/alex90271/stripecheckout/pkg/errors"

	"github.com/alex90271/stripecheckout/internal/domain"
)

const (
	productsKey = "catalog:products"
	shippingKey = "catalog:shipping_rate"
)

// CatalogCache implements repository.CatalogCache using Redis. Products and
// the shipping rate expire independently.
type CatalogCache struct {
	client      *redis.Client
	productTTL  time.Duration
	shippingTTL time.Duration
}

// NewCatalogCache creates a new Redis-backed catalog cache.
func NewCatalogCache(client *redis.Client, productTTL, shippingTTL time.Duration) *CatalogCache {
	return &CatalogCache{
		client:      client,
		productTTL:  productTTL,
		shippingTTL: shippingTTL,
	}
}

// GetProducts returns the cached product list, or ErrNotFound on a miss.
func (c *CatalogCache) GetProducts(ctx context.Context) ([]domain.Product, error) {
	data, err := c.client.Get(ctx, productsKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("redis get products: %w", err)
	}

	var products []domain.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("unmarshal products: %w", err)
	}
	return products, nil
}

// SetProducts stores the product list with the product TTL.
func (c *CatalogCache) SetProducts(ctx context.Context, products []domain.Product) error {
	data, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("marshal products: %w", err)
	}

	if err := c.client.Set(ctx, productsKey, data, c.productTTL).Err(); err != nil {
		return fmt.Errorf("redis set products: %w", err)
	}
	return nil
}

// GetShippingRate returns the cached shipping rate, or ErrNotFound on a miss.
func (c *CatalogCache) GetShippingRate(ctx context.Context) (*domain.ShippingRate, error) {
	data, err := c.client.Get(ctx, shippingKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("redis get shipping rate: %w", err)
	}

	var rate domain.ShippingRate
	if err := json.Unmarshal(data, &rate); err != nil {
		return nil, fmt.Errorf("unmarshal shipping rate: %w", err)
	}
	return &rate, nil
}

// SetShippingRate stores the shipping rate with the shipping TTL.
func (c *CatalogCache) SetShippingRate(ctx context.Context, rate *domain.ShippingRate) error {
	data, err := json.Marshal(rate)
	if err != nil {
		return fmt.Errorf("marshal shipping rate: %w", err)
	}

	if err := c.client.Set(ctx, shippingKey, data, c.shippingTTL).Err(); err != nil {
		return fmt.Errorf("redis set shipping rate: %w", err)
	}
	return nil
}

// Invalidate drops both catalog entries.
func (c *CatalogCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, productsKey, shippingKey).Err(); err != nil {
		return fmt.Errorf("redis del catalog: %w", err)
	}
	return nil
}
