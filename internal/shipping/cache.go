package shipping

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sokoni-market/checkout-service-go/internal/checkout"
)

const keyPrefix = "shipping:prefill:"

// Cache stores the last shipping address a buyer entered so the next
// checkout can prefill the form. It is best-effort only and never a
// source of truth.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func (c *Cache) Put(ctx context.Context, userID string, info checkout.ShippingInfo) error {
	data, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("marshal shipping info: %w", err)
	}
	if err := c.client.Set(ctx, keyPrefix+userID, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache shipping info: %w", err)
	}
	return nil
}

// Get returns nil, nil on a cache miss.
func (c *Cache) Get(ctx context.Context, userID string) (*checkout.ShippingInfo, error) {
	data, err := c.client.Get(ctx, keyPrefix+userID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("read shipping info: %w", err)
	}

	var info checkout.ShippingInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("unmarshal shipping info: %w", err)
	}
	return &info, nil
}
