package util

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"orderservice/internal/app/shop/entity"
	"orderservice/pkg/metrics"

	"github.com/redis/go-redis/v9"
)

const categoriesCacheKey = "catalog:categories"

// ErrCacheMiss ключ отсутствует в кеше
var ErrCacheMiss = errors.New("cache miss")

// RedisCategoryCache кеширует список категорий в Redis
type RedisCategoryCache struct {
	client *redis.Client
}

// NewRedisCategoryCache создает кеш категорий
func NewRedisCategoryCache(client *redis.Client) *RedisCategoryCache {
	return &RedisCategoryCache{client: client}
}

// GetCategories читает категории из кеша
func (c *RedisCategoryCache) GetCategories(ctx context.Context) ([]entity.Category, error) {
	data, err := c.client.Get(ctx, categoriesCacheKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.RedisCacheMisses.WithLabelValues("catalog").Inc()
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to get categories from cache: %w", err)
	}

	var categories []entity.Category
	if err := json.Unmarshal(data, &categories); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached categories: %w", err)
	}

	metrics.RedisCacheHits.WithLabelValues("catalog").Inc()
	return categories, nil
}

// SetCategories сохраняет категории в кеш с TTL
func (c *RedisCategoryCache) SetCategories(ctx context.Context, categories []entity.Category, ttl time.Duration) error {
	data, err := json.Marshal(categories)
	if err != nil {
		return fmt.Errorf("failed to marshal categories: %w", err)
	}

	if err := c.client.Set(ctx, categoriesCacheKey, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set categories cache: %w", err)
	}

	return nil
}

// Invalidate сбрасывает кеш категорий
// Вызывается после импорта прайс-листа
func (c *RedisCategoryCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, categoriesCacheKey).Err(); err != nil {
		return fmt.Errorf("failed to invalidate categories cache: %w", err)
	}
	return nil
}
