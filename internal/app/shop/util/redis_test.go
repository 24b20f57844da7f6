package util

import (
	"context"
	"testing"
	"time"

	"orderservice/internal/app/shop/entity"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*RedisCategoryCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisCategoryCache(client), mr
}

func TestRedisCategoryCache_MissThenHit(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	_, err := cache.GetCategories(ctx)
	assert.ErrorIs(t, err, ErrCacheMiss)

	categories := []entity.Category{
		{ID: 224, Name: "Смартфоны"},
		{ID: 15, Name: "Аксессуары"},
	}

	require.NoError(t, cache.SetCategories(ctx, categories, time.Minute))

	got, err := cache.GetCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, categories, got)
}

func TestRedisCategoryCache_TTLExpires(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.SetCategories(ctx, []entity.Category{{ID: 1, Name: "x"}}, time.Minute))

	mr.FastForward(2 * time.Minute)

	_, err := cache.GetCategories(ctx)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisCategoryCache_Invalidate(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.SetCategories(ctx, []entity.Category{{ID: 1, Name: "x"}}, time.Minute))
	require.NoError(t, cache.Invalidate(ctx))

	_, err := cache.GetCategories(ctx)
	assert.ErrorIs(t, err, ErrCacheMiss)
}
