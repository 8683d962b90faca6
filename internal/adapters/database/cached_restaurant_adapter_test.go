package database_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nagoyameshi/backend/internal/adapters/cache"
	"github.com/nagoyameshi/backend/internal/adapters/database"
	"github.com/nagoyameshi/backend/internal/domain/entities"
	"github.com/nagoyameshi/backend/internal/domain/providers"
	"github.com/nagoyameshi/backend/internal/domain/repositories"
	redisclient "github.com/nagoyameshi/backend/internal/infrastructure/clients/redis"
)

type countingRestaurants struct {
	repositories.RestaurantRepository
	calls int
}

func (c *countingRestaurants) GetByID(ctx context.Context, id string) (*entities.Restaurant, error) {
	c.calls++
	return &entities.Restaurant{ID: id, Name: "山本屋本店", OpeningTime: entities.NewTimeOfDay(11, 0, 0)}, nil
}

type countingReviews struct {
	repositories.ReviewRepository
	calls int
}

func (c *countingReviews) Summary(ctx context.Context, restaurantID string) (float64, int, error) {
	c.calls++
	return 4.5, 2, nil
}

func newRedisCache(t *testing.T) (providers.CacheProvider, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redisclient.NewClientFromAddr(mr.Addr())
	t.Cleanup(func() { _ = client.Close() })
	return cache.NewRedisAdapter(client), mr
}

func TestCachedRestaurantAdapter_GetByID(t *testing.T) {
	ctx := context.Background()
	redisCache, mr := newRedisCache(t)
	inner := &countingRestaurants{}
	adapter := database.NewCachedRestaurantAdapter(inner, redisCache, nil)

	first, err := adapter.GetByID(ctx, "rest-1")
	require.NoError(t, err)
	second, err := adapter.GetByID(ctx, "rest-1")
	require.NoError(t, err)

	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, first.Name, second.Name)
	assert.Equal(t, entities.NewTimeOfDay(11, 0, 0), second.OpeningTime)
	assert.True(t, mr.Exists(providers.RestaurantCacheKey("rest-1")))
}

func TestCachedReviewAdapter_Summary(t *testing.T) {
	ctx := context.Background()
	redisCache, mr := newRedisCache(t)
	inner := &countingReviews{}
	adapter := database.NewCachedReviewAdapter(inner, redisCache, nil)

	_, _, err := adapter.Summary(ctx, "rest-1")
	require.NoError(t, err)
	average, count, err := adapter.Summary(ctx, "rest-1")
	require.NoError(t, err)
	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, 4.5, average)
	assert.Equal(t, 2, count)

	// a dropped entry is recomputed
	mr.Del(providers.ReviewSummaryCacheKey("rest-1"))
	_, _, err = adapter.Summary(ctx, "rest-1")
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
}
