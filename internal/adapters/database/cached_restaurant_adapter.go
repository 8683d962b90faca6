package database

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/nagoyameshi/backend/internal/domain/entities"
	"github.com/nagoyameshi/backend/internal/domain/providers"
	"github.com/nagoyameshi/backend/internal/domain/repositories"
	"github.com/nagoyameshi/backend/internal/infrastructure/observability"
)

// Cache TTLs (in seconds)
const (
	restaurantByIDTTL  = 300
	categoriesTTL      = 3600
	reviewSummaryTTL   = 60
	categoriesCacheKey = "categories:all"
)

// CachedRestaurantAdapter wraps a RestaurantRepository with read-through caching
type CachedRestaurantAdapter struct {
	repositories.RestaurantRepository
	cache   providers.CacheProvider
	metrics *observability.Metrics
}

// NewCachedRestaurantAdapter creates a new cached restaurant adapter
func NewCachedRestaurantAdapter(adapter repositories.RestaurantRepository, cache providers.CacheProvider, metrics *observability.Metrics) repositories.RestaurantRepository {
	return &CachedRestaurantAdapter{
		RestaurantRepository: adapter,
		cache:                cache,
		metrics:              metrics,
	}
}

// GetByID retrieves a restaurant by ID with caching
func (a *CachedRestaurantAdapter) GetByID(ctx context.Context, id string) (*entities.Restaurant, error) {
	key := providers.RestaurantCacheKey(id)

	var restaurant entities.Restaurant
	if readCached(ctx, a.cache, a.metrics, key, &restaurant) {
		return &restaurant, nil
	}

	found, err := a.RestaurantRepository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	writeCached(ctx, a.cache, key, found, restaurantByIDTTL)
	return found, nil
}

// ListCategories returns all categories with caching
func (a *CachedRestaurantAdapter) ListCategories(ctx context.Context) ([]*entities.Category, error) {
	var categories []*entities.Category
	if readCached(ctx, a.cache, a.metrics, categoriesCacheKey, &categories) {
		return categories, nil
	}

	categories, err := a.RestaurantRepository.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	writeCached(ctx, a.cache, categoriesCacheKey, categories, categoriesTTL)
	return categories, nil
}

// CachedReviewAdapter caches review aggregates; entries are dropped by the
// cache invalidation service when review events arrive.
type CachedReviewAdapter struct {
	repositories.ReviewRepository
	cache   providers.CacheProvider
	metrics *observability.Metrics
}

// NewCachedReviewAdapter creates a new cached review adapter
func NewCachedReviewAdapter(adapter repositories.ReviewRepository, cache providers.CacheProvider, metrics *observability.Metrics) repositories.ReviewRepository {
	return &CachedReviewAdapter{
		ReviewRepository: adapter,
		cache:            cache,
		metrics:          metrics,
	}
}

type cachedSummary struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// Summary returns the review aggregate with caching
func (a *CachedReviewAdapter) Summary(ctx context.Context, restaurantID string) (float64, int, error) {
	key := providers.ReviewSummaryCacheKey(restaurantID)

	var summary cachedSummary
	if readCached(ctx, a.cache, a.metrics, key, &summary) {
		return summary.Average, summary.Count, nil
	}

	average, count, err := a.ReviewRepository.Summary(ctx, restaurantID)
	if err != nil {
		return 0, 0, err
	}
	writeCached(ctx, a.cache, key, cachedSummary{Average: average, Count: count}, reviewSummaryTTL)
	return average, count, nil
}

func readCached(ctx context.Context, cache providers.CacheProvider, metrics *observability.Metrics, key string, dest interface{}) bool {
	data, err := cache.Get(ctx, key)
	if err != nil {
		observability.RecordCacheMiss(ctx, metrics, key)
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("discarding undecodable cache entry")
		return false
	}
	observability.RecordCacheHit(ctx, metrics, key)
	return true
}

func writeCached(ctx context.Context, cache providers.CacheProvider, key string, value interface{}, ttl int) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := cache.Set(ctx, key, data, ttl); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to write cache entry")
	}
}
