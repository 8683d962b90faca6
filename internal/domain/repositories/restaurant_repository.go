package repositories

import (
	"context"

	"github.com/nagoyameshi/backend/internal/domain/entities"
)

// RestaurantRepository defines the interface for restaurant data operations
type RestaurantRepository interface {
	// GetByID retrieves a restaurant with its closing days and photos
	GetByID(ctx context.Context, id string) (*entities.Restaurant, error)

	// ListByIDs returns restaurants in the order of ids, skipping unknown ids
	ListByIDs(ctx context.Context, ids []string) ([]*entities.Restaurant, error)

	// Search lists restaurants matching the filter
	Search(ctx context.Context, filter RestaurantFilter) ([]*entities.Restaurant, error)

	// ListAll returns every restaurant, used for reindexing
	ListAll(ctx context.Context) ([]*entities.Restaurant, error)

	// ListCategories returns all categories ordered by name
	ListCategories(ctx context.Context) ([]*entities.Category, error)
}

// RestaurantFilter defines filters for restaurant search.
// Every keyword word must appear in the name.
type RestaurantFilter struct {
	Keyword      string
	Category     string
	FloorPrice   *int
	MaximumPrice *int
	Limit        int
	Offset       int
}

// RestaurantSearchRepository defines a full-text index over restaurants
type RestaurantSearchRepository interface {
	// Index upserts a restaurant document
	Index(ctx context.Context, restaurant *entities.Restaurant) error

	// Delete removes a restaurant document
	Delete(ctx context.Context, id string) error

	// Search returns matching restaurant IDs in rank order
	Search(ctx context.Context, filter RestaurantFilter) ([]string, error)
}
