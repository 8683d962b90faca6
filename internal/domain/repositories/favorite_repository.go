package repositories

import (
	"context"

	"github.com/nagoyameshi/backend/internal/domain/entities"
)

// FavoriteRepository defines the interface for favorite data operations
type FavoriteRepository interface {
	// Get returns the favorite for the pair, or a not found error
	Get(ctx context.Context, userID, restaurantID string) (*entities.Favorite, error)
	Create(ctx context.Context, favorite *entities.Favorite) error
	Delete(ctx context.Context, id string) error

	// ListRestaurantsByUser returns the user's favorite restaurants, most recent first
	ListRestaurantsByUser(ctx context.Context, userID string) ([]*entities.Restaurant, error)
}
