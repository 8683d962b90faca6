package repositories

import (
	"context"

	"github.com/nagoyameshi/backend/internal/domain/entities"
)

// ReviewRepository defines the interface for review data operations
type ReviewRepository interface {
	Create(ctx context.Context, review *entities.Review) error
	GetByID(ctx context.Context, id string) (*entities.Review, error)
	Update(ctx context.Context, review *entities.Review) error
	Delete(ctx context.Context, id string) error

	// ListByRestaurant returns reviews newest first
	ListByRestaurant(ctx context.Context, restaurantID string) ([]*entities.Review, error)

	// Summary returns the average star rating and review count
	Summary(ctx context.Context, restaurantID string) (average float64, count int, err error)
}
