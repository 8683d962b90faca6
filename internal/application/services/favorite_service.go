package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/nagoyameshi/backend/internal/domain/entities"
	"github.com/nagoyameshi/backend/internal/domain/providers"
	"github.com/nagoyameshi/backend/internal/domain/repositories"
	apperrors "github.com/nagoyameshi/backend/pkg/errors"
)

// FavoriteService manages saved restaurants
type FavoriteService struct {
	favorites     repositories.FavoriteRepository
	restaurants   repositories.RestaurantRepository
	subscriptions *SubscriptionService
	publisher     providers.EventPublisher
}

// NewFavoriteService creates a new favorite service
func NewFavoriteService(
	favorites repositories.FavoriteRepository,
	restaurants repositories.RestaurantRepository,
	subscriptions *SubscriptionService,
	publisher providers.EventPublisher,
) *FavoriteService {
	return &FavoriteService{
		favorites:     favorites,
		restaurants:   restaurants,
		subscriptions: subscriptions,
		publisher:     publisher,
	}
}

// Toggle removes the favorite if present, otherwise adds it, and returns the new state
func (s *FavoriteService) Toggle(ctx context.Context, user *entities.User, restaurantID string) (bool, error) {
	if err := s.subscriptions.RequireActive(ctx, user); err != nil {
		return false, err
	}

	existing, err := s.favorites.Get(ctx, user.ID, restaurantID)
	switch {
	case err == nil:
		if err := s.favorites.Delete(ctx, existing.ID); err != nil {
			return false, err
		}
		publishEvent(ctx, s.publisher, entities.NewDomainEvent(
			entities.EventFavoriteRemoved, existing.ID, restaurantID, user.ID, nil,
		))
		return false, nil
	case !apperrors.IsType(err, apperrors.ErrorTypeNotFound):
		return false, err
	}

	if _, err := s.restaurants.GetByID(ctx, restaurantID); err != nil {
		return false, err
	}

	favorite := &entities.Favorite{
		ID:           uuid.NewString(),
		UserID:       user.ID,
		RestaurantID: restaurantID,
	}
	if err := s.favorites.Create(ctx, favorite); err != nil {
		// lost a race with a concurrent add
		if apperrors.IsType(err, apperrors.ErrorTypeConflict) {
			return true, nil
		}
		return false, err
	}

	publishEvent(ctx, s.publisher, entities.NewDomainEvent(
		entities.EventFavoriteAdded, favorite.ID, restaurantID, user.ID, nil,
	))
	return true, nil
}

// IsFavorite reports whether the user saved the restaurant. Anonymous users have no favorites.
func (s *FavoriteService) IsFavorite(ctx context.Context, userID, restaurantID string) (bool, error) {
	if userID == "" {
		return false, nil
	}
	_, err := s.favorites.Get(ctx, userID, restaurantID)
	if err == nil {
		return true, nil
	}
	if apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
		return false, nil
	}
	return false, err
}

// ListByUser returns the user's favorite restaurants
func (s *FavoriteService) ListByUser(ctx context.Context, userID string) ([]*entities.Restaurant, error) {
	return s.favorites.ListRestaurantsByUser(ctx, userID)
}
