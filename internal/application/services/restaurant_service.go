package services

import (
	"context"
	"strings"

	"github.com/nagoyameshi/backend/internal/domain/entities"
	"github.com/nagoyameshi/backend/internal/domain/repositories"
	"github.com/nagoyameshi/backend/internal/infrastructure/observability"
)

// RestaurantService serves the restaurant catalogue
type RestaurantService struct {
	restaurants repositories.RestaurantRepository
	reviews     repositories.ReviewRepository
	favorites   *FavoriteService
	index       repositories.RestaurantSearchRepository
}

// NewRestaurantService creates a new restaurant service. index may be nil,
// in which case searches run against the database.
func NewRestaurantService(
	restaurants repositories.RestaurantRepository,
	reviews repositories.ReviewRepository,
	favorites *FavoriteService,
	index repositories.RestaurantSearchRepository,
) *RestaurantService {
	return &RestaurantService{
		restaurants: restaurants,
		reviews:     reviews,
		favorites:   favorites,
		index:       index,
	}
}

// Search lists restaurants matching the filter. When the search index fails the
// database is queried instead.
func (s *RestaurantService) Search(ctx context.Context, filter repositories.RestaurantFilter) ([]*entities.Restaurant, error) {
	if s.index != nil {
		ids, err := s.index.Search(ctx, filter)
		if err == nil {
			found, err := s.restaurants.ListByIDs(ctx, ids)
			if err != nil {
				return nil, err
			}
			return keepKeywordMatches(found, filter.Keyword), nil
		}
		observability.LoggerFromContext(ctx).Warn().Err(err).Msg("search index unavailable, falling back to database")
	}
	return s.restaurants.Search(ctx, filter)
}

// keepKeywordMatches drops index hits whose name does not contain every keyword word
func keepKeywordMatches(restaurants []*entities.Restaurant, keyword string) []*entities.Restaurant {
	words := strings.Fields(strings.ToLower(keyword))
	if len(words) == 0 {
		return restaurants
	}
	kept := make([]*entities.Restaurant, 0, len(restaurants))
	for _, r := range restaurants {
		name := strings.ToLower(r.Name)
		matches := true
		for _, w := range words {
			if !strings.Contains(name, w) {
				matches = false
				break
			}
		}
		if matches {
			kept = append(kept, r)
		}
	}
	return kept
}

// Get returns a restaurant with its review summary and, for a signed-in user, whether it is a favorite
func (s *RestaurantService) Get(ctx context.Context, id, userID string) (*entities.RestaurantDetail, error) {
	restaurant, err := s.restaurants.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	summary, err := s.Summary(ctx, id)
	if err != nil {
		return nil, err
	}

	isFavorite, err := s.favorites.IsFavorite(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	return &entities.RestaurantDetail{
		Restaurant: restaurant,
		Reviews:    summary,
		IsFavorite: isFavorite,
	}, nil
}

// Summary returns the rounded average rating, review count and star display
func (s *RestaurantService) Summary(ctx context.Context, restaurantID string) (entities.ReviewSummary, error) {
	average, count, err := s.reviews.Summary(ctx, restaurantID)
	if err != nil {
		return entities.ReviewSummary{}, err
	}
	return entities.NewReviewSummary(average, count), nil
}

// Categories lists every category
func (s *RestaurantService) Categories(ctx context.Context) ([]*entities.Category, error) {
	return s.restaurants.ListCategories(ctx)
}
