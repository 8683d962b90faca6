package database

import (
	"context"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"

	"github.com/nagoyameshi/backend/internal/domain/entities"
	"github.com/nagoyameshi/backend/internal/domain/repositories"
	"github.com/nagoyameshi/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/nagoyameshi/backend/pkg/errors"
)

// FavoriteAdapter implements the FavoriteRepository interface
type FavoriteAdapter struct {
	client      *postgres.Client
	db          *goqu.Database
	dbx         *sqlx.DB
	restaurants *RestaurantAdapter
}

// NewFavoriteAdapter creates a new favorite adapter
func NewFavoriteAdapter(client *postgres.Client) repositories.FavoriteRepository {
	return &FavoriteAdapter{
		client:      client,
		db:          goqu.New("postgres", client.DB()),
		dbx:         sqlx.NewDb(client.DB(), "postgres"),
		restaurants: NewRestaurantAdapter(client).(*RestaurantAdapter),
	}
}

// Get returns the favorite for the pair
func (a *FavoriteAdapter) Get(ctx context.Context, userID, restaurantID string) (*entities.Favorite, error) {
	query, _, err := a.db.From("favorites").
		Select("id", "user_id", "restaurant_id", "created_at").
		Where(goqu.Ex{"user_id": userID, "restaurant_id": restaurantID}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	favorite := &entities.Favorite{}
	if err := a.dbx.GetContext(ctx, favorite, query); err != nil {
		return nil, notFoundOr(err, "favorite not found", "failed to get favorite")
	}
	return favorite, nil
}

// Create creates a new favorite
func (a *FavoriteAdapter) Create(ctx context.Context, favorite *entities.Favorite) error {
	if favorite.CreatedAt.IsZero() {
		favorite.CreatedAt = time.Now().UTC()
	}

	query, _, err := a.db.Insert("favorites").Rows(goqu.Record{
		"id":            favorite.ID,
		"user_id":       favorite.UserID,
		"restaurant_id": favorite.RestaurantID,
		"created_at":    favorite.CreatedAt,
	}).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query); err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewConflictError("restaurant is already a favorite")
		}
		return apperrors.NewInternalError("failed to create favorite", err)
	}
	return nil
}

// Delete removes a favorite
func (a *FavoriteAdapter) Delete(ctx context.Context, id string) error {
	query, _, err := a.db.Delete("favorites").Where(goqu.Ex{"id": id}).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build delete query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query); err != nil {
		return apperrors.NewInternalError("failed to delete favorite", err)
	}
	return nil
}

// ListRestaurantsByUser returns the user's favorite restaurants, most recent first
func (a *FavoriteAdapter) ListRestaurantsByUser(ctx context.Context, userID string) ([]*entities.Restaurant, error) {
	query, _, err := a.db.From("favorites").
		Select("restaurant_id").
		Where(goqu.Ex{"user_id": userID}).
		Order(goqu.C("created_at").Desc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	var ids []string
	if err := a.dbx.SelectContext(ctx, &ids, query); err != nil {
		return nil, apperrors.NewInternalError("failed to list favorites", err)
	}
	return a.restaurants.ListByIDs(ctx, ids)
}
