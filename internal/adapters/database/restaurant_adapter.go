package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"

	"github.com/nagoyameshi/backend/internal/domain/entities"
	"github.com/nagoyameshi/backend/internal/domain/repositories"
	"github.com/nagoyameshi/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/nagoyameshi/backend/pkg/errors"
)

const maxRestaurantPageSize = 100

// RestaurantAdapter implements the RestaurantRepository interface
type RestaurantAdapter struct {
	client *postgres.Client
	db     *goqu.Database
	dbx    *sqlx.DB
}

// NewRestaurantAdapter creates a new restaurant adapter
func NewRestaurantAdapter(client *postgres.Client) repositories.RestaurantRepository {
	return &RestaurantAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
		dbx:    sqlx.NewDb(client.DB(), "postgres"),
	}
}

func (a *RestaurantAdapter) selectRestaurants() *goqu.SelectDataset {
	return a.db.From(goqu.T("restaurants").As("r")).
		LeftJoin(goqu.T("categories").As("c"), goqu.On(goqu.I("c.id").Eq(goqu.I("r.category_id")))).
		Select(
			goqu.I("r.id"), goqu.I("r.name"), goqu.I("r.category_id"),
			goqu.COALESCE(goqu.I("c.name"), "").As("category_name"),
			goqu.I("r.description"), goqu.I("r.image_url"),
			goqu.I("r.floor_price"), goqu.I("r.maximum_price"),
			goqu.I("r.opening_time"), goqu.I("r.closing_time"),
			goqu.I("r.postal_code"), goqu.I("r.city"), goqu.I("r.street_address"),
			goqu.I("r.phone_number"), goqu.I("r.created_at"), goqu.I("r.updated_at"),
		)
}

// GetByID retrieves a restaurant with its closing days and photos
func (a *RestaurantAdapter) GetByID(ctx context.Context, id string) (*entities.Restaurant, error) {
	query, _, err := a.selectRestaurants().Where(goqu.I("r.id").Eq(id)).ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	restaurant := &entities.Restaurant{}
	if err := a.dbx.GetContext(ctx, restaurant, query); err != nil {
		return nil, notFoundOr(err, fmt.Sprintf("restaurant with id %s not found", id), "failed to get restaurant")
	}

	if err := a.attachClosingDays(ctx, []*entities.Restaurant{restaurant}); err != nil {
		return nil, err
	}

	photos, err := a.photos(ctx, id)
	if err != nil {
		return nil, err
	}
	restaurant.Photos = photos

	return restaurant, nil
}

// ListByIDs returns restaurants in the order of ids
func (a *RestaurantAdapter) ListByIDs(ctx context.Context, ids []string) ([]*entities.Restaurant, error) {
	if len(ids) == 0 {
		return []*entities.Restaurant{}, nil
	}

	query, _, err := a.selectRestaurants().Where(goqu.I("r.id").In(ids)).ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	found, err := a.list(ctx, query)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*entities.Restaurant, len(found))
	for _, r := range found {
		byID[r.ID] = r
	}
	ordered := make([]*entities.Restaurant, 0, len(found))
	for _, id := range ids {
		if r, ok := byID[id]; ok {
			ordered = append(ordered, r)
		}
	}
	return ordered, nil
}

// Search lists restaurants matching the filter
func (a *RestaurantAdapter) Search(ctx context.Context, filter repositories.RestaurantFilter) ([]*entities.Restaurant, error) {
	ds := a.selectRestaurants()

	for _, word := range strings.Fields(filter.Keyword) {
		ds = ds.Where(goqu.I("r.name").ILike(containsPattern(word)))
	}
	if filter.Category != "" {
		ds = ds.Where(goqu.I("c.name").Eq(filter.Category))
	}
	if filter.FloorPrice != nil {
		ds = ds.Where(goqu.I("r.floor_price").Gte(*filter.FloorPrice))
	}
	if filter.MaximumPrice != nil {
		ds = ds.Where(goqu.I("r.maximum_price").Lte(*filter.MaximumPrice))
	}

	limit := filter.Limit
	if limit <= 0 || limit > maxRestaurantPageSize {
		limit = maxRestaurantPageSize
	}
	ds = ds.Order(goqu.I("r.created_at").Desc(), goqu.I("r.id").Asc()).Limit(uint(limit))
	if filter.Offset > 0 {
		ds = ds.Offset(uint(filter.Offset))
	}

	query, _, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}
	return a.list(ctx, query)
}

// ListAll returns every restaurant
func (a *RestaurantAdapter) ListAll(ctx context.Context) ([]*entities.Restaurant, error) {
	query, _, err := a.selectRestaurants().Order(goqu.I("r.id").Asc()).ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}
	return a.list(ctx, query)
}

// ListCategories returns all categories ordered by name
func (a *RestaurantAdapter) ListCategories(ctx context.Context) ([]*entities.Category, error) {
	query, _, err := a.db.From("categories").Select("id", "name").Order(goqu.C("name").Asc()).ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	categories := []*entities.Category{}
	if err := a.dbx.SelectContext(ctx, &categories, query); err != nil {
		return nil, apperrors.NewInternalError("failed to list categories", err)
	}
	return categories, nil
}

func (a *RestaurantAdapter) list(ctx context.Context, query string) ([]*entities.Restaurant, error) {
	restaurants := []*entities.Restaurant{}
	if err := a.dbx.SelectContext(ctx, &restaurants, query); err != nil {
		return nil, apperrors.NewInternalError("failed to list restaurants", err)
	}
	if err := a.attachClosingDays(ctx, restaurants); err != nil {
		return nil, err
	}
	return restaurants, nil
}

func (a *RestaurantAdapter) attachClosingDays(ctx context.Context, restaurants []*entities.Restaurant) error {
	if len(restaurants) == 0 {
		return nil
	}

	byID := make(map[string]*entities.Restaurant, len(restaurants))
	ids := make([]string, 0, len(restaurants))
	for _, r := range restaurants {
		r.ClosingDays = []entities.ClosingDay{}
		byID[r.ID] = r
		ids = append(ids, r.ID)
	}

	query, _, err := a.db.From(goqu.T("restaurant_closing_days").As("rcd")).
		Join(goqu.T("days").As("d"), goqu.On(goqu.I("d.id").Eq(goqu.I("rcd.day_id")))).
		Select(goqu.I("rcd.restaurant_id"), goqu.I("d.id"), goqu.I("d.name"), goqu.I("d.day_of_week")).
		Where(goqu.I("rcd.restaurant_id").In(ids)).
		Order(goqu.I("d.day_of_week").Asc()).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query)
	if err != nil {
		return apperrors.NewInternalError("failed to load closing days", err)
	}
	defer rows.Close()

	for rows.Next() {
		var restaurantID string
		var day entities.ClosingDay
		if err := rows.Scan(&restaurantID, &day.ID, &day.Name, &day.DayOfWeek); err != nil {
			return apperrors.NewInternalError("failed to scan closing day", err)
		}
		if r, ok := byID[restaurantID]; ok {
			r.ClosingDays = append(r.ClosingDays, day)
		}
	}
	if err := rows.Err(); err != nil {
		return apperrors.NewInternalError("failed to iterate closing days", err)
	}
	return nil
}

func (a *RestaurantAdapter) photos(ctx context.Context, restaurantID string) ([]entities.RestaurantPhoto, error) {
	query, _, err := a.db.From("restaurant_photos").
		Select("id", "restaurant_id", "image_url", "caption", "sort_order").
		Where(goqu.Ex{"restaurant_id": restaurantID}).
		Order(goqu.C("sort_order").Asc(), goqu.C("id").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	photos := []entities.RestaurantPhoto{}
	if err := a.dbx.SelectContext(ctx, &photos, query); err != nil && err != sql.ErrNoRows {
		return nil, apperrors.NewInternalError("failed to load photos", err)
	}
	return photos, nil
}
