package database

import (
	"context"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"

	"github.com/nagoyameshi/backend/internal/domain/entities"
	"github.com/nagoyameshi/backend/internal/domain/repositories"
	"github.com/nagoyameshi/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/nagoyameshi/backend/pkg/errors"
)

// ReviewAdapter implements the ReviewRepository interface
type ReviewAdapter struct {
	client *postgres.Client
	db     *goqu.Database
	dbx    *sqlx.DB
}

// NewReviewAdapter creates a new review adapter
func NewReviewAdapter(client *postgres.Client) repositories.ReviewRepository {
	return &ReviewAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
		dbx:    sqlx.NewDb(client.DB(), "postgres"),
	}
}

func (a *ReviewAdapter) selectReviews() *goqu.SelectDataset {
	return a.db.From(goqu.T("reviews").As("rv")).
		LeftJoin(goqu.T("users").As("u"), goqu.On(goqu.I("u.id").Eq(goqu.I("rv.user_id")))).
		Select(
			goqu.I("rv.id"), goqu.I("rv.restaurant_id"), goqu.I("rv.user_id"),
			goqu.COALESCE(goqu.I("u.username"), "").As("username"),
			goqu.I("rv.stars"), goqu.I("rv.comment"), goqu.I("rv.visited_date"),
			goqu.I("rv.created_at"), goqu.I("rv.updated_at"),
		)
}

// Create creates a new review
func (a *ReviewAdapter) Create(ctx context.Context, review *entities.Review) error {
	now := time.Now().UTC()
	review.CreatedAt = now
	review.UpdatedAt = now

	query, _, err := a.db.Insert("reviews").Rows(goqu.Record{
		"id":            review.ID,
		"restaurant_id": review.RestaurantID,
		"user_id":       review.UserID,
		"stars":         review.Stars,
		"comment":       review.Comment,
		"visited_date":  review.VisitedDate.Format("2006-01-02"),
		"created_at":    review.CreatedAt,
		"updated_at":    review.UpdatedAt,
	}).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query); err != nil {
		return apperrors.NewInternalError("failed to create review", err)
	}
	return nil
}

// GetByID retrieves a review by ID
func (a *ReviewAdapter) GetByID(ctx context.Context, id string) (*entities.Review, error) {
	query, _, err := a.selectReviews().Where(goqu.I("rv.id").Eq(id)).ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	review := &entities.Review{}
	if err := a.dbx.GetContext(ctx, review, query); err != nil {
		return nil, notFoundOr(err, fmt.Sprintf("review with id %s not found", id), "failed to get review")
	}
	return review, nil
}

// Update updates the rating, comment and visit date of a review
func (a *ReviewAdapter) Update(ctx context.Context, review *entities.Review) error {
	review.UpdatedAt = time.Now().UTC()

	query, _, err := a.db.Update("reviews").Set(goqu.Record{
		"stars":        review.Stars,
		"comment":      review.Comment,
		"visited_date": review.VisitedDate.Format("2006-01-02"),
		"updated_at":   review.UpdatedAt,
	}).Where(goqu.Ex{"id": review.ID}).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	return a.execOne(ctx, query, review.ID, "failed to update review")
}

// Delete removes a review
func (a *ReviewAdapter) Delete(ctx context.Context, id string) error {
	query, _, err := a.db.Delete("reviews").Where(goqu.Ex{"id": id}).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build delete query", err)
	}
	return a.execOne(ctx, query, id, "failed to delete review")
}

func (a *ReviewAdapter) execOne(ctx context.Context, query, id, failure string) error {
	result, err := a.client.DB().ExecContext(ctx, query)
	if err != nil {
		return apperrors.NewInternalError(failure, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rows == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("review with id %s not found", id))
	}
	return nil
}

// ListByRestaurant returns reviews newest first
func (a *ReviewAdapter) ListByRestaurant(ctx context.Context, restaurantID string) ([]*entities.Review, error) {
	query, _, err := a.selectReviews().
		Where(goqu.I("rv.restaurant_id").Eq(restaurantID)).
		Order(goqu.I("rv.created_at").Desc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	reviews := []*entities.Review{}
	if err := a.dbx.SelectContext(ctx, &reviews, query); err != nil {
		return nil, apperrors.NewInternalError("failed to list reviews", err)
	}
	return reviews, nil
}

// Summary returns the average star rating and review count
func (a *ReviewAdapter) Summary(ctx context.Context, restaurantID string) (float64, int, error) {
	query, _, err := a.db.From("reviews").
		Select(
			goqu.COALESCE(goqu.AVG("stars"), 0).As("average"),
			goqu.COUNT("*").As("count"),
		).
		Where(goqu.Ex{"restaurant_id": restaurantID}).
		ToSQL()
	if err != nil {
		return 0, 0, apperrors.NewInternalError("failed to build query", err)
	}

	var average float64
	var count int
	if err := a.client.DB().QueryRowContext(ctx, query).Scan(&average, &count); err != nil {
		return 0, 0, apperrors.NewInternalError("failed to summarize reviews", err)
	}
	return average, count, nil
}
