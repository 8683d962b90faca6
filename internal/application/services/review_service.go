package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/nagoyameshi/backend/internal/domain/entities"
	"github.com/nagoyameshi/backend/internal/domain/providers"
	"github.com/nagoyameshi/backend/internal/domain/repositories"
	apperrors "github.com/nagoyameshi/backend/pkg/errors"
)

// MsgVisitedDateInFuture rejects reviews of visits that have not happened yet
const MsgVisitedDateInFuture = "visited date cannot be in the future"

// visitedDateLayout is the wire format of visited_date
const visitedDateLayout = "2006-01-02"

// ReviewInput is the user-supplied part of a review
type ReviewInput struct {
	Stars       int    `json:"stars" validate:"min=1,max=5"`
	Comment     string `json:"comment" validate:"required,max=800"`
	VisitedDate string `json:"visited_date" validate:"required"`
}

// ReviewService manages restaurant reviews
type ReviewService struct {
	reviews       repositories.ReviewRepository
	restaurants   repositories.RestaurantRepository
	subscriptions *SubscriptionService
	publisher     providers.EventPublisher
	location      *time.Location
	now           func() time.Time
}

// NewReviewService creates a new review service
func NewReviewService(
	reviews repositories.ReviewRepository,
	restaurants repositories.RestaurantRepository,
	subscriptions *SubscriptionService,
	publisher providers.EventPublisher,
	location *time.Location,
) *ReviewService {
	if location == nil {
		location = time.UTC
	}
	return &ReviewService{
		reviews:       reviews,
		restaurants:   restaurants,
		subscriptions: subscriptions,
		publisher:     publisher,
		location:      location,
		now:           time.Now,
	}
}

// WithClock replaces the clock used to decide what "today" is
func (s *ReviewService) WithClock(now func() time.Time) *ReviewService {
	s.now = now
	return s
}

// List returns a restaurant's reviews, newest first
func (s *ReviewService) List(ctx context.Context, restaurantID string) ([]*entities.Review, error) {
	return s.reviews.ListByRestaurant(ctx, restaurantID)
}

// Create posts a review for a member
func (s *ReviewService) Create(ctx context.Context, user *entities.User, restaurantID string, input ReviewInput) (*entities.Review, error) {
	if err := s.subscriptions.RequireActive(ctx, user); err != nil {
		return nil, err
	}

	restaurant, err := s.restaurants.GetByID(ctx, restaurantID)
	if err != nil {
		return nil, err
	}

	visited, err := s.checkInput(input)
	if err != nil {
		return nil, err
	}

	review := &entities.Review{
		ID:           uuid.NewString(),
		RestaurantID: restaurant.ID,
		UserID:       user.ID,
		Username:     user.Username,
		Stars:        input.Stars,
		Comment:      input.Comment,
		VisitedDate:  visited,
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, err
	}

	s.publish(ctx, entities.EventReviewCreated, review)
	return review, nil
}

// Update edits a review owned by user
func (s *ReviewService) Update(ctx context.Context, user *entities.User, id string, input ReviewInput) (*entities.Review, error) {
	review, err := s.owned(ctx, user, id)
	if err != nil {
		return nil, err
	}

	visited, err := s.checkInput(input)
	if err != nil {
		return nil, err
	}

	review.Stars = input.Stars
	review.Comment = input.Comment
	review.VisitedDate = visited
	if err := s.reviews.Update(ctx, review); err != nil {
		return nil, err
	}

	s.publish(ctx, entities.EventReviewUpdated, review)
	return review, nil
}

// Delete removes a review owned by user
func (s *ReviewService) Delete(ctx context.Context, user *entities.User, id string) error {
	review, err := s.owned(ctx, user, id)
	if err != nil {
		return err
	}
	if err := s.reviews.Delete(ctx, review.ID); err != nil {
		return err
	}

	s.publish(ctx, entities.EventReviewDeleted, review)
	return nil
}

func (s *ReviewService) owned(ctx context.Context, user *entities.User, id string) (*entities.Review, error) {
	review, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if review.UserID != user.ID {
		return nil, ErrNotOwner
	}
	return review, nil
}

// checkInput validates the fields and parses visited_date as a calendar day in the restaurant zone
func (s *ReviewService) checkInput(input ReviewInput) (time.Time, error) {
	if err := validate.Struct(input); err != nil {
		return time.Time{}, validationError(err)
	}

	visited, err := time.ParseInLocation(visitedDateLayout, input.VisitedDate, s.location)
	if err != nil {
		return time.Time{}, apperrors.NewValidationError("visited_date: must be a date in YYYY-MM-DD format")
	}

	now := s.now().In(s.location)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.location)
	if visited.After(today) {
		return time.Time{}, apperrors.NewValidationError(MsgVisitedDateInFuture)
	}
	return visited, nil
}

func (s *ReviewService) publish(ctx context.Context, eventType entities.DomainEventType, review *entities.Review) {
	publishEvent(ctx, s.publisher, entities.NewDomainEvent(
		eventType, review.ID, review.RestaurantID, review.UserID,
		map[string]interface{}{"stars": review.Stars},
	))
}
