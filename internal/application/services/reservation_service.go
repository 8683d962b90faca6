package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nagoyameshi/backend/internal/domain/entities"
	"github.com/nagoyameshi/backend/internal/domain/providers"
	"github.com/nagoyameshi/backend/internal/domain/repositories"
	"github.com/nagoyameshi/backend/internal/infrastructure/observability"
	apperrors "github.com/nagoyameshi/backend/pkg/errors"
)

// ReservationInput is the user-supplied part of a reservation
type ReservationInput struct {
	ReservationDatetime time.Time `json:"reservation_datetime" validate:"required"`
	NumberOfPersons     int       `json:"number_of_persons" validate:"min=1,max=50"`
	Comment             string    `json:"comment" validate:"max=200"`
}

// ReservationService books and cancels reservations
type ReservationService struct {
	reservations  repositories.ReservationRepository
	restaurants   repositories.RestaurantRepository
	subscriptions *SubscriptionService
	validator     *ReservationValidator
	qr            providers.QRCodeGenerator
	publisher     providers.EventPublisher
	metrics       *observability.Metrics
	baseURL       string
	now           func() time.Time
}

// NewReservationService creates a new reservation service
func NewReservationService(
	reservations repositories.ReservationRepository,
	restaurants repositories.RestaurantRepository,
	subscriptions *SubscriptionService,
	validator *ReservationValidator,
	qr providers.QRCodeGenerator,
	publisher providers.EventPublisher,
	metrics *observability.Metrics,
	baseURL string,
) *ReservationService {
	return &ReservationService{
		reservations:  reservations,
		restaurants:   restaurants,
		subscriptions: subscriptions,
		validator:     validator,
		qr:            qr,
		publisher:     publisher,
		metrics:       metrics,
		baseURL:       baseURL,
		now:           time.Now,
	}
}

// WithClock replaces the clock used as the validator's reference instant
func (s *ReservationService) WithClock(now func() time.Time) *ReservationService {
	s.now = now
	return s
}

// Create books a table for a member. The overlap check and the insert run
// under the repository's reservation lock.
func (s *ReservationService) Create(ctx context.Context, user *entities.User, restaurantID string, input ReservationInput) (*entities.Reservation, error) {
	if err := validate.Struct(input); err != nil {
		return nil, validationError(err)
	}
	if err := s.subscriptions.RequireActive(ctx, user); err != nil {
		return nil, err
	}

	restaurant, err := s.restaurants.GetByID(ctx, restaurantID)
	if err != nil {
		return nil, err
	}

	reservation := &entities.Reservation{
		ID:                  uuid.NewString(),
		RestaurantID:        restaurant.ID,
		RestaurantName:      restaurant.Name,
		UserID:              user.ID,
		ReservationDatetime: input.ReservationDatetime,
		NumberOfPersons:     input.NumberOfPersons,
		Comment:             input.Comment,
	}

	now := s.now()
	err = s.reservations.CreateExclusive(ctx, reservation, func(existing []*entities.Reservation) error {
		return s.validator.Validate(now, reservation, restaurant, existing)
	})
	if err != nil {
		outcome := "error"
		if apperrors.IsType(err, apperrors.ErrorTypeValidation) {
			outcome = "rejected"
		}
		observability.RecordReservationAttempt(ctx, s.metrics, outcome)
		return nil, err
	}
	observability.RecordReservationAttempt(ctx, s.metrics, "accepted")

	publishEvent(ctx, s.publisher, entities.NewDomainEvent(
		entities.EventReservationCreated, reservation.ID, reservation.RestaurantID, user.ID,
		map[string]interface{}{
			"reservation_datetime": reservation.ReservationDatetime,
			"number_of_persons":    reservation.NumberOfPersons,
		},
	))
	return reservation, nil
}

// ListByUser returns the user's reservations, newest first
func (s *ReservationService) ListByUser(ctx context.Context, userID string) ([]*entities.Reservation, error) {
	return s.reservations.ListByUser(ctx, userID)
}

// Cancel deletes a reservation owned by a member
func (s *ReservationService) Cancel(ctx context.Context, user *entities.User, id string) error {
	if err := s.subscriptions.RequireActive(ctx, user); err != nil {
		return err
	}

	reservation, err := s.owned(ctx, user, id)
	if err != nil {
		return err
	}
	if err := s.reservations.Delete(ctx, reservation.ID); err != nil {
		return err
	}

	publishEvent(ctx, s.publisher, entities.NewDomainEvent(
		entities.EventReservationCancelled, reservation.ID, reservation.RestaurantID, user.ID, nil,
	))
	return nil
}

// QRCode renders a PNG pointing at the reservation's page
func (s *ReservationService) QRCode(ctx context.Context, user *entities.User, id string) ([]byte, error) {
	reservation, err := s.owned(ctx, user, id)
	if err != nil {
		return nil, err
	}

	png, err := s.qr.Generate(fmt.Sprintf("%s/reservations/%s", s.baseURL, reservation.ID))
	if err != nil {
		return nil, apperrors.NewInternalError("failed to render qr code", err)
	}
	return png, nil
}

func (s *ReservationService) owned(ctx context.Context, user *entities.User, id string) (*entities.Reservation, error) {
	reservation, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if reservation.UserID != user.ID {
		return nil, ErrNotOwner
	}
	return reservation, nil
}
