package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/nagoyameshi/backend/internal/adapters/providers/billing"
	"github.com/nagoyameshi/backend/internal/application/services"
	"github.com/nagoyameshi/backend/internal/domain/entities"
	apperrors "github.com/nagoyameshi/backend/pkg/errors"
)

// member passes the gate against billing.NewMockAdapter
func member() *entities.User {
	return &entities.User{ID: "user-1", Username: "taro", Email: "taro@example.com", CustomerID: "cus_mock_1", IsActive: true}
}

func nonMember() *entities.User {
	return &entities.User{ID: "user-2", Username: "hanako", Email: "hanako@example.com", IsActive: true}
}

func memberGate(users *MockUserRepository) *services.SubscriptionService {
	return services.NewSubscriptionService(billing.NewMockAdapter(), users, &recordingPublisher{}, nil, testBilling)
}

type reservationFixture struct {
	reservations *MockReservationRepository
	restaurants  *MockRestaurantRepository
	qr           *MockQRCodeGenerator
	publisher    *recordingPublisher
	svc          *services.ReservationService
}

func newReservationFixture(now time.Time) *reservationFixture {
	f := &reservationFixture{
		reservations: new(MockReservationRepository),
		restaurants:  new(MockRestaurantRepository),
		qr:           new(MockQRCodeGenerator),
		publisher:    &recordingPublisher{},
	}
	f.svc = services.NewReservationService(
		f.reservations,
		f.restaurants,
		memberGate(new(MockUserRepository)),
		services.NewReservationValidator(jst),
		f.qr,
		f.publisher,
		nil,
		"http://localhost:8080",
	).WithClock(func() time.Time { return now })
	return f
}

func TestReservationService_Create(t *testing.T) {
	ctx := context.Background()
	now := at(2024, 1, 1, 9, 0)

	t.Run("accepted reservation is stored and published", func(t *testing.T) {
		f := newReservationFixture(now)
		f.restaurants.On("GetByID", mock.Anything, "rest-1").Return(testRestaurant(), nil)
		f.reservations.On("CreateExclusive", mock.Anything, mock.MatchedBy(func(r *entities.Reservation) bool {
			return r.UserID == "user-1" && r.NumberOfPersons == 4 && r.ID != ""
		})).Return(nil)

		resv, err := f.svc.Create(ctx, member(), "rest-1", services.ReservationInput{
			ReservationDatetime: at(2024, 1, 10, 21, 30),
			NumberOfPersons:     4,
		})

		require.NoError(t, err)
		assert.Equal(t, "矢場とん", resv.RestaurantName)
		assert.Equal(t, []entities.DomainEventType{entities.EventReservationCreated}, f.publisher.types())
	})

	t.Run("conflicting reservation is rejected and nothing is inserted", func(t *testing.T) {
		f := newReservationFixture(now)
		f.reservations.Existing = []*entities.Reservation{{ID: "r1", ReservationDatetime: at(2024, 1, 10, 18, 0)}}
		f.restaurants.On("GetByID", mock.Anything, "rest-1").Return(testRestaurant(), nil)

		_, err := f.svc.Create(ctx, member(), "rest-1", services.ReservationInput{
			ReservationDatetime: at(2024, 1, 10, 19, 30),
			NumberOfPersons:     2,
		})

		assertRejected(t, err, services.MsgReservationConflict)
		f.reservations.AssertNotCalled(t, "CreateExclusive", mock.Anything, mock.Anything)
		assert.Empty(t, f.publisher.types())
	})

	t.Run("non-members are stopped before any lookup", func(t *testing.T) {
		f := newReservationFixture(now)

		_, err := f.svc.Create(ctx, nonMember(), "rest-1", services.ReservationInput{
			ReservationDatetime: at(2024, 1, 10, 19, 30),
			NumberOfPersons:     2,
		})

		assert.ErrorIs(t, err, services.ErrMembershipRequired)
		f.restaurants.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("party size is validated", func(t *testing.T) {
		f := newReservationFixture(now)

		_, err := f.svc.Create(ctx, member(), "rest-1", services.ReservationInput{
			ReservationDatetime: at(2024, 1, 10, 19, 30),
			NumberOfPersons:     0,
		})

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
		assert.Contains(t, err.Error(), "number_of_persons")
	})

	t.Run("unknown restaurant", func(t *testing.T) {
		f := newReservationFixture(now)
		f.restaurants.On("GetByID", mock.Anything, "missing").Return(nil, apperrors.NewNotFoundError("restaurant not found"))

		_, err := f.svc.Create(ctx, member(), "missing", services.ReservationInput{
			ReservationDatetime: at(2024, 1, 10, 19, 30),
			NumberOfPersons:     2,
		})
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
	})
}

func TestReservationService_Cancel(t *testing.T) {
	ctx := context.Background()
	now := at(2024, 1, 1, 9, 0)

	t.Run("owner cancels", func(t *testing.T) {
		f := newReservationFixture(now)
		f.reservations.On("GetByID", mock.Anything, "resv-1").
			Return(&entities.Reservation{ID: "resv-1", UserID: "user-1", RestaurantID: "rest-1"}, nil)
		f.reservations.On("Delete", mock.Anything, "resv-1").Return(nil)

		require.NoError(t, f.svc.Cancel(ctx, member(), "resv-1"))
		assert.Equal(t, []entities.DomainEventType{entities.EventReservationCancelled}, f.publisher.types())
	})

	t.Run("someone else's reservation", func(t *testing.T) {
		f := newReservationFixture(now)
		f.reservations.On("GetByID", mock.Anything, "resv-1").
			Return(&entities.Reservation{ID: "resv-1", UserID: "user-9"}, nil)

		err := f.svc.Cancel(ctx, member(), "resv-1")
		assert.ErrorIs(t, err, services.ErrNotOwner)
		f.reservations.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("non-member", func(t *testing.T) {
		f := newReservationFixture(now)
		assert.ErrorIs(t, f.svc.Cancel(ctx, nonMember(), "resv-1"), services.ErrMembershipRequired)
	})
}

func TestReservationService_QRCode(t *testing.T) {
	ctx := context.Background()
	owned := &entities.Reservation{ID: "resv-1", UserID: "user-1"}

	t.Run("encodes the reservation page", func(t *testing.T) {
		f := newReservationFixture(at(2024, 1, 1, 9, 0))
		f.reservations.On("GetByID", mock.Anything, "resv-1").Return(owned, nil)
		f.qr.On("Generate", "http://localhost:8080/reservations/resv-1").Return([]byte("png"), nil)

		png, err := f.svc.QRCode(ctx, member(), "resv-1")
		require.NoError(t, err)
		assert.Equal(t, []byte("png"), png)
	})

	t.Run("encoder failure", func(t *testing.T) {
		f := newReservationFixture(at(2024, 1, 1, 9, 0))
		f.reservations.On("GetByID", mock.Anything, "resv-1").Return(owned, nil)
		f.qr.On("Generate", mock.Anything).Return(nil, errors.New("too long"))

		_, err := f.svc.QRCode(ctx, member(), "resv-1")
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInternal))
	})

	t.Run("only the owner", func(t *testing.T) {
		f := newReservationFixture(at(2024, 1, 1, 9, 0))
		f.reservations.On("GetByID", mock.Anything, "resv-1").Return(owned, nil)

		_, err := f.svc.QRCode(ctx, nonMember(), "resv-1")
		assert.ErrorIs(t, err, services.ErrNotOwner)
	})
}
