package handlers

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/nagoyameshi/backend/internal/application/services"
	"github.com/nagoyameshi/backend/internal/domain/entities"
	"github.com/nagoyameshi/backend/internal/domain/repositories"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Signup(ctx context.Context, input services.SignupInput) (*entities.User, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string, client entities.LoginContext) (*services.LoginResult, error) {
	args := m.Called(ctx, email, password, client)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.LoginResult), args.Error(1)
}

func (m *MockAuthService) Profile(ctx context.Context, userID string) (*entities.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockAuthService) UpdateProfile(ctx context.Context, userID string, input services.ProfileInput) (*entities.User, error) {
	args := m.Called(ctx, userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockAuthService) Mypage(ctx context.Context, user *entities.User) (*services.Mypage, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Mypage), args.Error(1)
}

type MockRestaurantService struct {
	mock.Mock
}

func (m *MockRestaurantService) Search(ctx context.Context, filter repositories.RestaurantFilter) ([]*entities.Restaurant, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*entities.Restaurant), args.Error(1)
}

func (m *MockRestaurantService) Get(ctx context.Context, id, userID string) (*entities.RestaurantDetail, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.RestaurantDetail), args.Error(1)
}

func (m *MockRestaurantService) Categories(ctx context.Context) ([]*entities.Category, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*entities.Category), args.Error(1)
}

type MockReviewService struct {
	mock.Mock
}

func (m *MockReviewService) List(ctx context.Context, restaurantID string) ([]*entities.Review, error) {
	args := m.Called(ctx, restaurantID)
	return args.Get(0).([]*entities.Review), args.Error(1)
}

func (m *MockReviewService) Create(ctx context.Context, user *entities.User, restaurantID string, input services.ReviewInput) (*entities.Review, error) {
	args := m.Called(ctx, user, restaurantID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Review), args.Error(1)
}

func (m *MockReviewService) Update(ctx context.Context, user *entities.User, id string, input services.ReviewInput) (*entities.Review, error) {
	args := m.Called(ctx, user, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Review), args.Error(1)
}

func (m *MockReviewService) Delete(ctx context.Context, user *entities.User, id string) error {
	return m.Called(ctx, user, id).Error(0)
}

type MockFavoriteService struct {
	mock.Mock
}

func (m *MockFavoriteService) Toggle(ctx context.Context, user *entities.User, restaurantID string) (bool, error) {
	args := m.Called(ctx, user, restaurantID)
	return args.Bool(0), args.Error(1)
}

func (m *MockFavoriteService) ListByUser(ctx context.Context, userID string) ([]*entities.Restaurant, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]*entities.Restaurant), args.Error(1)
}

type MockReservationService struct {
	mock.Mock
}

func (m *MockReservationService) Create(ctx context.Context, user *entities.User, restaurantID string, input services.ReservationInput) (*entities.Reservation, error) {
	args := m.Called(ctx, user, restaurantID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Reservation), args.Error(1)
}

func (m *MockReservationService) ListByUser(ctx context.Context, userID string) ([]*entities.Reservation, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]*entities.Reservation), args.Error(1)
}

func (m *MockReservationService) Cancel(ctx context.Context, user *entities.User, id string) error {
	return m.Called(ctx, user, id).Error(0)
}

func (m *MockReservationService) QRCode(ctx context.Context, user *entities.User, id string) ([]byte, error) {
	args := m.Called(ctx, user, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type MockSubscriptionService struct {
	mock.Mock
}

func (m *MockSubscriptionService) IsActive(ctx context.Context, user *entities.User) bool {
	return m.Called(ctx, user).Bool(0)
}

func (m *MockSubscriptionService) StartCheckout(ctx context.Context, user *entities.User) (string, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Error(1)
}

func (m *MockSubscriptionService) CompleteCheckout(ctx context.Context, user *entities.User, sessionID string) error {
	return m.Called(ctx, user, sessionID).Error(0)
}

func (m *MockSubscriptionService) PortalURL(ctx context.Context, user *entities.User) (string, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Error(1)
}
