package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/nagoyameshi/backend/internal/adapters/providers/billing"
	"github.com/nagoyameshi/backend/internal/application/services"
	"github.com/nagoyameshi/backend/internal/domain/entities"
	apperrors "github.com/nagoyameshi/backend/pkg/errors"
)

var testBilling = services.BillingSettings{
	PriceID:    "price_premium",
	BaseURL:    "http://localhost:8080",
	CancelURL:  "http://localhost:3000/",
	PremiumURL: "http://localhost:3000/premium",
}

func newSubscriptionService(provider *MockSubscriptionProvider, users *MockUserRepository, publisher *recordingPublisher) *services.SubscriptionService {
	return services.NewSubscriptionService(provider, users, publisher, nil, testBilling)
}

func TestSubscriptionService_IsActive(t *testing.T) {
	ctx := context.Background()

	t.Run("no customer reference means inactive without a provider call", func(t *testing.T) {
		provider := new(MockSubscriptionProvider)
		users := new(MockUserRepository)
		svc := newSubscriptionService(provider, users, &recordingPublisher{})

		assert.False(t, svc.IsActive(ctx, &entities.User{ID: "user-1"}))
		provider.AssertNotCalled(t, "ListSubscriptions", mock.Anything, mock.Anything)
	})

	t.Run("first active subscription wins", func(t *testing.T) {
		provider := new(MockSubscriptionProvider)
		users := new(MockUserRepository)
		svc := newSubscriptionService(provider, users, &recordingPublisher{})

		provider.On("ListSubscriptions", mock.Anything, "cus_123").Return(billing.NewSliceIterator([]*entities.BillingSubscription{
			{ID: "sub_1", Status: "canceled"},
			{ID: "sub_2", Status: "active"},
		}, nil))

		user := &entities.User{ID: "user-1", CustomerID: "cus_123"}
		assert.True(t, svc.IsActive(ctx, user))
		assert.Equal(t, "cus_123", user.CustomerID)
		users.AssertNotCalled(t, "UpdateCustomerID", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("no active subscription means inactive and keeps the reference", func(t *testing.T) {
		provider := new(MockSubscriptionProvider)
		users := new(MockUserRepository)
		svc := newSubscriptionService(provider, users, &recordingPublisher{})

		provider.On("ListSubscriptions", mock.Anything, "cus_123").Return(billing.NewSliceIterator([]*entities.BillingSubscription{
			{ID: "sub_1", Status: "past_due"},
		}, nil))

		user := &entities.User{ID: "user-1", CustomerID: "cus_123"}
		assert.False(t, svc.IsActive(ctx, user))
		assert.Equal(t, "cus_123", user.CustomerID)
	})

	t.Run("lookup failure clears the reference and the next check short-circuits", func(t *testing.T) {
		provider := new(MockSubscriptionProvider)
		users := new(MockUserRepository)
		publisher := &recordingPublisher{}
		svc := newSubscriptionService(provider, users, publisher)

		provider.On("ListSubscriptions", mock.Anything, "cus_bad").
			Return(billing.NewSliceIterator(nil, errors.New("No such customer: cus_bad"))).Once()
		users.On("UpdateCustomerID", mock.Anything, "user-1", "").Return(nil).Once()

		user := &entities.User{ID: "user-1", CustomerID: "cus_bad"}
		assert.False(t, svc.IsActive(ctx, user))
		assert.Equal(t, "", user.CustomerID)

		assert.False(t, svc.IsActive(ctx, user))

		provider.AssertNumberOfCalls(t, "ListSubscriptions", 1)
		users.AssertExpectations(t)
		assert.Equal(t, []entities.DomainEventType{entities.EventSubscriptionCleared}, publisher.types())
	})

	t.Run("failing to persist the cleared reference still reports inactive", func(t *testing.T) {
		provider := new(MockSubscriptionProvider)
		users := new(MockUserRepository)
		svc := newSubscriptionService(provider, users, &recordingPublisher{})

		provider.On("ListSubscriptions", mock.Anything, "cus_bad").Return(billing.NewSliceIterator(nil, errors.New("timeout")))
		users.On("UpdateCustomerID", mock.Anything, "user-1", "").Return(errors.New("db down"))

		user := &entities.User{ID: "user-1", CustomerID: "cus_bad"}
		assert.False(t, svc.IsActive(ctx, user))
		assert.Equal(t, "", user.CustomerID)
	})
}

func TestSubscriptionService_RequireActive(t *testing.T) {
	svc := newSubscriptionService(new(MockSubscriptionProvider), new(MockUserRepository), &recordingPublisher{})

	err := svc.RequireActive(context.Background(), &entities.User{ID: "user-1"})
	assert.ErrorIs(t, err, services.ErrMembershipRequired)

	err = svc.RequireActive(context.Background(), nil)
	assert.ErrorIs(t, err, services.ErrMembershipRequired)
}

func TestSubscriptionService_StartCheckout(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a single-unit session for the configured price", func(t *testing.T) {
		provider := new(MockSubscriptionProvider)
		svc := newSubscriptionService(provider, new(MockUserRepository), &recordingPublisher{})

		provider.On("CreateCheckoutSession", mock.Anything, entities.CheckoutRequest{
			PriceID:       "price_premium",
			Quantity:      1,
			SuccessURL:    "http://localhost:8080/api/subscription/success?session_id={CHECKOUT_SESSION_ID}",
			CancelURL:     "http://localhost:3000/",
			CustomerEmail: "taro@example.com",
			ClientRef:     "user-1",
		}).Return(&entities.CheckoutSession{ID: "cs_1", URL: "https://checkout.stripe.com/c/cs_1"}, nil)

		url, err := svc.StartCheckout(ctx, &entities.User{ID: "user-1", Email: "taro@example.com"})
		require.NoError(t, err)
		assert.Equal(t, "https://checkout.stripe.com/c/cs_1", url)
	})

	t.Run("provider failure is an external error", func(t *testing.T) {
		provider := new(MockSubscriptionProvider)
		svc := newSubscriptionService(provider, new(MockUserRepository), &recordingPublisher{})
		provider.On("CreateCheckoutSession", mock.Anything, mock.Anything).Return(nil, errors.New("api down"))

		_, err := svc.StartCheckout(ctx, &entities.User{ID: "user-1"})
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeExternal))
		provider.AssertNumberOfCalls(t, "CreateCheckoutSession", 1)
	})
}

func TestSubscriptionService_CompleteCheckout(t *testing.T) {
	ctx := context.Background()

	t.Run("paid session stores the customer", func(t *testing.T) {
		provider := new(MockSubscriptionProvider)
		users := new(MockUserRepository)
		publisher := &recordingPublisher{}
		svc := newSubscriptionService(provider, users, publisher)

		provider.On("RetrieveCheckoutSession", mock.Anything, "cs_1").
			Return(&entities.CheckoutSessionStatus{ID: "cs_1", PaymentStatus: "paid", CustomerID: "cus_123", ClientReferenceID: "user-1"}, nil)
		users.On("UpdateCustomerID", mock.Anything, "user-1", "cus_123").Return(nil)

		user := &entities.User{ID: "user-1"}
		require.NoError(t, svc.CompleteCheckout(ctx, user, "cs_1"))
		assert.Equal(t, "cus_123", user.CustomerID)
		assert.Equal(t, []entities.DomainEventType{entities.EventSubscriptionActivated}, publisher.types())
	})

	t.Run("unpaid session does not store the customer", func(t *testing.T) {
		provider := new(MockSubscriptionProvider)
		users := new(MockUserRepository)
		svc := newSubscriptionService(provider, users, &recordingPublisher{})

		provider.On("RetrieveCheckoutSession", mock.Anything, "cs_1").
			Return(&entities.CheckoutSessionStatus{ID: "cs_1", PaymentStatus: "unpaid", CustomerID: "cus_123", ClientReferenceID: "user-1"}, nil)

		user := &entities.User{ID: "user-1"}
		err := svc.CompleteCheckout(ctx, user, "cs_1")
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
		assert.Empty(t, user.CustomerID)
		users.AssertNotCalled(t, "UpdateCustomerID", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("session started by another account is refused", func(t *testing.T) {
		provider := new(MockSubscriptionProvider)
		users := new(MockUserRepository)
		publisher := &recordingPublisher{}
		svc := newSubscriptionService(provider, users, publisher)

		provider.On("RetrieveCheckoutSession", mock.Anything, "cs_other").
			Return(&entities.CheckoutSessionStatus{ID: "cs_other", PaymentStatus: "paid", CustomerID: "cus_victim", ClientReferenceID: "user-9"}, nil)

		user := &entities.User{ID: "user-1"}
		err := svc.CompleteCheckout(ctx, user, "cs_other")
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeUnauthorized))
		assert.Empty(t, user.CustomerID)
		assert.Empty(t, publisher.types())
		users.AssertNotCalled(t, "UpdateCustomerID", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("missing session id is rejected without a provider call", func(t *testing.T) {
		provider := new(MockSubscriptionProvider)
		svc := newSubscriptionService(provider, new(MockUserRepository), &recordingPublisher{})

		err := svc.CompleteCheckout(ctx, &entities.User{ID: "user-1"}, "")
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
		provider.AssertNotCalled(t, "RetrieveCheckoutSession", mock.Anything, mock.Anything)
	})

	t.Run("retrieve failure is an external error", func(t *testing.T) {
		provider := new(MockSubscriptionProvider)
		svc := newSubscriptionService(provider, new(MockUserRepository), &recordingPublisher{})
		provider.On("RetrieveCheckoutSession", mock.Anything, "cs_x").Return(nil, errors.New("no such session"))

		err := svc.CompleteCheckout(ctx, &entities.User{ID: "user-1"}, "cs_x")
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeExternal))
	})
}

func TestSubscriptionService_PortalURL(t *testing.T) {
	ctx := context.Background()

	t.Run("without a customer", func(t *testing.T) {
		provider := new(MockSubscriptionProvider)
		svc := newSubscriptionService(provider, new(MockUserRepository), &recordingPublisher{})

		_, err := svc.PortalURL(ctx, &entities.User{ID: "user-1"})
		assert.ErrorIs(t, err, services.ErrNoCustomer)
		provider.AssertNotCalled(t, "CreatePortalSession", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("returns to the premium page", func(t *testing.T) {
		provider := new(MockSubscriptionProvider)
		svc := newSubscriptionService(provider, new(MockUserRepository), &recordingPublisher{})
		provider.On("CreatePortalSession", mock.Anything, "cus_123", "http://localhost:3000/premium").
			Return(&entities.PortalSession{URL: "https://billing.stripe.com/p/session"}, nil)

		url, err := svc.PortalURL(ctx, &entities.User{ID: "user-1", CustomerID: "cus_123"})
		require.NoError(t, err)
		assert.Equal(t, "https://billing.stripe.com/p/session", url)
	})
}
