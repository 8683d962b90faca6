package services

import (
	"context"

	"github.com/nagoyameshi/backend/internal/domain/entities"
	"github.com/nagoyameshi/backend/internal/domain/providers"
	"github.com/nagoyameshi/backend/internal/domain/repositories"
	"github.com/nagoyameshi/backend/internal/infrastructure/observability"
	apperrors "github.com/nagoyameshi/backend/pkg/errors"
)

// ErrMembershipRequired is returned by member-only operations for users without an active subscription
var ErrMembershipRequired = apperrors.NewUnauthorizedError("premium membership required")

// ErrNoCustomer is returned when a billing operation needs a customer reference the user does not have
var ErrNoCustomer = apperrors.NewValidationError("no billing customer on record")

// checkoutSessionPlaceholder is expanded by the billing provider on redirect
const checkoutSessionPlaceholder = "{CHECKOUT_SESSION_ID}"

// BillingSettings holds the URLs and plan used by checkout and portal sessions
type BillingSettings struct {
	PriceID    string
	BaseURL    string
	CancelURL  string
	PremiumURL string
}

// SubscriptionService answers whether a user is a paying member and drives checkout
type SubscriptionService struct {
	provider  providers.SubscriptionProvider
	users     repositories.UserRepository
	publisher providers.EventPublisher
	metrics   *observability.Metrics
	settings  BillingSettings
}

// NewSubscriptionService creates a new subscription service
func NewSubscriptionService(
	provider providers.SubscriptionProvider,
	users repositories.UserRepository,
	publisher providers.EventPublisher,
	metrics *observability.Metrics,
	settings BillingSettings,
) *SubscriptionService {
	return &SubscriptionService{
		provider:  provider,
		users:     users,
		publisher: publisher,
		metrics:   metrics,
		settings:  settings,
	}
}

// IsActive reports whether the user holds an active subscription.
//
// Users without a customer reference are inactive and the provider is not
// consulted. Any provider failure counts as inactive and clears the cached
// customer reference, so the next check short-circuits. Nothing is retried.
func (s *SubscriptionService) IsActive(ctx context.Context, user *entities.User) bool {
	if !user.HasCustomer() {
		observability.RecordGateCheck(ctx, s.metrics, false, false)
		return false
	}

	it := s.provider.ListSubscriptions(ctx, user.CustomerID)
	for it.Next() {
		if it.Subscription().IsActive() {
			observability.RecordGateCheck(ctx, s.metrics, true, false)
			return true
		}
	}

	if err := it.Err(); err != nil {
		s.clearCustomer(ctx, user, err)
		observability.RecordGateCheck(ctx, s.metrics, false, true)
		return false
	}

	observability.RecordGateCheck(ctx, s.metrics, false, false)
	return false
}

// RequireActive returns ErrMembershipRequired unless the user is an active member
func (s *SubscriptionService) RequireActive(ctx context.Context, user *entities.User) error {
	if user == nil || !s.IsActive(ctx, user) {
		return ErrMembershipRequired
	}
	return nil
}

func (s *SubscriptionService) clearCustomer(ctx context.Context, user *entities.User, cause error) {
	logger := observability.LoggerFromContext(ctx)
	logger.Warn().Err(cause).Str("user_id", user.ID).Msg("subscription lookup failed, clearing customer reference")

	previous := user.CustomerID
	if err := s.users.UpdateCustomerID(ctx, user.ID, ""); err != nil {
		logger.Error().Err(err).Str("user_id", user.ID).Msg("failed to clear customer reference")
	}
	user.CustomerID = ""

	publishEvent(ctx, s.publisher, entities.NewDomainEvent(
		entities.EventSubscriptionCleared, user.ID, "", user.ID,
		map[string]interface{}{"customer_id": previous},
	))
}

// StartCheckout creates a hosted checkout session for one unit of the configured plan and returns its URL
func (s *SubscriptionService) StartCheckout(ctx context.Context, user *entities.User) (string, error) {
	session, err := s.provider.CreateCheckoutSession(ctx, entities.CheckoutRequest{
		PriceID:       s.settings.PriceID,
		Quantity:      1,
		SuccessURL:    s.successURL(),
		CancelURL:     s.settings.CancelURL,
		CustomerEmail: user.Email,
		ClientRef:     user.ID,
	})
	if err != nil {
		return "", apperrors.NewExternalError("failed to create checkout session", err)
	}
	return session.URL, nil
}

// CompleteCheckout records the customer reference of a paid checkout session on the user
func (s *SubscriptionService) CompleteCheckout(ctx context.Context, user *entities.User, sessionID string) error {
	if sessionID == "" {
		return apperrors.NewValidationError("session_id is required")
	}

	session, err := s.provider.RetrieveCheckoutSession(ctx, sessionID)
	if err != nil {
		return apperrors.NewExternalError("failed to retrieve checkout session", err)
	}
	if session.ClientReferenceID != user.ID {
		observability.LoggerFromContext(ctx).Warn().Str("user_id", user.ID).Str("session_id", sessionID).
			Msg("checkout session was started by another account")
		return apperrors.NewUnauthorizedError("checkout session belongs to another account")
	}
	if !session.Paid() {
		return apperrors.NewValidationError("payment has not completed")
	}
	if session.CustomerID == "" {
		return apperrors.NewExternalError("checkout session has no customer", nil)
	}

	if err := s.users.UpdateCustomerID(ctx, user.ID, session.CustomerID); err != nil {
		return err
	}
	user.CustomerID = session.CustomerID

	observability.LoggerFromContext(ctx).Info().Str("user_id", user.ID).Msg("subscription activated")
	publishEvent(ctx, s.publisher, entities.NewDomainEvent(
		entities.EventSubscriptionActivated, user.ID, "", user.ID,
		map[string]interface{}{"session_id": sessionID},
	))
	return nil
}

// PortalURL creates a billing management session for a user with a customer reference
func (s *SubscriptionService) PortalURL(ctx context.Context, user *entities.User) (string, error) {
	if !user.HasCustomer() {
		return "", ErrNoCustomer
	}

	session, err := s.provider.CreatePortalSession(ctx, user.CustomerID, s.settings.PremiumURL)
	if err != nil {
		return "", apperrors.NewExternalError("failed to create billing portal session", err)
	}
	return session.URL, nil
}

func (s *SubscriptionService) successURL() string {
	return s.settings.BaseURL + "/api/subscription/success?session_id=" + checkoutSessionPlaceholder
}
