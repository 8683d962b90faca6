package providers

import (
	"context"

	"github.com/nagoyameshi/backend/internal/domain/entities"
)

// SubscriptionProvider defines the interface to the subscription billing provider
type SubscriptionProvider interface {
	// ListSubscriptions lists every subscription of a customer. Pages are fetched
	// lazily as the iterator advances; lookup failures surface from Err.
	ListSubscriptions(ctx context.Context, customerID string) SubscriptionIterator

	// CreateCheckoutSession creates a hosted checkout page for a subscription
	CreateCheckoutSession(ctx context.Context, req entities.CheckoutRequest) (*entities.CheckoutSession, error)

	// RetrieveCheckoutSession fetches a checkout session by ID
	RetrieveCheckoutSession(ctx context.Context, sessionID string) (*entities.CheckoutSessionStatus, error)

	// CreatePortalSession creates a hosted billing management page
	CreatePortalSession(ctx context.Context, customerID, returnURL string) (*entities.PortalSession, error)
}

// SubscriptionIterator walks a provider-paginated subscription list
type SubscriptionIterator interface {
	Next() bool
	Subscription() *entities.BillingSubscription
	Err() error
}
