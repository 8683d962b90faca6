package billing

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/subscription"

	"github.com/nagoyameshi/backend/internal/domain/entities"
	"github.com/nagoyameshi/backend/internal/domain/providers"
)

// StripeAdapter implements SubscriptionProvider for Stripe
type StripeAdapter struct {
	api *client.API
}

// NewStripeAdapter creates a new Stripe adapter. Every call is a single attempt.
func NewStripeAdapter(secretKey string) providers.SubscriptionProvider {
	return newStripeAdapter(secretKey, nil)
}

// newStripeAdapter builds the client with network retries disabled; apiURL overrides the API endpoint when set
func newStripeAdapter(secretKey string, apiURL *string) *StripeAdapter {
	noRetries := func(url *string) *stripe.BackendConfig {
		return &stripe.BackendConfig{URL: url, MaxNetworkRetries: stripe.Int64(0)}
	}
	sc := &client.API{}
	sc.Init(secretKey, &stripe.Backends{
		API:     stripe.GetBackendWithConfig(stripe.APIBackend, noRetries(apiURL)),
		Connect: stripe.GetBackendWithConfig(stripe.ConnectBackend, noRetries(nil)),
		Uploads: stripe.GetBackendWithConfig(stripe.UploadsBackend, noRetries(nil)),
	})
	return &StripeAdapter{api: sc}
}

// ListSubscriptions lists a customer's subscriptions; pages are fetched as the iterator advances
func (a *StripeAdapter) ListSubscriptions(ctx context.Context, customerID string) providers.SubscriptionIterator {
	params := &stripe.SubscriptionListParams{
		Customer: stripe.String(customerID),
	}
	params.Context = ctx
	return &stripeSubscriptionIter{iter: a.api.Subscriptions.List(params)}
}

// CreateCheckoutSession creates a subscription-mode checkout session
func (a *StripeAdapter) CreateCheckoutSession(ctx context.Context, req entities.CheckoutRequest) (*entities.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(req.PriceID),
				Quantity: stripe.Int64(req.Quantity),
			},
		},
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
	}
	if req.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(req.CustomerEmail)
	}
	if req.ClientRef != "" {
		params.ClientReferenceID = stripe.String(req.ClientRef)
	}
	params.Context = ctx

	s, err := a.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe checkout session: %w", err)
	}
	return &entities.CheckoutSession{ID: s.ID, URL: s.URL}, nil
}

// RetrieveCheckoutSession fetches a checkout session
func (a *StripeAdapter) RetrieveCheckoutSession(ctx context.Context, sessionID string) (*entities.CheckoutSessionStatus, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	s, err := a.api.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		return nil, fmt.Errorf("stripe retrieve session %s: %w", sessionID, err)
	}

	status := &entities.CheckoutSessionStatus{
		ID:                s.ID,
		PaymentStatus:     string(s.PaymentStatus),
		ClientReferenceID: s.ClientReferenceID,
	}
	if s.Customer != nil {
		status.CustomerID = s.Customer.ID
	}
	return status, nil
}

// CreatePortalSession creates a billing portal session
func (a *StripeAdapter) CreatePortalSession(ctx context.Context, customerID, returnURL string) (*entities.PortalSession, error) {
	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(returnURL),
	}
	params.Context = ctx

	s, err := a.api.BillingPortalSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe portal session: %w", err)
	}
	return &entities.PortalSession{URL: s.URL}, nil
}

type stripeSubscriptionIter struct {
	iter *subscription.Iter
}

func (i *stripeSubscriptionIter) Next() bool { return i.iter.Next() }

func (i *stripeSubscriptionIter) Err() error { return i.iter.Err() }

func (i *stripeSubscriptionIter) Subscription() *entities.BillingSubscription {
	s := i.iter.Subscription()
	if s == nil {
		return nil
	}
	return &entities.BillingSubscription{ID: s.ID, Status: string(s.Status)}
}
