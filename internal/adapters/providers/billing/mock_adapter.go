package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/nagoyameshi/backend/internal/domain/entities"
	"github.com/nagoyameshi/backend/internal/domain/providers"
)

const mockCustomerPrefix = "cus_mock_"

// ErrUnknownCustomer is returned for customer references the mock never issued
var ErrUnknownCustomer = errors.New("no such customer")

// MockAdapter is an in-memory billing provider for local development.
// Every checkout is paid immediately and yields an active subscription.
type MockAdapter struct {
	mu       sync.Mutex
	sessions map[string]*entities.CheckoutSessionStatus
}

// NewMockAdapter creates a mock billing provider
func NewMockAdapter() providers.SubscriptionProvider {
	return &MockAdapter{sessions: make(map[string]*entities.CheckoutSessionStatus)}
}

// ListSubscriptions reports one active subscription for customers created by this mock
func (m *MockAdapter) ListSubscriptions(ctx context.Context, customerID string) providers.SubscriptionIterator {
	if !strings.HasPrefix(customerID, mockCustomerPrefix) {
		return NewSliceIterator(nil, fmt.Errorf("%w: %s", ErrUnknownCustomer, customerID))
	}
	return NewSliceIterator([]*entities.BillingSubscription{
		{ID: "sub_" + strings.TrimPrefix(customerID, mockCustomerPrefix), Status: entities.SubscriptionStatusActive},
	}, nil)
}

// CreateCheckoutSession returns a session whose URL is the success URL itself
func (m *MockAdapter) CreateCheckoutSession(ctx context.Context, req entities.CheckoutRequest) (*entities.CheckoutSession, error) {
	id := fmt.Sprintf("cs_mock_%d", time.Now().UnixNano())

	m.mu.Lock()
	m.sessions[id] = &entities.CheckoutSessionStatus{
		ID:                id,
		PaymentStatus:     entities.PaymentStatusPaid,
		CustomerID:        mockCustomerPrefix + strings.TrimPrefix(id, "cs_mock_"),
		ClientReferenceID: req.ClientRef,
	}
	m.mu.Unlock()

	return &entities.CheckoutSession{
		ID:  id,
		URL: strings.ReplaceAll(req.SuccessURL, "{CHECKOUT_SESSION_ID}", id),
	}, nil
}

// RetrieveCheckoutSession returns a session created by this mock
func (m *MockAdapter) RetrieveCheckoutSession(ctx context.Context, sessionID string) (*entities.CheckoutSessionStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("no such checkout session: %s", sessionID)
	}
	copied := *s
	return &copied, nil
}

// CreatePortalSession points straight back at the return URL
func (m *MockAdapter) CreatePortalSession(ctx context.Context, customerID, returnURL string) (*entities.PortalSession, error) {
	if !strings.HasPrefix(customerID, mockCustomerPrefix) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCustomer, customerID)
	}
	return &entities.PortalSession{URL: returnURL}, nil
}
