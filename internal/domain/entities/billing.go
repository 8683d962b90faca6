package entities

// Billing provider status values
const (
	SubscriptionStatusActive = "active"
	PaymentStatusPaid        = "paid"
)

// BillingSubscription is a subscription record as reported by the billing provider
type BillingSubscription struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// IsActive reports whether the provider considers the subscription active
func (s *BillingSubscription) IsActive() bool {
	return s != nil && s.Status == SubscriptionStatusActive
}

// CheckoutRequest describes a hosted checkout session to create
type CheckoutRequest struct {
	PriceID       string
	Quantity      int64
	SuccessURL    string
	CancelURL     string
	CustomerEmail string
	ClientRef     string
}

// CheckoutSession is a created hosted checkout page
type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// CheckoutSessionStatus is a retrieved checkout session
type CheckoutSessionStatus struct {
	ID                string `json:"id"`
	PaymentStatus     string `json:"payment_status"`
	CustomerID        string `json:"customer"`
	ClientReferenceID string `json:"client_reference_id"`
}

// Paid reports whether the payment has completed
func (s *CheckoutSessionStatus) Paid() bool {
	return s != nil && s.PaymentStatus == PaymentStatusPaid
}

// PortalSession is a hosted billing management page
type PortalSession struct {
	URL string `json:"url"`
}
