package billing

import (
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/nagoyameshi/backend/internal/domain/providers"
)

// ErrMissingSecretKey is returned when no Stripe key is configured and the mock is not allowed
var ErrMissingSecretKey = errors.New("STRIPE_SECRET_KEY is not set")

// ProviderConfig configures the billing provider
type ProviderConfig struct {
	StripeSecretKey string
	AllowMock       bool
}

// NewSubscriptionProvider returns the Stripe adapter when a key is configured.
// Without a key the mock is used only if AllowMock is set.
func NewSubscriptionProvider(cfg ProviderConfig) (providers.SubscriptionProvider, error) {
	if cfg.StripeSecretKey != "" {
		return NewStripeAdapter(cfg.StripeSecretKey), nil
	}
	if cfg.AllowMock {
		log.Warn().Msg("STRIPE_SECRET_KEY not set, using mock billing provider")
		return NewMockAdapter(), nil
	}
	return nil, ErrMissingSecretKey
}
