package providers

import (
	"context"

	"github.com/nagoyameshi/backend/internal/domain/entities"
)

// EmailSender defines the interface for outbound email
type EmailSender interface {
	// Send delivers a message once; failures are not retried
	Send(ctx context.Context, msg *entities.EmailMessage) error
}
