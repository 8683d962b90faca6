package services

import (
	"context"

	"github.com/nagoyameshi/backend/internal/domain/entities"
	"github.com/nagoyameshi/backend/internal/domain/providers"
	"github.com/nagoyameshi/backend/internal/infrastructure/observability"
)

// publishEvent publishes after a committed write. A failed publish is logged and
// never fails the request.
func publishEvent(ctx context.Context, publisher providers.EventPublisher, event *entities.DomainEvent) {
	if publisher == nil || event == nil {
		return
	}
	if err := publisher.Publish(ctx, providers.TopicFor(event.Type), event); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).
			Str("event_type", string(event.Type)).
			Str("aggregate_id", event.AggregateID).
			Msg("failed to publish domain event")
	}
}
