package providers

import (
	"context"

	"github.com/nagoyameshi/backend/internal/domain/entities"
)

// EventPublisher publishes domain events
type EventPublisher interface {
	// Publish publishes an event on a topic
	Publish(ctx context.Context, topic string, event *entities.DomainEvent) error

	// Close flushes and releases the publisher
	Close() error
}

// EventBus is an EventPublisher that in-process consumers can also subscribe to
type EventBus interface {
	EventPublisher

	// Subscribe subscribes to events on a topic until ctx is cancelled
	Subscribe(ctx context.Context, topic string) (<-chan *entities.DomainEvent, error)

	// Unsubscribe drops every subscriber of a topic
	Unsubscribe(ctx context.Context, topic string) error
}

// Event topics
const (
	TopicReservations  = "nagoyameshi:reservations"
	TopicReviews       = "nagoyameshi:reviews"
	TopicFavorites     = "nagoyameshi:favorites"
	TopicSubscriptions = "nagoyameshi:subscriptions"
)

// TopicFor returns the topic an event type is published on
func TopicFor(eventType entities.DomainEventType) string {
	switch eventType {
	case entities.EventReservationCreated, entities.EventReservationCancelled:
		return TopicReservations
	case entities.EventReviewCreated, entities.EventReviewUpdated, entities.EventReviewDeleted:
		return TopicReviews
	case entities.EventFavoriteAdded, entities.EventFavoriteRemoved:
		return TopicFavorites
	default:
		return TopicSubscriptions
	}
}
