package entities

import (
	"time"

	"github.com/google/uuid"
)

// DomainEventType names a state change other components may react to
type DomainEventType string

const (
	EventReservationCreated    DomainEventType = "reservation.created"
	EventReservationCancelled  DomainEventType = "reservation.cancelled"
	EventReviewCreated         DomainEventType = "review.created"
	EventReviewUpdated         DomainEventType = "review.updated"
	EventReviewDeleted         DomainEventType = "review.deleted"
	EventFavoriteAdded         DomainEventType = "favorite.added"
	EventFavoriteRemoved       DomainEventType = "favorite.removed"
	EventSubscriptionActivated DomainEventType = "subscription.activated"
	EventSubscriptionCleared   DomainEventType = "subscription.cleared"
)

// DomainEvent is published after a successful write
type DomainEvent struct {
	ID           string                 `json:"id"`
	Type         DomainEventType        `json:"type"`
	AggregateID  string                 `json:"aggregate_id"`
	RestaurantID string                 `json:"restaurant_id,omitempty"`
	UserID       string                 `json:"user_id,omitempty"`
	Payload      map[string]interface{} `json:"payload,omitempty"`
	OccurredAt   time.Time              `json:"occurred_at"`
}

// NewDomainEvent creates a new event stamped with the current time
func NewDomainEvent(eventType DomainEventType, aggregateID, restaurantID, userID string, payload map[string]interface{}) *DomainEvent {
	return &DomainEvent{
		ID:           uuid.NewString(),
		Type:         eventType,
		AggregateID:  aggregateID,
		RestaurantID: restaurantID,
		UserID:       userID,
		Payload:      payload,
		OccurredAt:   time.Now().UTC(),
	}
}
