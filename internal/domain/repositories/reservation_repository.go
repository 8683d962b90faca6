package repositories

import (
	"context"
	"time"

	"github.com/nagoyameshi/backend/internal/domain/entities"
)

// ReservationCheck inspects the reservations near a candidate before it is inserted.
// Returning an error aborts the insert.
type ReservationCheck func(existing []*entities.Reservation) error

// ReservationRepository defines the interface for reservation data operations
type ReservationRepository interface {
	// CreateExclusive inserts a reservation while holding a lock that serializes
	// all reservation writes. check receives every reservation whose datetime lies
	// within the conflict window of the candidate, inclusive.
	CreateExclusive(ctx context.Context, reservation *entities.Reservation, check ReservationCheck) error

	// GetByID retrieves a reservation by ID
	GetByID(ctx context.Context, id string) (*entities.Reservation, error)

	// Delete removes a reservation
	Delete(ctx context.Context, id string) error

	// ListByUser returns a user's reservations, newest first
	ListByUser(ctx context.Context, userID string) ([]*entities.Reservation, error)

	// ListBetween returns reservations with from <= datetime <= to
	ListBetween(ctx context.Context, from, to time.Time) ([]*entities.Reservation, error)
}
