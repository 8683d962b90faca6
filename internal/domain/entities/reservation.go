package entities

import (
	"time"
)

// ReservationConflictWindow is the minimum distance between any two reservations.
const ReservationConflictWindow = 2 * time.Hour

// Reservation is a booked table at a restaurant
type Reservation struct {
	ID                  string    `json:"id" db:"id"`
	RestaurantID        string    `json:"restaurant_id" db:"restaurant_id"`
	RestaurantName      string    `json:"restaurant_name,omitempty" db:"restaurant_name"`
	UserID              string    `json:"user_id" db:"user_id"`
	ReservationDatetime time.Time `json:"reservation_datetime" db:"reservation_datetime"`
	NumberOfPersons     int       `json:"number_of_persons" db:"number_of_persons"`
	Comment             string    `json:"comment" db:"comment"`
	CreatedAt           time.Time `json:"created_at" db:"created_at"`
}
