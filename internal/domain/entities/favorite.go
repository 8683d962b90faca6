package entities

import "time"

// Favorite marks a restaurant as saved by a user
type Favorite struct {
	ID           string    `json:"id" db:"id"`
	UserID       string    `json:"user_id" db:"user_id"`
	RestaurantID string    `json:"restaurant_id" db:"restaurant_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
