package entities

import (
	"time"
)

// Category groups restaurants by cuisine
type Category struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// ClosingDay is a weekday on which a restaurant never takes reservations
type ClosingDay struct {
	ID        int64  `json:"id" db:"id"`
	Name      string `json:"name" db:"name"`
	DayOfWeek int    `json:"day_of_week" db:"day_of_week"`
}

// RestaurantPhoto is an additional image shown on the detail page
type RestaurantPhoto struct {
	ID           int64  `json:"id" db:"id"`
	RestaurantID string `json:"restaurant_id" db:"restaurant_id"`
	ImageURL     string `json:"image_url" db:"image_url"`
	Caption      string `json:"caption" db:"caption"`
	SortOrder    int    `json:"sort_order" db:"sort_order"`
}

// Restaurant represents a listed restaurant
type Restaurant struct {
	ID            string            `json:"id" db:"id"`
	Name          string            `json:"name" db:"name"`
	CategoryID    int64             `json:"category_id" db:"category_id"`
	CategoryName  string            `json:"category_name,omitempty" db:"category_name"`
	Description   string            `json:"description" db:"description"`
	ImageURL      string            `json:"image_url" db:"image_url"`
	FloorPrice    int               `json:"floor_price" db:"floor_price"`
	MaximumPrice  int               `json:"maximum_price" db:"maximum_price"`
	OpeningTime   TimeOfDay         `json:"opening_time" db:"opening_time"`
	ClosingTime   TimeOfDay         `json:"closing_time" db:"closing_time"`
	PostalCode    string            `json:"postal_code" db:"postal_code"`
	City          string            `json:"city" db:"city"`
	StreetAddress string            `json:"street_address" db:"street_address"`
	PhoneNumber   string            `json:"phone_number" db:"phone_number"`
	ClosingDays   []ClosingDay      `json:"closing_days" db:"-"`
	Photos        []RestaurantPhoto `json:"photos,omitempty" db:"-"`
	CreatedAt     time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at" db:"updated_at"`
}

// ClosedOn reports whether the weekday (Monday=0) is a regular closing day
func (r *Restaurant) ClosedOn(weekday int) bool {
	for _, d := range r.ClosingDays {
		if d.DayOfWeek == weekday {
			return true
		}
	}
	return false
}

// RestaurantDetail is a restaurant as seen by one (possibly anonymous) user
type RestaurantDetail struct {
	*Restaurant
	Reviews    ReviewSummary `json:"reviews"`
	IsFavorite bool          `json:"is_favorite"`
}
