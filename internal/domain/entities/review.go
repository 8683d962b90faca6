package entities

import (
	"math"
	"time"
)

// Review is a member's rating of a restaurant
type Review struct {
	ID           string    `json:"id" db:"id"`
	RestaurantID string    `json:"restaurant_id" db:"restaurant_id"`
	UserID       string    `json:"user_id" db:"user_id"`
	Username     string    `json:"username,omitempty" db:"username"`
	Stars        int       `json:"stars" db:"stars"`
	Comment      string    `json:"comment" db:"comment"`
	VisitedDate  time.Time `json:"visited_date" db:"visited_date"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Star is one glyph of the rating display
type Star string

const (
	StarFull  Star = "full"
	StarHalf  Star = "half"
	StarEmpty Star = "empty"
)

// MaxStars is the length of a rating display
const MaxStars = 5

// ReviewSummary aggregates the reviews of a restaurant
type ReviewSummary struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
	Display []Star  `json:"star_display"`
}

// NewReviewSummary rounds the average to two decimals for display; the stars use the unrounded average
func NewReviewSummary(average float64, count int) ReviewSummary {
	if count == 0 {
		average = 0
	}
	return ReviewSummary{
		Average: math.Round(average*100) / 100,
		Count:   count,
		Display: StarDisplay(average),
	}
}

// starEpsilon absorbs float drift such as 3.4-3 == 0.3999999999999999
const starEpsilon = 1e-9

// StarDisplay renders an average as full, half and empty stars.
// Fractions below 0.4 round down, 0.4 up to 0.6 become a half star, anything higher rounds up.
func StarDisplay(average float64) []Star {
	if average < 0 {
		average = 0
	}
	if average > MaxStars {
		average = MaxStars
	}

	whole := int(math.Floor(average))
	fraction := average - float64(whole)

	display := make([]Star, 0, MaxStars)
	switch {
	case fraction < 0.4-starEpsilon:
		display = appendStars(display, StarFull, whole)
	case fraction < 0.6-starEpsilon:
		display = appendStars(display, StarFull, whole)
		display = append(display, StarHalf)
	default:
		display = appendStars(display, StarFull, whole+1)
	}
	return appendStars(display, StarEmpty, MaxStars-len(display))
}

func appendStars(stars []Star, s Star, n int) []Star {
	for i := 0; i < n; i++ {
		stars = append(stars, s)
	}
	return stars
}
