package entities

import "time"

// Weekday numbers follow the stored convention: Monday=0 ... Sunday=6.
const (
	Monday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// Weekday converts Go's Sunday=0 numbering to the stored Monday=0 convention
func Weekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}
