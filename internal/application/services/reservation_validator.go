package services

import (
	"time"

	"github.com/nagoyameshi/backend/internal/domain/entities"
	apperrors "github.com/nagoyameshi/backend/pkg/errors"
)

// Reservation rejection messages, in the order the checks run.
const (
	MsgReservationNotFuture    = "must choose a future date/time"
	MsgReservationOutsideHours = "must choose a time within business hours"
	MsgReservationClosingDay   = "cannot reserve on a regular closing day"
	MsgReservationConflict     = "another reservation exists within 2 hours"
)

// ReservationValidator decides whether a candidate reservation may be stored.
// Clock positions and weekdays are read in Location, the zone restaurants operate in.
type ReservationValidator struct {
	Location *time.Location
}

// NewReservationValidator creates a validator for the given zone; nil means UTC
func NewReservationValidator(loc *time.Location) *ReservationValidator {
	if loc == nil {
		loc = time.UTC
	}
	return &ReservationValidator{Location: loc}
}

// Validate returns nil when the candidate is acceptable, otherwise a validation
// error carrying the first failing reason. It reads no clock besides now.
//
// The conflict check looks at every reservation in existing regardless of
// restaurant or user: the two hour window is store wide.
func (v *ReservationValidator) Validate(now time.Time, candidate *entities.Reservation, restaurant *entities.Restaurant, existing []*entities.Reservation) error {
	at := candidate.ReservationDatetime

	if !at.After(now) {
		return apperrors.NewValidationError(MsgReservationNotFuture)
	}

	local := at.In(v.location())

	tod := entities.TimeOfDayOf(local)
	if tod.Before(restaurant.OpeningTime) || !tod.Before(restaurant.ClosingTime) {
		return apperrors.NewValidationError(MsgReservationOutsideHours)
	}

	if restaurant.ClosedOn(entities.Weekday(local)) {
		return apperrors.NewValidationError(MsgReservationClosingDay)
	}

	for _, other := range existing {
		if other == nil || (candidate.ID != "" && other.ID == candidate.ID) {
			continue
		}
		if withinWindow(at, other.ReservationDatetime, entities.ReservationConflictWindow) {
			return apperrors.NewValidationError(MsgReservationConflict)
		}
	}

	return nil
}

func (v *ReservationValidator) location() *time.Location {
	if v.Location == nil {
		return time.UTC
	}
	return v.Location
}

func withinWindow(a, b time.Time, window time.Duration) bool {
	d := a.Sub(b)
	if d < 0 {
		d = -d
	}
	return d <= window
}
