package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/nagoyameshi/backend/internal/application/services"
	"github.com/nagoyameshi/backend/internal/domain/entities"
)

// datetime-local form values carry no zone
const localDatetimeLayout = "2006-01-02T15:04"

// ReservationService defines the reservation operations used by the handler
type ReservationService interface {
	Create(ctx context.Context, user *entities.User, restaurantID string, input services.ReservationInput) (*entities.Reservation, error)
	ListByUser(ctx context.Context, userID string) ([]*entities.Reservation, error)
	Cancel(ctx context.Context, user *entities.User, id string) error
	QRCode(ctx context.Context, user *entities.User, id string) ([]byte, error)
}

// ReservationHandler handles reservation requests
type ReservationHandler struct {
	service  ReservationService
	location *time.Location
}

// NewReservationHandler creates a new reservation handler. Datetimes sent without
// an offset are read in location.
func NewReservationHandler(service ReservationService, location *time.Location) *ReservationHandler {
	if location == nil {
		location = time.UTC
	}
	return &ReservationHandler{service: service, location: location}
}

type reservationRequest struct {
	ReservationDatetime string `json:"reservation_datetime"`
	NumberOfPersons     int    `json:"number_of_persons"`
	Comment             string `json:"comment"`
}

// Create handles POST /api/restaurants/{id}/reservations
func (h *ReservationHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	var payload reservationRequest
	if !decodeJSON(w, r, &payload) {
		return
	}

	when, err := h.parseDatetime(payload.ReservationDatetime)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "reservation_datetime must be an ISO 8601 date and time")
		return
	}

	reservation, err := h.service.Create(r.Context(), user, r.PathValue("id"), services.ReservationInput{
		ReservationDatetime: when,
		NumberOfPersons:     payload.NumberOfPersons,
		Comment:             payload.Comment,
	})
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, reservation)
}

// List handles GET /api/me/reservations
func (h *ReservationHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	reservations, err := h.service.ListByUser(r.Context(), user.ID)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"reservations": reservations,
		"count":        len(reservations),
	})
}

// Cancel handles DELETE /api/reservations/{id}
func (h *ReservationHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.service.Cancel(r.Context(), user, r.PathValue("id")); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// QRCode handles GET /api/reservations/{id}/qrcode
func (h *ReservationHandler) QRCode(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	png, err := h.service.QRCode(r.Context(), user, r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

func (h *ReservationHandler) parseDatetime(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.ParseInLocation(localDatetimeLayout, raw, h.location)
}
