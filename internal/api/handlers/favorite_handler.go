package handlers

import (
	"context"
	"net/http"

	"github.com/nagoyameshi/backend/internal/domain/entities"
)

// FavoriteService defines the favorite operations used by the handler
type FavoriteService interface {
	Toggle(ctx context.Context, user *entities.User, restaurantID string) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]*entities.Restaurant, error)
}

// FavoriteHandler handles favorite requests
type FavoriteHandler struct {
	service FavoriteService
}

// NewFavoriteHandler creates a new favorite handler
func NewFavoriteHandler(service FavoriteService) *FavoriteHandler {
	return &FavoriteHandler{service: service}
}

// Toggle handles POST /api/restaurants/{id}/favorite
func (h *FavoriteHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	restaurantID := r.PathValue("id")
	favorite, err := h.service.Toggle(r.Context(), user, restaurantID)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"restaurant_id": restaurantID,
		"is_favorite":   favorite,
	})
}

// List handles GET /api/me/favorites
func (h *FavoriteHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	restaurants, err := h.service.ListByUser(r.Context(), user.ID)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"restaurants": restaurants,
		"count":       len(restaurants),
	})
}
