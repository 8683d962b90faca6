package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/nagoyameshi/backend/internal/api/middleware"
	"github.com/nagoyameshi/backend/internal/domain/entities"
	"github.com/nagoyameshi/backend/internal/domain/repositories"
)

const defaultRestaurantPageSize = 20

// RestaurantService defines the catalogue operations used by the handler
type RestaurantService interface {
	Search(ctx context.Context, filter repositories.RestaurantFilter) ([]*entities.Restaurant, error)
	Get(ctx context.Context, id, userID string) (*entities.RestaurantDetail, error)
	Categories(ctx context.Context) ([]*entities.Category, error)
}

// RestaurantHandler handles restaurant catalogue requests
type RestaurantHandler struct {
	service RestaurantService
}

// NewRestaurantHandler creates a new restaurant handler
func NewRestaurantHandler(service RestaurantService) *RestaurantHandler {
	return &RestaurantHandler{service: service}
}

// Search handles GET /api/restaurants
func (h *RestaurantHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := repositories.RestaurantFilter{
		Keyword:  strings.TrimSpace(query.Get("keyword")),
		Category: strings.TrimSpace(query.Get("category")),
		Limit:    defaultRestaurantPageSize,
	}

	var err error
	if filter.FloorPrice, err = optionalInt(query.Get("floor_price")); err != nil {
		respondWithError(w, http.StatusBadRequest, "floor_price must be a non-negative integer")
		return
	}
	if filter.MaximumPrice, err = optionalInt(query.Get("maximum_price")); err != nil {
		respondWithError(w, http.StatusBadRequest, "maximum_price must be a non-negative integer")
		return
	}
	if limit, err := optionalInt(query.Get("limit")); err != nil {
		respondWithError(w, http.StatusBadRequest, "limit must be a non-negative integer")
		return
	} else if limit != nil && *limit > 0 {
		filter.Limit = *limit
	}
	if offset, err := optionalInt(query.Get("offset")); err != nil {
		respondWithError(w, http.StatusBadRequest, "offset must be a non-negative integer")
		return
	} else if offset != nil {
		filter.Offset = *offset
	}

	restaurants, err := h.service.Search(r.Context(), filter)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"restaurants": restaurants,
		"count":       len(restaurants),
	})
}

// Get handles GET /api/restaurants/{id}
func (h *RestaurantHandler) Get(w http.ResponseWriter, r *http.Request) {
	var userID string
	if user, ok := middleware.UserFromContext(r.Context()); ok {
		userID = user.ID
	}

	detail, err := h.service.Get(r.Context(), r.PathValue("id"), userID)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, detail)
}

// Categories handles GET /api/categories
func (h *RestaurantHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.Categories(r.Context())
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"categories": categories,
	})
}

func optionalInt(raw string) (*int, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return nil, strconv.ErrSyntax
	}
	return &v, nil
}
