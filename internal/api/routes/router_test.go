package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/nagoyameshi/backend/internal/api/handlers"
	"github.com/nagoyameshi/backend/internal/domain/entities"
	apperrors "github.com/nagoyameshi/backend/pkg/errors"
)

type rejectAll struct{}

func (rejectAll) Authenticate(context.Context, string) (*entities.User, error) {
	return nil, apperrors.NewUnauthorizedError("invalid token")
}

func newTestRouter() http.Handler {
	return NewRouter(
		handlers.NewAuthHandler(nil),
		handlers.NewRestaurantHandler(nil),
		handlers.NewReviewHandler(nil),
		handlers.NewFavoriteHandler(nil),
		handlers.NewReservationHandler(nil, time.UTC),
		handlers.NewSubscriptionHandler(nil, "/", "/premium"),
		rejectAll{},
		[]string{"http://localhost:3000"},
		nil,
	).SetupRoutes()
}

func TestRouter_Health(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestRouter_PrivateRoutesRequireToken(t *testing.T) {
	router := newTestRouter()
	routes := []struct{ method, path string }{
		{http.MethodGet, "/api/me"},
		{http.MethodGet, "/api/me/mypage"},
		{http.MethodPost, "/api/restaurants/rest-1/reviews"},
		{http.MethodPut, "/api/reviews/rev-1"},
		{http.MethodPost, "/api/restaurants/rest-1/favorite"},
		{http.MethodPost, "/api/restaurants/rest-1/reservations"},
		{http.MethodDelete, "/api/reservations/resv-1"},
		{http.MethodGet, "/api/reservations/resv-1/qrcode"},
		{http.MethodPost, "/api/subscription/checkout"},
		{http.MethodGet, "/api/subscription/status"},
	}

	for _, rt := range routes {
		req := httptest.NewRequest(rt.method, rt.path, nil)
		req.Header.Set("Authorization", "Bearer forged")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", rt.method, rt.path)
	}
}

func TestRouter_UnknownMethod(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/api/reviews/rev-1", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
