package routes

import (
	"net/http"

	"github.com/nagoyameshi/backend/internal/api/handlers"
	"github.com/nagoyameshi/backend/internal/api/middleware"
	"github.com/nagoyameshi/backend/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	authHandler         *handlers.AuthHandler
	restaurantHandler   *handlers.RestaurantHandler
	reviewHandler       *handlers.ReviewHandler
	favoriteHandler     *handlers.FavoriteHandler
	reservationHandler  *handlers.ReservationHandler
	subscriptionHandler *handlers.SubscriptionHandler

	authenticator  middleware.Authenticator
	allowedOrigins []string
	metrics        *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	authHandler *handlers.AuthHandler,
	restaurantHandler *handlers.RestaurantHandler,
	reviewHandler *handlers.ReviewHandler,
	favoriteHandler *handlers.FavoriteHandler,
	reservationHandler *handlers.ReservationHandler,
	subscriptionHandler *handlers.SubscriptionHandler,
	authenticator middleware.Authenticator,
	allowedOrigins []string,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:                 http.NewServeMux(),
		authHandler:         authHandler,
		restaurantHandler:   restaurantHandler,
		reviewHandler:       reviewHandler,
		favoriteHandler:     favoriteHandler,
		reservationHandler:  reservationHandler,
		subscriptionHandler: subscriptionHandler,
		authenticator:       authenticator,
		allowedOrigins:      allowedOrigins,
		metrics:             metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	auth := middleware.Auth(r.authenticator)
	optionalAuth := middleware.OptionalAuth(r.authenticator)
	private := func(pattern string, h http.HandlerFunc) {
		r.mux.Handle(pattern, auth(h))
	}

	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// Account endpoints
	r.mux.HandleFunc("POST /api/auth/signup", r.authHandler.Signup)
	r.mux.HandleFunc("POST /api/auth/login", r.authHandler.Login)
	private("GET /api/me", r.authHandler.Profile)
	private("PUT /api/me", r.authHandler.UpdateProfile)
	private("GET /api/me/mypage", r.authHandler.Mypage)
	private("GET /api/me/favorites", r.favoriteHandler.List)
	private("GET /api/me/reservations", r.reservationHandler.List)

	// Catalogue endpoints
	r.mux.HandleFunc("GET /api/categories", r.restaurantHandler.Categories)
	r.mux.HandleFunc("GET /api/restaurants", r.restaurantHandler.Search)
	r.mux.Handle("GET /api/restaurants/{id}", optionalAuth(http.HandlerFunc(r.restaurantHandler.Get)))

	// Review endpoints
	r.mux.HandleFunc("GET /api/restaurants/{id}/reviews", r.reviewHandler.List)
	private("POST /api/restaurants/{id}/reviews", r.reviewHandler.Create)
	private("PUT /api/reviews/{id}", r.reviewHandler.Update)
	private("DELETE /api/reviews/{id}", r.reviewHandler.Delete)

	// Favorite and reservation endpoints
	private("POST /api/restaurants/{id}/favorite", r.favoriteHandler.Toggle)
	private("POST /api/restaurants/{id}/reservations", r.reservationHandler.Create)
	private("DELETE /api/reservations/{id}", r.reservationHandler.Cancel)
	private("GET /api/reservations/{id}/qrcode", r.reservationHandler.QRCode)

	// Premium membership endpoints
	private("POST /api/subscription/checkout", r.subscriptionHandler.Checkout)
	private("GET /api/subscription/success", r.subscriptionHandler.Success)
	private("GET /api/subscription/portal", r.subscriptionHandler.Portal)
	private("GET /api/subscription/status", r.subscriptionHandler.Status)

	// Apply middleware in reverse order (last middleware wraps first)
	var handler http.Handler = r.mux
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.CORSMiddleware(r.allowedOrigins)(handler)

	return handler
}
