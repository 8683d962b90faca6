package handlers

import (
	"context"
	"net/http"

	"github.com/nagoyameshi/backend/internal/domain/entities"
	"github.com/nagoyameshi/backend/internal/infrastructure/observability"
)

// SubscriptionService defines the billing operations used by the handler
type SubscriptionService interface {
	IsActive(ctx context.Context, user *entities.User) bool
	StartCheckout(ctx context.Context, user *entities.User) (string, error)
	CompleteCheckout(ctx context.Context, user *entities.User, sessionID string) error
	PortalURL(ctx context.Context, user *entities.User) (string, error)
}

// SubscriptionHandler handles the premium membership flow. Every endpoint except
// Status answers with a 303 redirect, as browsers follow them directly.
type SubscriptionHandler struct {
	service         SubscriptionService
	defaultRedirect string
	premiumURL      string
}

// NewSubscriptionHandler creates a new subscription handler
func NewSubscriptionHandler(service SubscriptionService, defaultRedirect, premiumURL string) *SubscriptionHandler {
	return &SubscriptionHandler{
		service:         service,
		defaultRedirect: defaultRedirect,
		premiumURL:      premiumURL,
	}
}

// Checkout handles POST /api/subscription/checkout
func (h *SubscriptionHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	url, err := h.service.StartCheckout(r.Context(), user)
	if err != nil {
		h.fallback(w, r, err, "checkout failed")
		return
	}
	http.Redirect(w, r, url, http.StatusSeeOther)
}

// Success handles GET /api/subscription/success
func (h *SubscriptionHandler) Success(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.service.CompleteCheckout(r.Context(), user, r.URL.Query().Get("session_id")); err != nil {
		h.fallback(w, r, err, "checkout completion failed")
		return
	}
	http.Redirect(w, r, h.premiumURL, http.StatusSeeOther)
}

// Portal handles GET /api/subscription/portal
func (h *SubscriptionHandler) Portal(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	url, err := h.service.PortalURL(r.Context(), user)
	if err != nil {
		h.fallback(w, r, err, "billing portal failed")
		return
	}
	http.Redirect(w, r, url, http.StatusSeeOther)
}

// Status handles GET /api/subscription/status
func (h *SubscriptionHandler) Status(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]bool{
		"active": h.service.IsActive(r.Context(), user),
	})
}

func (h *SubscriptionHandler) fallback(w http.ResponseWriter, r *http.Request, err error, msg string) {
	observability.LoggerFromContext(r.Context()).Warn().Err(err).Msg(msg)
	http.Redirect(w, r, h.defaultRedirect, http.StatusSeeOther)
}
