package handlers

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/nagoyameshi/backend/internal/application/services"
	"github.com/nagoyameshi/backend/internal/domain/entities"
)

// AuthService defines the account operations used by the handler
type AuthService interface {
	Signup(ctx context.Context, input services.SignupInput) (*entities.User, error)
	Login(ctx context.Context, email, password string, client entities.LoginContext) (*services.LoginResult, error)
	Profile(ctx context.Context, userID string) (*entities.User, error)
	UpdateProfile(ctx context.Context, userID string, input services.ProfileInput) (*entities.User, error)
	Mypage(ctx context.Context, user *entities.User) (*services.Mypage, error)
}

// AuthHandler handles signup, login and profile requests
type AuthHandler struct {
	service AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(service AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup handles POST /api/auth/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var input services.SignupInput
	if !decodeJSON(w, r, &input) {
		return
	}

	user, err := h.service.Signup(r.Context(), input)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, user)
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload loginRequest
	if !decodeJSON(w, r, &payload) {
		return
	}

	result, err := h.service.Login(r.Context(), payload.Email, payload.Password, entities.LoginContext{
		IPAddress: clientIP(r),
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			respondWithError(w, http.StatusUnauthorized, services.ErrInvalidCredentials.Message)
			return
		}
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

// Profile handles GET /api/me
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	profile, err := h.service.Profile(r.Context(), user.ID)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, profile)
}

// UpdateProfile handles PUT /api/me
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	var input services.ProfileInput
	if !decodeJSON(w, r, &input) {
		return
	}

	profile, err := h.service.UpdateProfile(r.Context(), user.ID, input)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, profile)
}

// Mypage handles GET /api/me/mypage
func (h *AuthHandler) Mypage(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	page, err := h.service.Mypage(r.Context(), user)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, page)
}

// clientIP is the first X-Forwarded-For entry, else the remote address without its port
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
