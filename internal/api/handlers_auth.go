package api

import (
	"errors"
	"net/http"

	"github.com/ramitgoyal/zensync/internal/auth"
	"github.com/ramitgoyal/zensync/internal/models"
	"github.com/ramitgoyal/zensync/internal/store"
)

// AuthHandler handles register, login, logout, and current-user requests.
type AuthHandler struct {
	svc           *auth.Service
	tokens        *auth.TokenIssuer
	secureCookies bool
}

func NewAuthHandler(svc *auth.Service, tokens *auth.TokenIssuer, secureCookies bool) *AuthHandler {
	return &AuthHandler{svc: svc, tokens: tokens, secureCookies: secureCookies}
}

// Register handles POST /api/v1/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	user, token, err := h.svc.Register(req.Name, req.Email, req.Password)
	switch {
	case errors.Is(err, auth.ErrMissingFields):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, store.ErrEmailTaken):
		writeError(w, http.StatusConflict, "user with email already exists")
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "something went wrong while registering the user")
		return
	}

	h.setTokenCookie(w, token)
	writeJSON(w, http.StatusCreated, models.AuthResponse{User: user, AccessToken: token})
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	user, token, err := h.svc.Login(req.Email, req.Password)
	switch {
	case errors.Is(err, auth.ErrMissingFields):
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	case errors.Is(err, auth.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "user does not exist")
		return
	case errors.Is(err, auth.ErrBadPassword):
		writeError(w, http.StatusUnauthorized, "invalid user credentials")
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "something went wrong while logging in")
		return
	}

	h.setTokenCookie(w, token)
	writeJSON(w, http.StatusOK, models.AuthResponse{User: user, AccessToken: token})
}

// Logout handles POST /api/v1/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     AccessTokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteStrictMode,
	})
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// CurrentUser handles GET /api/v1/auth/current-user
func (h *AuthHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.svc.CurrentUser(UserID(r))
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]*models.User{"user": user})
}

func (h *AuthHandler) setTokenCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     AccessTokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.tokens.TTL().Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteStrictMode,
	})
}
