package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/mkarpenko/campushub/internal/auth"
	"github.com/mkarpenko/campushub/internal/middleware"
	"github.com/mkarpenko/campushub/internal/model"
)

const sessionCookieMaxAge = 3600 // matches the token's one-hour expiry

type AuthHandler struct {
	manager *auth.Manager
	logger  *slog.Logger
}

func NewAuthHandler(manager *auth.Manager, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{manager: manager, logger: logger}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "invalid JSON")
		return
	}

	user, err := h.manager.Register(req.Username, req.Email, req.Password)
	if err != nil {
		writeAuthError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "account created",
		"user":    user,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Device   string `json:"device"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "invalid JSON")
		return
	}

	device := req.Device
	if device == "" {
		device = r.UserAgent()
	}

	result, err := h.manager.Authenticate(req.Username, req.Password, device, middleware.RealIP(r))
	if err != nil {
		writeAuthError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    result.Token,
		Path:     "/",
		MaxAge:   sessionCookieMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
	})

	body := map[string]any{
		"message": "logged in",
		"user":    result.User,
	}
	if len(result.ActiveSessions) > 0 {
		// Advisory only: the new session was created regardless.
		body["warning"] = "already logged in on another device"
		body["active_sessions"] = result.ActiveSessions
	} else {
		body["active_sessions"] = []model.Session{}
	}

	writeJSON(w, http.StatusOK, body)
}

// Logout tears down the session row for the presented cookie. The cookie is
// cleared even when no row matched — terminate is idempotent.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var token string
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil {
		token = cookie.Value
	}

	err := h.manager.Terminate(token)

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	if err != nil {
		h.logger.Error("terminate session", "error", err)
		writeAuthError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthenticated", "authentication required")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": id.User})
}
