package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/ijwihub/studio-cms/internal/apperror"
	"github.com/ijwihub/studio-cms/internal/auth"
	"github.com/ijwihub/studio-cms/internal/model"
	"github.com/ijwihub/studio-cms/internal/service"
)

// AuthHandler serves the JSON auth endpoints.
//
//	POST /auth/login    → {email,password} in, cookie + {token,expiresAt} out
//	POST /auth/logout   → revoke + clear cookie
//	POST /auth/refresh  → new token, later expiry (session required)
//	GET  /auth/session  → who am I (session required)
//
// The token goes both into the HttpOnly cookie (browsers) and the JSON body
// (scripts that prefer an Authorization: Bearer header).
type AuthHandler struct {
	auth         *service.AuthService
	secureCookie bool
	logger       *slog.Logger
}

func NewAuthHandler(authService *service.AuthService, secureCookie bool, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:         authService,
		secureCookie: secureCookie,
		logger:       logger,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse is returned by login and refresh.
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// SessionResponse is returned by GET /auth/session.
type SessionResponse struct {
	Admin     *model.Admin `json:"admin"`
	ExpiresAt time.Time    `json:"expiresAt"`
}

// HandleLogin answers 401 "Invalid credentials" for any bad email/password
// combination, however many times in a row.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	sess, token, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	auth.SetSessionCookie(w, token, sess.ExpiresAt, h.secureCookie)
	writeJSON(w, http.StatusOK, TokenResponse{Token: token, ExpiresAt: sess.ExpiresAt})
}

// HandleLogout always succeeds for the caller: the cookie is cleared, every
// token sent along is revoked, and the answer is 200. A store failure while revoking is logged, because the old
// token keeps working until it expires.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSessionCookie(w, h.secureCookie)

	for _, token := range auth.TokensFromRequest(r) {
		if err := h.auth.Logout(r.Context(), token); err != nil {
			h.logger.Error("session revoke failed on logout", slog.String("error", err.Error()))
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

// HandleRefresh renews the token RequireAuth accepted.
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	token, ok := auth.TokenFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("Authentication required"))
		return
	}

	sess, newToken, err := h.auth.Refresh(r.Context(), token)
	if err != nil {
		writeError(w, err)
		return
	}

	auth.SetSessionCookie(w, newToken, sess.ExpiresAt, h.secureCookie)
	writeJSON(w, http.StatusOK, TokenResponse{Token: newToken, ExpiresAt: sess.ExpiresAt})
}

// HandleSession expects RequireAuth to have put the session in the context.
func (h *AuthHandler) HandleSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := auth.SessionFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("Authentication required"))
		return
	}

	admin, err := h.auth.CurrentAdmin(r.Context(), sess)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SessionResponse{Admin: admin, ExpiresAt: sess.ExpiresAt})
}
