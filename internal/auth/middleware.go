package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/ijwihub/studio-cms/internal/model"
)

// CookieName is the HttpOnly cookie that carries the session token.
const CookieName = "admin_session"

// ErrNoToken means the request carried neither the cookie nor a Bearer header.
var ErrNoToken = errors.New("auth: no session token")

// SessionValidator turns a raw token into an active session or an error.
// The auth service implements it; tests use a stub.
type SessionValidator interface {
	ValidateSession(ctx context.Context, token string) (*model.Session, error)
}

// Provider is the one login mechanism the site has: exchange credentials for
// a revocable token and check that token on every guarded request.
type Provider interface {
	SessionValidator
	Login(ctx context.Context, email, password string) (*model.Session, string, error)
	Logout(ctx context.Context, token string) error
}

// contextKey is unexported so no other package can read or shadow our values.
type contextKey string

const (
	sessionKey contextKey = "session"
	tokenKey   contextKey = "token"
)

// WithSession returns a copy of ctx carrying sess.
func WithSession(ctx context.Context, sess *model.Session) context.Context {
	return context.WithValue(ctx, sessionKey, sess)
}

// withToken stores the token that authenticated the request.
func withToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey, token)
}

// TokenFromContext returns the token RequireAuth or Guard accepted, if any.
func TokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenKey).(string)
	return token, ok && token != ""
}

// SessionFromContext returns the session RequireAuth or Guard stored, if any.
func SessionFromContext(ctx context.Context) (*model.Session, bool) {
	sess, ok := ctx.Value(sessionKey).(*model.Session)
	return sess, ok && sess != nil
}

// AdminIDFromContext is a shortcut for handlers that only need who is calling.
func AdminIDFromContext(ctx context.Context) (string, bool) {
	sess, ok := SessionFromContext(ctx)
	if !ok {
		return "", false
	}
	return sess.AdminID, sess.AdminID != ""
}

// RequireAuth enforces a valid session on JSON API routes.
//
// Missing or invalid tokens get 401 with a JSON body and the chain stops.
// On success the session is stored in the request context.
//
// Chi applies middlewares in a chain: req → M1 → M2 → Handler → M2 → M1 → resp
func RequireAuth(v SessionValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, token, err := sessionFromRequest(r, v)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"unauthorized","message":"Authentication required"}` + "\n"))
				return
			}
			ctx := withToken(WithSession(r.Context(), sess), token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// TokensFromRequest returns every session token the request carries: the
// cookie first, then an "Authorization: Bearer <token>" header.
func TokensFromRequest(r *http.Request) []string {
	var tokens []string
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		tokens = append(tokens, c.Value)
	}

	h := r.Header.Get("Authorization")
	if scheme, token, ok := strings.Cut(h, " "); ok && strings.EqualFold(scheme, "Bearer") {
		if token = strings.TrimSpace(token); token != "" {
			tokens = append(tokens, token)
		}
	}
	return tokens
}

// sessionFromRequest tries each token in turn, so a stale cookie does not hide
// a valid Bearer header. The last validation error is returned when none pass.
func sessionFromRequest(r *http.Request, v SessionValidator) (*model.Session, string, error) {
	tokens := TokensFromRequest(r)
	if len(tokens) == 0 {
		return nil, "", ErrNoToken
	}

	var lastErr error
	for _, token := range tokens {
		sess, err := v.ValidateSession(r.Context(), token)
		if err == nil {
			return sess, token, nil
		}
		lastErr = err
	}
	return nil, "", lastErr
}
