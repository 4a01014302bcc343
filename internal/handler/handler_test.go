package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ijwihub/studio-cms/internal/auth"
	"github.com/ijwihub/studio-cms/internal/handler"
	"github.com/ijwihub/studio-cms/internal/model"
	"github.com/ijwihub/studio-cms/internal/repository/memory"
	"github.com/ijwihub/studio-cms/internal/service"
	"github.com/ijwihub/studio-cms/internal/validate"
)

const (
	adminEmail    = "info@ijwihub.com"
	adminPassword = "correct-horse-battery"
)

// testEnv is a router wired the same way as the real server, on the memory store.
type testEnv struct {
	router http.Handler
	store  *memory.Store
	auth   *service.AuthService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store := memory.New()
	v := validate.New()
	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars!!", "")
	require.NoError(t, err)
	passwords, err := auth.NewPasswordService(bcrypt.MinCost)
	require.NoError(t, err)

	authSvc := service.NewAuthService(store, store, tokens, passwords, v, service.AuthConfig{SessionTTL: time.Hour}, logger)
	_, err = authSvc.SeedAdmin(context.Background(), adminEmail, adminPassword)
	require.NoError(t, err)

	catalog := service.NewCatalogService(store, v, logger)
	portfolio := service.NewPortfolioService(store, v, logger)

	services := handler.NewServicesHandler(catalog, logger)
	works := handler.NewPortfolioHandler(portfolio, logger)
	authH := handler.NewAuthHandler(authSvc, false, logger)
	admin, err := handler.NewAdminHandler(authSvc, catalog, portfolio, handler.AdminOptions{}, logger)
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Get("/healthz", handler.NewHealthHandler(store, logger).HandleHealth)
	r.Route("/services", func(r chi.Router) {
		r.Get("/", services.HandleList)
		r.Get("/{id}", services.HandleGet)
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(authSvc))
			r.Post("/", services.HandleCreate)
			r.Put("/{id}", services.HandleUpdate)
			r.Delete("/{id}", services.HandleDelete)
		})
	})
	r.Route("/portfolio", func(r chi.Router) {
		r.Get("/", works.HandleList)
		r.Get("/{id}", works.HandleGet)
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(authSvc))
			r.Post("/", works.HandleCreate)
			r.Put("/{id}", works.HandleUpdate)
			r.Delete("/{id}", works.HandleDelete)
		})
	})
	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", authH.HandleLogin)
		r.Post("/logout", authH.HandleLogout)
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(authSvc))
			r.Post("/refresh", authH.HandleRefresh)
			r.Get("/session", authH.HandleSession)
		})
	})
	r.Route("/admin", func(r chi.Router) {
		r.Use(auth.Guard(authSvc, auth.GuardOptions{Logger: logger}))
		r.Get("/", admin.HandleRoot)
		r.Get("/login", admin.HandleLoginPage)
		r.Post("/login", admin.HandleLoginSubmit)
		r.Post("/logout", admin.HandleLogout)
		r.Get("/dashboard", admin.HandleDashboard)
		r.Get("/services", admin.HandleServices)
		r.Get("/portfolio", admin.HandlePortfolio)
	})

	return &testEnv{router: r, store: store, auth: authSvc}
}

// do sends a request with an optional JSON body and session token.
func (e *testEnv) do(t *testing.T, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func (e *testEnv) login(t *testing.T) string {
	t.Helper()
	rr := e.do(t, http.MethodPost, "/auth/login",
		`{"email":"`+adminEmail+`","password":"`+adminPassword+`"}`, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var res handler.TokenResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
	require.NotEmpty(t, res.Token)
	return res.Token
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) handler.ErrorResponse {
	t.Helper()
	var res handler.ErrorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
	return res
}

// =========================================================================
// SERVICES
// =========================================================================

func TestServicesLifecycle(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)

	// create
	rr := env.do(t, http.MethodPost, "/services",
		`{"title":"Mixing","description":"Audio mixing","icon":"music","price":"$100"}`, token)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var created model.Service
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&created))
	assert.NotEmpty(t, created.ID)

	// list includes it
	rr = env.do(t, http.MethodGet, "/services", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var list []model.Service
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&list))
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)

	// price-only update leaves the rest alone
	rr = env.do(t, http.MethodPut, "/services/"+created.ID, `{"price":"$150"}`, token)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var updated model.Service
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&updated))
	assert.Equal(t, "$150", updated.Price)
	assert.Equal(t, "Mixing", updated.Title)
	assert.Equal(t, "Audio mixing", updated.Description)
	assert.Equal(t, "music", updated.Icon)

	// delete, then 404
	rr = env.do(t, http.MethodDelete, "/services/"+created.ID, "", token)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, rr.Body.String())

	rr = env.do(t, http.MethodGet, "/services/"+created.ID, "", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "not_found", decodeError(t, rr).Error)

	rr = env.do(t, http.MethodDelete, "/services/"+created.ID, "", token)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestServicesCreate_Validation(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)

	rr := env.do(t, http.MethodPost, "/services", `{"title":"Mixing","description":"Audio mixing"}`, token)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	res := decodeError(t, rr)
	assert.Equal(t, "validation_error", res.Error)
	assert.Equal(t, []string{"icon", "price"}, res.Fields)
	assert.Contains(t, res.Message, "icon")
	assert.Contains(t, res.Message, "price")
}

func TestServicesCreate_MalformedJSON(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)

	for _, body := range []string{`{"title":`, `[]`, `{"title":"a"} {"title":"b"}`} {
		rr := env.do(t, http.MethodPost, "/services", body, token)
		assert.Equal(t, http.StatusBadRequest, rr.Code, "body %q", body)
	}
}

func TestServicesMutations_RequireSession(t *testing.T) {
	env := newTestEnv(t)

	cases := []struct {
		method, path, body string
	}{
		{http.MethodPost, "/services", `{"title":"x"}`},
		{http.MethodPut, "/services/abc", `{"price":"$1"}`},
		{http.MethodDelete, "/services/abc", ""},
		{http.MethodPost, "/portfolio", `{"title":"x"}`},
		{http.MethodDelete, "/portfolio/abc", ""},
	}
	for _, tc := range cases {
		rr := env.do(t, tc.method, tc.path, tc.body, "")
		assert.Equal(t, http.StatusUnauthorized, rr.Code, "%s %s", tc.method, tc.path)
	}
}

func TestServicesList_StoreFailure(t *testing.T) {
	env := newTestEnv(t)
	env.store.Err = errors.New("connection reset by peer")

	rr := env.do(t, http.MethodGet, "/services", "", "")
	require.Equal(t, http.StatusInternalServerError, rr.Code)

	res := decodeError(t, rr)
	assert.Equal(t, "store_error", res.Error)
	assert.NotContains(t, res.Message, "connection reset", "driver details must not leak")
}

// =========================================================================
// PORTFOLIO
// =========================================================================

func TestPortfolioLifecycle(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)

	rr := env.do(t, http.MethodPost, "/portfolio",
		`{"title":"Project One","description":"A cinematic masterpiece","category":"Film","imageUrl":"/img.jpg","ownerProducer":"Client A"}`, token)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var created model.PortfolioWork
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&created))
	assert.Equal(t, "Client A", created.ClientName)

	rr = env.do(t, http.MethodPut, "/portfolio/"+created.ID, `{"category":"Documentary"}`, token)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = env.do(t, http.MethodGet, "/portfolio/"+created.ID, "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var got model.PortfolioWork
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
	assert.Equal(t, "Documentary", got.Category)
	assert.Equal(t, "Project One", got.Title)

	rr = env.do(t, http.MethodDelete, "/portfolio/"+created.ID, "", token)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	rr = env.do(t, http.MethodGet, "/portfolio/"+created.ID, "", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestPortfolioCreate_MissingImage(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)

	rr := env.do(t, http.MethodPost, "/portfolio",
		`{"title":"T","description":"D","category":"Film"}`, token)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, []string{"imageUrl"}, decodeError(t, rr).Fields)
}

// =========================================================================
// AUTH
// =========================================================================

func TestLogin_WrongPasswordThreeTimes(t *testing.T) {
	env := newTestEnv(t)

	for i := 0; i < 3; i++ {
		rr := env.do(t, http.MethodPost, "/auth/login",
			`{"email":"`+adminEmail+`","password":"wrong"}`, "")
		require.Equal(t, http.StatusUnauthorized, rr.Code)
		res := decodeError(t, rr)
		assert.Equal(t, "Invalid credentials", res.Message)
		assert.Empty(t, rr.Result().Cookies())
	}

	// still not locked out
	env.login(t)
}

func TestLogin_UnknownEmailLooksTheSame(t *testing.T) {
	env := newTestEnv(t)

	wrongPw := env.do(t, http.MethodPost, "/auth/login", `{"email":"`+adminEmail+`","password":"nope"}`, "")
	unknown := env.do(t, http.MethodPost, "/auth/login", `{"email":"ghost@example.com","password":"nope"}`, "")

	assert.Equal(t, wrongPw.Code, unknown.Code)
	assert.Equal(t, wrongPw.Body.String(), unknown.Body.String())
}

func TestLogin_SetsHttpOnlyCookie(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodPost, "/auth/login",
		`{"email":"`+adminEmail+`","password":"`+adminPassword+`"}`, "")
	require.Equal(t, http.StatusOK, rr.Code)

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, auth.CookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
}

func TestLogout_OldTokenRejected(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)

	rr := env.do(t, http.MethodGet, "/auth/session", "", token)
	require.Equal(t, http.StatusOK, rr.Code)
	var sess handler.SessionResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&sess))
	assert.Equal(t, adminEmail, sess.Admin.Email)
	assert.NotContains(t, rr.Body.String(), "$2a$", "password hash must never be serialized")

	rr = env.do(t, http.MethodPost, "/auth/logout", "", token)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = env.do(t, http.MethodGet, "/auth/session", "", token)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = env.do(t, http.MethodPost, "/services", `{"title":"x","description":"y","icon":"z","price":"1"}`, token)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = env.do(t, http.MethodGet, "/admin/dashboard", "", token)
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/admin/login", rr.Header().Get("Location"))
}

func TestLogout_WithoutToken(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(t, http.MethodPost, "/auth/logout", "", "")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestLogout_StoreFailureStillSucceeds(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)
	env.store.Err = errors.New("connection refused")

	rr := env.do(t, http.MethodPost, "/auth/logout", "", token)
	assert.Equal(t, http.StatusOK, rr.Code)

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, auth.CookieName, cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge)
}

func TestRefresh(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)

	rr := env.do(t, http.MethodPost, "/auth/refresh", "", token)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var res handler.TokenResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
	assert.NotEmpty(t, res.Token)

	rr = env.do(t, http.MethodGet, "/auth/session", "", res.Token)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestBearerHeaderAccepted(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)

	req := httptest.NewRequest(http.MethodGet, "/auth/session", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRevokedCookieDoesNotHideBearer(t *testing.T) {
	env := newTestEnv(t)
	stale := env.login(t)
	rr := env.do(t, http.MethodPost, "/auth/logout", "", stale)
	require.Equal(t, http.StatusOK, rr.Code)
	fresh := env.login(t)

	send := func(method, path, body string) *httptest.ResponseRecorder {
		var reader io.Reader
		if body != "" {
			reader = bytes.NewBufferString(body)
		}
		req := httptest.NewRequest(method, path, reader)
		req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: stale})
		req.Header.Set("Authorization", "Bearer "+fresh)
		rr := httptest.NewRecorder()
		env.router.ServeHTTP(rr, req)
		return rr
	}

	rr = send(http.MethodPost, "/services", `{"title":"Mixing","description":"Audio mixing","icon":"music","price":"$100"}`)
	assert.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = send(http.MethodGet, "/admin/dashboard", "")
	assert.Equal(t, http.StatusOK, rr.Code)

	// refresh renews the token that authenticated, not the stale cookie
	rr = send(http.MethodPost, "/auth/refresh", "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
}

// =========================================================================
// ADMIN PAGES
// =========================================================================

func TestAdminPages_Guarded(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/admin/", "/admin/dashboard", "/admin/services", "/admin/portfolio"} {
		rr := env.do(t, http.MethodGet, path, "", "")
		assert.Equal(t, http.StatusSeeOther, rr.Code, path)
		assert.Equal(t, "/admin/login", rr.Header().Get("Location"), path)
	}

	rr := env.do(t, http.MethodGet, "/admin/login", "", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `name="password"`)
}

func TestAdminPages_Authenticated(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)

	rr := env.do(t, http.MethodPost, "/services",
		`{"title":"Mixing","description":"Audio mixing","icon":"music","price":"$100"}`, token)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = env.do(t, http.MethodGet, "/admin/services", "", token)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Mixing")
	assert.Contains(t, rr.Body.String(), adminEmail)

	rr = env.do(t, http.MethodGet, "/admin/dashboard", "", token)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = env.do(t, http.MethodGet, "/admin/login", "", token)
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/admin/dashboard", rr.Header().Get("Location"))

	rr = env.do(t, http.MethodGet, "/admin/", "", token)
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/admin/dashboard", rr.Header().Get("Location"))
}

func postForm(env *testEnv, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)
	return rr
}

func TestAdminLoginForm(t *testing.T) {
	env := newTestEnv(t)

	t.Run("wrong password re-renders with inline error", func(t *testing.T) {
		rr := postForm(env, "/admin/login", url.Values{"email": {adminEmail}, "password": {"nope"}})
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Contains(t, rr.Body.String(), "Invalid credentials")
		assert.Contains(t, rr.Body.String(), adminEmail, "email is kept in the form")
	})

	t.Run("success sets cookie and redirects to dashboard", func(t *testing.T) {
		rr := postForm(env, "/admin/login", url.Values{"email": {adminEmail}, "password": {adminPassword}})
		assert.Equal(t, http.StatusSeeOther, rr.Code)
		assert.Equal(t, "/admin/dashboard", rr.Header().Get("Location"))

		cookies := rr.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, auth.CookieName, cookies[0].Name)
		assert.NotEmpty(t, cookies[0].Value)
	})
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rr.Code)

	env.store.Err = errors.New("gone")
	rr = env.do(t, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}
