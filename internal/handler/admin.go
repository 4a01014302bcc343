package handler

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/ijwihub/studio-cms/internal/apperror"
	"github.com/ijwihub/studio-cms/internal/auth"
	"github.com/ijwihub/studio-cms/internal/model"
	"github.com/ijwihub/studio-cms/internal/service"
)

//go:embed templates/*.html
var templateFS embed.FS

// adminPages are parsed together with base.html, one set per page, so every
// page can define its own "content" block.
var adminPages = []string{"login", "dashboard", "services", "portfolio"}

// AdminHandler renders the server-side admin panel.
//
// The pages are thin: tables of what is stored plus forms whose scripts call
// the JSON API (/services, /portfolio) with the session cookie. Failed calls
// show their message inline next to the form.
//
// Every route here is wrapped in auth.Guard by the router.
type AdminHandler struct {
	pages        map[string]*template.Template
	auth         *service.AuthService
	catalog      *service.CatalogService
	portfolio    *service.PortfolioService
	landingPath  string
	loginPath    string
	secureCookie bool
	logger       *slog.Logger
}

// AdminOptions carries the paths and cookie flag the panel needs.
type AdminOptions struct {
	LoginPath    string
	LandingPath  string
	SecureCookie bool
}

// NewAdminHandler parses the embedded templates once at startup.
func NewAdminHandler(
	authService *service.AuthService,
	catalog *service.CatalogService,
	portfolio *service.PortfolioService,
	opts AdminOptions,
	logger *slog.Logger,
) (*AdminHandler, error) {
	if opts.LoginPath == "" {
		opts.LoginPath = auth.DefaultLoginPath
	}
	if opts.LandingPath == "" {
		opts.LandingPath = auth.DefaultLandingPath
	}

	pages := make(map[string]*template.Template, len(adminPages))
	for _, name := range adminPages {
		tmpl, err := template.ParseFS(templateFS, "templates/base.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("handler: parsing %s template: %w", name, err)
		}
		pages[name] = tmpl
	}

	return &AdminHandler{
		pages:        pages,
		auth:         authService,
		catalog:      catalog,
		portfolio:    portfolio,
		landingPath:  opts.LandingPath,
		loginPath:    opts.LoginPath,
		secureCookie: opts.SecureCookie,
		logger:       logger,
	}, nil
}

// pageData is what every admin template receives.
type pageData struct {
	Title      string
	LoginPath  string
	Error      string
	Email      string
	Services   []model.Service
	Works      []model.PortfolioWork
	LoggedInAs string
}

func (h *AdminHandler) render(w http.ResponseWriter, status int, name string, data pageData) {
	data.LoginPath = h.loginPath
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.pages[name].ExecuteTemplate(w, "base", data); err != nil {
		// status already sent
		h.logger.Error("failed to render template",
			slog.String("page", name),
			slog.String("error", err.Error()),
		)
	}
}

// HandleRoot sends /admin/ to the landing page.
func (h *AdminHandler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, h.landingPath, http.StatusSeeOther)
}

func (h *AdminHandler) HandleLoginPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "login", pageData{Title: "Admin login"})
}

// HandleLoginSubmit processes the login form. A failure re-renders the form
// with the generic message; success sets the cookie and redirects.
func (h *AdminHandler) HandleLoginSubmit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		h.render(w, http.StatusBadRequest, "login", pageData{Title: "Admin login", Error: "Could not read the form"})
		return
	}
	email := r.PostFormValue("email")

	sess, token, err := h.auth.Login(r.Context(), email, r.PostFormValue("password"))
	if err != nil {
		status, msg := http.StatusUnauthorized, apperror.InvalidCredentials
		if !errors.Is(err, apperror.ErrUnauthorized) {
			status, msg = http.StatusInternalServerError, "Login is unavailable right now, please retry"
		}
		h.render(w, status, "login", pageData{Title: "Admin login", Error: msg, Email: email})
		return
	}

	auth.SetSessionCookie(w, token, sess.ExpiresAt, h.secureCookie)
	http.Redirect(w, r, h.landingPath, http.StatusSeeOther)
}

func (h *AdminHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	for _, token := range auth.TokensFromRequest(r) {
		if err := h.auth.Logout(r.Context(), token); err != nil {
			h.logger.Error("logout failed", slog.String("error", err.Error()))
		}
	}
	auth.ClearSessionCookie(w, h.secureCookie)
	http.Redirect(w, r, h.loginPath, http.StatusSeeOther)
}

func (h *AdminHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	data := pageData{Title: "Dashboard", LoggedInAs: h.currentEmail(r)}

	services, err := h.catalog.List(r.Context())
	if err != nil {
		data.Error = "Could not load services"
	}
	works, err := h.portfolio.List(r.Context())
	if err != nil {
		data.Error = "Could not load portfolio"
	}
	data.Services, data.Works = services, works

	h.render(w, http.StatusOK, "dashboard", data)
}

func (h *AdminHandler) HandleServices(w http.ResponseWriter, r *http.Request) {
	data := pageData{Title: "Services", LoggedInAs: h.currentEmail(r)}
	services, err := h.catalog.List(r.Context())
	if err != nil {
		data.Error = "Could not load services"
	}
	data.Services = services
	h.render(w, http.StatusOK, "services", data)
}

func (h *AdminHandler) HandlePortfolio(w http.ResponseWriter, r *http.Request) {
	data := pageData{Title: "Portfolio", LoggedInAs: h.currentEmail(r)}
	works, err := h.portfolio.List(r.Context())
	if err != nil {
		data.Error = "Could not load portfolio"
	}
	data.Works = works
	h.render(w, http.StatusOK, "portfolio", data)
}

func (h *AdminHandler) currentEmail(r *http.Request) string {
	sess, ok := auth.SessionFromContext(r.Context())
	if !ok {
		return ""
	}
	admin, err := h.auth.CurrentAdmin(r.Context(), sess)
	if err != nil {
		return ""
	}
	return admin.Email
}
