package auth

import (
	"log/slog"
	"net/http"
	"strings"
)

// Decision is what the route guard does with one request.
type Decision int

const (
	Continue Decision = iota
	RedirectToLogin
	RedirectToLanding
)

func (d Decision) String() string {
	switch d {
	case Continue:
		return "continue"
	case RedirectToLogin:
		return "redirect_to_login"
	case RedirectToLanding:
		return "redirect_to_landing"
	default:
		return "unknown"
	}
}

// Default admin paths.
const (
	DefaultLoginPath   = "/admin/login"
	DefaultLandingPath = "/admin/dashboard"
)

// GuardOptions configures Guard. Zero values fall back to the defaults above.
type GuardOptions struct {
	LoginPath   string
	LandingPath string

	// Bypass lets every request through unauthenticated. It only has an
	// effect in binaries built with -tags dev; see BypassAvailable.
	Bypass bool

	Logger *slog.Logger
}

func (o GuardOptions) withDefaults() GuardOptions {
	if o.LoginPath == "" {
		o.LoginPath = DefaultLoginPath
	}
	if o.LandingPath == "" {
		o.LandingPath = DefaultLandingPath
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// Decide is the guard's state machine:
//
//	                  | login path        | any other guarded path
//	unauthenticated   | Continue          | RedirectToLogin
//	authenticated     | RedirectToLanding | Continue
func Decide(authenticated bool, path, loginPath string) Decision {
	onLogin := strings.TrimSuffix(path, "/") == strings.TrimSuffix(loginPath, "/")
	switch {
	case !authenticated && !onLogin:
		return RedirectToLogin
	case authenticated && onLogin:
		return RedirectToLanding
	default:
		return Continue
	}
}

// Guard protects the HTML admin pages. Unlike RequireAuth it redirects instead
// of answering 401, because a browser is on the other end.
//
// Authenticated requests carry their session in the context (see
// SessionFromContext), including requests to the login page itself.
func Guard(v SessionValidator, opts GuardOptions) func(http.Handler) http.Handler {
	opts = opts.withDefaults()
	bypass := opts.Bypass && BypassAvailable
	if bypass {
		opts.Logger.Warn("admin route guard bypass is ENABLED; every admin page is open")
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if bypass {
				next.ServeHTTP(w, r)
				return
			}

			sess, token, err := sessionFromRequest(r, v)
			authenticated := err == nil
			if authenticated {
				r = r.WithContext(withToken(WithSession(r.Context(), sess), token))
			}

			switch Decide(authenticated, r.URL.Path, opts.LoginPath) {
			case RedirectToLogin:
				http.Redirect(w, r, opts.LoginPath, http.StatusSeeOther)
			case RedirectToLanding:
				http.Redirect(w, r, opts.LandingPath, http.StatusSeeOther)
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}
