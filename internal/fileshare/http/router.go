package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/fileshare/internal/fileshare/domain"
	"github.com/aussiebroadwan/fileshare/internal/fileshare/service"
	"github.com/aussiebroadwan/fileshare/internal/fileshare/store"
	"github.com/aussiebroadwan/fileshare/pkg/httpx"
	"github.com/aussiebroadwan/fileshare/pkg/sharesdk"
	"github.com/aussiebroadwan/fileshare/pkg/slogx"
	"github.com/spf13/afero"

	_ "github.com/aussiebroadwan/fileshare/api/fileshare" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	clientIP     httpx.KeyExtractor

	store       store.Store
	FS          afero.Fs
	Pages       *Pages
	Sessions    *service.SessionManager
	Credentials *service.CredentialService
	Limiter     *service.LoginLimiter
	Content     *service.ContentService
	Admin       *service.AdminService

	// Status backs the status API. Defaults to the admin service measured
	// from router creation.
	Status StatusFunc

	// DetailedLoginErrors replaces the generic login failure message with
	// the specific cause.
	DetailedLoginErrors bool
}

// NewRouter creates a router. With trustProxy the client IP used for the
// login lockout and throttles comes from X-Forwarded-For.
func NewRouter(
	buildVersion string,
	st store.Store,
	sessions *service.SessionManager,
	logger *slog.Logger,
	trustProxy bool,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		clientIP:     httpx.ClientIPExtractor(trustProxy),
		store:        st,
		Sessions:     sessions,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.Recover(),
		httpx.SecurityHeaders(),
		httpx.SessionMiddleware(sessions, r.clientIP),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerAdmin()
	r.registerSystem()
	r.registerContent()

	r.Mux.Handle("GET /swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			FileShare Server API
//	@version		0.1.0
//	@description	JSON endpoints of the LAN file sharing server. The browsing and admin surface is HTML and is not described here.
//
//	@contact.name	AussieBroadWAN Team
//	@contact.url	https://github.com/aussiebroadwan/fileshare
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host			localhost:8000
//	@BasePath		/
//
//	@schemes		http
//
//	@securityDefinitions.apikey	TokenQuery
//	@in							query
//	@name						token
//	@description				Session token issued by POST /login.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{
		Sessions:       r.Sessions,
		Credentials:    r.Credentials,
		Limiter:        r.Limiter,
		Pages:          r.Pages,
		DetailedErrors: r.DetailedLoginErrors,
	}

	// Login attempts are governed by the per IP lockout in LoginLimiter.
	r.Mux.HandleFunc("GET /login", h.HandleLoginPage)
	r.Mux.HandleFunc("POST /login", h.HandleLogin)
	r.Mux.HandleFunc("GET /logout", h.HandleLogout)

	r.Mux.HandleFunc("GET /register", h.HandleRegisterPage)
	r.Mux.Handle("POST /register",
		httpx.Chain(http.HandlerFunc(h.HandleRegister),
			httpx.ThrottleByIP(httpx.RegisterThrottle, r.clientIP),
		),
	)
}

func (r *Router) registerAdmin() {
	h := &AdminHandler{Admin: r.Admin, Pages: r.Pages}
	admin := func(fn http.HandlerFunc) http.Handler {
		return httpx.Chain(fn, r.Pages.requireSignIn(true))
	}

	r.Mux.Handle("GET /admin", admin(h.HandleDashboard))
	r.Mux.Handle("GET /admin/active-users", admin(h.HandleActiveUsers))
	r.Mux.Handle("GET /admin/shared-paths", admin(h.HandleSharedPaths))
	r.Mux.Handle("GET /admin/rate-limits", admin(h.HandleRateLimits))

	r.Mux.Handle("GET /admin/approve/{id}", admin(h.UserAction(r.Admin.Approve)))
	r.Mux.Handle("GET /admin/reject/{id}", admin(h.UserAction(r.Admin.Suspend)))
	r.Mux.Handle("GET /admin/delete/{id}", admin(h.UserAction(r.Admin.DeleteUser)))
	r.Mux.Handle("GET /admin/reset-password/{id}", admin(h.UserAction(r.Admin.ResetPassword)))

	r.Mux.Handle("GET /admin/share-path/{path...}", admin(h.HandleSharePath))
	r.Mux.Handle("GET /admin/unshare-path/{path...}", admin(h.HandleUnsharePath))

	r.Mux.Handle("GET /admin/clear-rate-limit", admin(h.HandleClearRateLimit))
	r.Mux.Handle("GET /admin/clear-rate-limit/{ip}", admin(h.HandleClearRateLimit))

	// Unknown console pages still require the admin.
	r.Mux.Handle("GET /admin/{rest...}", admin(func(w http.ResponseWriter, req *http.Request) {
		r.Pages.Message(w, http.StatusNotFound, "Not found", "No such admin page.")
	}))
}

func (r *Router) registerSystem() {
	r.Mux.HandleFunc("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.HandleFunc("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store, r.FS))

	status := r.Status
	if status == nil {
		status = func(ctx context.Context) (sharesdk.StatusResponse, error) {
			return r.Admin.Status(ctx, r.buildVersion, r.startTime)
		}
	}
	r.Mux.Handle("GET /api/v1/status",
		httpx.Chain(StatusHandler(status),
			httpx.RequireUser(domain.AdminUsername),
			httpx.ThrottleByUser(httpx.APIThrottle, r.clientIP),
		),
	)

	r.Mux.HandleFunc("GET /favicon.ico", http.NotFound)
}

func (r *Router) registerContent() {
	h := &ContentHandler{Content: r.Content, Pages: r.Pages}
	signedIn := func(fn http.HandlerFunc) http.Handler {
		return httpx.Chain(fn, r.Pages.requireSignIn(false))
	}

	r.Mux.HandleFunc("GET /{$}", h.HandleRoot)
	r.Mux.Handle("GET /download/{path...}", signedIn(h.HandleDownload))
	r.Mux.Handle("GET /raw/{path...}", signedIn(h.HandleRaw))
	r.Mux.Handle("GET /{path...}", signedIn(h.HandleBrowse))
}
