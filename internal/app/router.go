package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/civreg/civreg/internal/auth"
	"github.com/civreg/civreg/internal/citizens"
	"github.com/civreg/civreg/internal/dashboard"
	"github.com/civreg/civreg/internal/menu"
	"github.com/civreg/civreg/internal/observability"
	"github.com/civreg/civreg/internal/rbac"
	"github.com/civreg/civreg/internal/shared"
	"github.com/civreg/civreg/internal/users"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	SessionManager   *shared.SessionManager
	CSRFManager      *shared.CSRFManager
	AuthHandler      *auth.Handler
	MenuHandler      *menu.Handler
	CitizensHandler  *citizens.Handler
	UsersHandler     *users.Handler
	RBACHandler      *rbac.Handler
	DashboardHandler *dashboard.Handler
	RBACMiddleware   rbac.Middleware
	Metrics          *observability.Metrics
}

// NewRouter constructs the chi.Router with application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)

	r.Route("/api", func(r chi.Router) {
		r.Route("/menu", func(r chi.Router) {
			params.MenuHandler.MountRoutes(r, params.RBACMiddleware)
		})
		r.Route("/citizens", func(r chi.Router) {
			params.CitizensHandler.MountRoutes(r, params.RBACMiddleware)
		})
		r.Route("/users", func(r chi.Router) {
			params.UsersHandler.MountRoutes(r, params.RBACMiddleware)
		})
		r.Route("/rbac", func(r chi.Router) {
			params.RBACHandler.MountRoutes(r, params.RBACMiddleware)
		})
		if params.DashboardHandler != nil {
			r.Route("/dashboard", func(r chi.Router) {
				params.DashboardHandler.MountRoutes(r, params.RBACMiddleware)
			})
		}
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
