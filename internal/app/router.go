package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/imobiflow/imobiflow/internal/agencies"
	"github.com/imobiflow/imobiflow/internal/documents"
	"github.com/imobiflow/imobiflow/internal/leads"
	"github.com/imobiflow/imobiflow/internal/observability"
	"github.com/imobiflow/imobiflow/internal/properties"
	"github.com/imobiflow/imobiflow/internal/rbac"
	"github.com/imobiflow/imobiflow/internal/shared"
	"github.com/imobiflow/imobiflow/internal/subscriptions"
	"github.com/imobiflow/imobiflow/internal/teams"
	"github.com/imobiflow/imobiflow/internal/users"
	"github.com/imobiflow/imobiflow/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	RBACMiddleware rbac.Middleware

	MeHandler           *rbac.MeHandler
	AgenciesHandler     *agencies.Handler
	UsersHandler        *users.Handler
	TeamsHandler        *teams.Handler
	LeadsHandler        *leads.Handler
	PropertiesHandler   *properties.Handler
	DocumentsHandler    *documents.Handler
	SubscriptionHandler *subscriptions.Handler
	JobHandler          *jobs.Handler
	Metrics             *observability.Metrics
}

// NewRouter constructs the chi.Router. Every business route is mounted
// inside the authenticated group: RequirePrincipal first, then the
// scope derivation, then each module's own guards.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
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
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	guard := params.RBACMiddleware
	r.Group(func(r chi.Router) {
		r.Use(guard.RequirePrincipal)
		r.Use(guard.WithAccessScope)

		r.Route("/me", func(r chi.Router) {
			params.MeHandler.MountRoutes(r)
			if params.SubscriptionHandler != nil {
				params.SubscriptionHandler.MountMeRoutes(r)
			}
		})
		if params.AgenciesHandler != nil {
			r.Route("/agencies", params.AgenciesHandler.MountRoutes)
		}
		if params.UsersHandler != nil {
			r.Route("/users", params.UsersHandler.MountRoutes)
		}
		if params.TeamsHandler != nil {
			r.Route("/teams", params.TeamsHandler.MountRoutes)
		}
		if params.LeadsHandler != nil {
			r.Route("/leads", params.LeadsHandler.MountRoutes)
		}
		if params.PropertiesHandler != nil {
			r.Route("/properties", params.PropertiesHandler.MountRoutes)
		}
		if params.DocumentsHandler != nil {
			r.Route("/documents", params.DocumentsHandler.MountRoutes)
		}
		if params.SubscriptionHandler != nil {
			r.Route("/subscriptions", params.SubscriptionHandler.MountRoutes)
		}
		if params.JobHandler != nil {
			r.Route("/jobs", params.JobHandler.MountRoutes)
		}
	})

	return r
}
