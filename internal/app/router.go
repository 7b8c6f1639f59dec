package app

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/harapan-ngo/harapan-cms/internal/announcements"
	"github.com/harapan-ngo/harapan-cms/internal/apperr"
	"github.com/harapan-ngo/harapan-cms/internal/auth"
	"github.com/harapan-ngo/harapan-cms/internal/observability"
	"github.com/harapan-ngo/harapan-cms/internal/platform/httpx"
	"github.com/harapan-ngo/harapan-cms/internal/programs"
	"github.com/harapan-ngo/harapan-cms/internal/users"
)

// HealthCheck probes a backing service.
type HealthCheck func(ctx context.Context) error

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger               *slog.Logger
	Config               *Config
	Errors               *httpx.ErrorResponder
	Authenticator        *auth.Authenticator
	AuthHandler          *auth.Handler
	ProgramsHandler      *programs.Handler
	AnnouncementsHandler *announcements.Handler
	UsersHandler         *users.Handler
	Metrics              *observability.Metrics
	HealthChecks         map[string]HealthCheck
}

// NewRouter constructs the chi.Router with the API defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Errors:  params.Errors,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		params.Errors.Respond(w, r, apperr.NotFound("Route not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		params.Errors.Respond(w, r, apperr.New(http.StatusMethodNotAllowed, "Method not allowed"))
	})

	r.Get("/healthz", healthHandler(params.HealthChecks))
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		if params.AuthHandler != nil {
			r.Route("/auth", params.AuthHandler.MountRoutes)
		}
		r.Group(func(r chi.Router) {
			r.Use(params.Authenticator.Middleware)
			if params.ProgramsHandler != nil {
				r.Route("/programs", params.ProgramsHandler.MountRoutes)
			}
			if params.AnnouncementsHandler != nil {
				r.Route("/announcements", params.AnnouncementsHandler.MountRoutes)
			}
			if params.UsersHandler != nil {
				r.Route("/users", params.UsersHandler.MountRoutes)
			}
		})
	})

	return r
}

func healthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		results := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(ctx); err != nil {
				status = http.StatusServiceUnavailable
				results[name] = err.Error()
				continue
			}
			results[name] = "ok"
		}
		state := "ok"
		if status != http.StatusOK {
			state = "degraded"
		}
		httpx.JSON(w, status, map[string]any{"status": state, "checks": results})
	}
}
