package app

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/odyssey-erp/recon-portal/internal/auth"
	"github.com/odyssey-erp/recon-portal/internal/observability"
	"github.com/odyssey-erp/recon-portal/internal/platform/httpx"
	"github.com/odyssey-erp/recon-portal/internal/shared"
	"github.com/odyssey-erp/recon-portal/internal/view"
	"github.com/odyssey-erp/recon-portal/jobs"
	"github.com/odyssey-erp/recon-portal/report"
	"github.com/odyssey-erp/recon-portal/web"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	Templates      *view.Engine
	SessionManager *shared.SessionManager
	Guard          *auth.Guard
	AuthHandler    *auth.Handler
	ReportHandler  *report.Handler
	JobHandler     *jobs.Handler
	Metrics        *observability.Metrics
	AccessLog      bool
}

// NewRouter constructs the chi.Router with portal defaults. Metrics are
// recorded here but exposed on a separate listener.
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
	if params.AccessLog {
		r.Use(chimw.Logger)
	}
	r.NotFound(params.Templates.NotFound)
	r.MethodNotAllowed(params.Templates.NotFound)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, httpx.StatusResponse{Status: "ok"})
	})

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		params.Logger.Error("create static sub filesystem", slog.Any("error", err))
	} else {
		fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
		r.Handle("/static/*", staticCacheHandler(fileServer))
	}

	params.AuthHandler.MountRoutes(r)

	r.Route("/api", func(api chi.Router) {
		params.AuthHandler.MountAPI(api, LoginRateLimit(params.Config.LoginRateLimit))
		api.Group(func(protected chi.Router) {
			protected.Use(params.Guard.RequireAPI)
			if params.JobHandler != nil {
				params.JobHandler.MountAPI(protected)
			}
		})
	})

	if params.JobHandler != nil {
		r.Route("/jobs", func(jr chi.Router) {
			jr.Use(params.Guard.RequireAPI)
			params.JobHandler.MountRoutes(jr)
		})
	}

	r.Group(func(pages chi.Router) {
		pages.Use(params.Guard.RequirePage)
		params.ReportHandler.MountRoutes(pages)
	})

	return r
}

// staticCacheHandler wraps a file server with Cache-Control headers.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
