package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ledgerlink/ledgerlink/internal/billing"
	"github.com/ledgerlink/ledgerlink/internal/dashboard"
	"github.com/ledgerlink/ledgerlink/internal/observability"
	"github.com/ledgerlink/ledgerlink/internal/platform/httpx"
	"github.com/ledgerlink/ledgerlink/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	BillingHandler   *billing.Handler
	DashboardHandler *dashboard.Handler
	JobHandler       *jobs.Handler
	Metrics          *observability.Metrics
}

// NewRouter constructs the chi.Router with application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/api", func(api chi.Router) {
		if params.BillingHandler != nil {
			params.BillingHandler.MountRoutes(api)
		}
		if params.DashboardHandler != nil {
			api.Route("/dashboard", func(dash chi.Router) {
				params.DashboardHandler.MountRoutes(dash)
			})
		}
		if params.JobHandler != nil {
			api.Route("/jobs", func(jobRoutes chi.Router) {
				params.JobHandler.MountRoutes(jobRoutes)
			})
		}
	})

	return r
}
