package httpserver

import (
	"net/http"
	"time"

	"time-report-go/internal/config"
	"time-report-go/internal/observability"
	"time-report-go/internal/transport/httpserver/handler"
	authmw "time-report-go/internal/transport/httpserver/middleware"
	"time-report-go/pkg/logger"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// NewRouter mounts the API. metrics may be nil when METRICS_ENABLED is off.
func NewRouter(cfg config.Config, handlers *handler.Handlers, profiles authmw.ProfileSaver, metrics *observability.Metrics, log logger.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(observability.AccessLog(log, metrics))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(authmw.NewCORS(cfg.CORSOrigins))
	r.Use(observability.Tracing)

	if metrics != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", handlers.Common.Health)
		r.Get("/currencies", handlers.Common.Currencies)

		auth := authmw.NewSupabaseAuth(cfg.Supabase, profiles, log)
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware)

			r.Get("/auth/me", handlers.Common.AuthMe)
			r.Get("/profile", handlers.Common.GetProfile)
			r.Patch("/profile", handlers.Common.UpdateProfile)

			r.Get("/clients", handlers.Tracking.ListClients)
			r.Post("/clients", handlers.Tracking.CreateClient)
			r.Get("/clients/{id}", handlers.Tracking.GetClient)
			r.Patch("/clients/{id}", handlers.Tracking.UpdateClient)
			r.Delete("/clients/{id}", handlers.Tracking.DeleteClient)
			r.Get("/clients/{id}/periods", handlers.Tracking.ListPeriods)
			r.Get("/clients/{id}/periods/open", handlers.Tracking.GetOpenPeriod)

			r.Get("/periods/{id}/next", handlers.Tracking.SuggestNextPeriod)
			r.Post("/periods/{id}/close", handlers.Tracking.ClosePeriod)

			r.Get("/timeslots", handlers.Tracking.ListTimeslots)
			r.Post("/timeslots", handlers.Tracking.ReportTime)
			r.Patch("/timeslots/{id}", handlers.Tracking.UpdateTimeslot)
			r.Delete("/timeslots/{id}", handlers.Tracking.DeleteTimeslot)

			r.Get("/revenue/summary", handlers.Revenue.Summary)
			r.Get("/rates", handlers.Revenue.CurrentRates)
		})
	})

	return r
}
