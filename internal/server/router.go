package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"fanout-api/internal/appeal"
	"fanout-api/internal/calculator"
	"fanout-api/internal/config"
	"fanout-api/internal/fanout"
	"fanout-api/internal/handlers"
	"fanout-api/internal/observability"
	"fanout-api/internal/ratelimit"
)

// NewRouter wires middleware and every domain's routes. /health and /metrics
// sit outside admission control.
func NewRouter(cfg config.Config) http.Handler {

	r := chi.NewRouter()

	r.Use(observability.RequestIDMiddleware)
	r.Use(observability.TracingMiddleware)
	r.Use(observability.LoggingMiddleware)
	r.Use(middleware.Recoverer)

	r.Get("/health", handlers.Health)

	r.Handle("/metrics", observability.PrometheusHandler())

	r.Group(func(r chi.Router) {
		r.Use(ratelimit.RateMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst))
		r.Use(ratelimit.InFlightMiddleware(cfg.MaxInFlight, cfg.InFlightWait))

		calculator.RegisterRoutes(r, fanout.Options{
			MaxUnits:    cfg.MaxUnits,
			MaxDelay:    cfg.MaxDelay,
			Parallelism: cfg.Parallelism,
			UnitTimeout: cfg.UnitTimeout,
		})
		appeal.RegisterRoutes(r, appeal.NewFileStore(cfg.AppealsDir))
	})

	return r
}
