package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/Swarajhere/Healthcare-Appointment-System-sub000/internal/auth"
	"github.com/Swarajhere/Healthcare-Appointment-System-sub000/internal/metrics"
	"github.com/Swarajhere/Healthcare-Appointment-System-sub000/internal/schedule"
	"github.com/Swarajhere/Healthcare-Appointment-System-sub000/pkg/logging"
)

type RouterConfig struct {
	Service   *schedule.Service
	Metrics   *metrics.Metrics
	Logger    *logging.Logger
	JWTSecret string
	PgPool    *pgxpool.Pool
	Redis     *redis.Client
	Env       string
	Version   string
}

func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}

	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Logger))

	// Unauthenticated operational endpoints
	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// Everything else requires a verified (subject, role) pair
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(cfg.JWTSecret))

		r.Get("/doctors/{doctorID}/availability", availabilityHandler(cfg.Service, cfg.Metrics))
		r.Put("/doctors/{doctorID}/availability", updateAvailabilityHandler(cfg.Service))

		r.Post("/appointments", bookAppointmentHandler(cfg.Service, cfg.Metrics))
		r.Get("/appointments", listAppointmentsHandler(cfg.Service))
		r.Post("/appointments/{id}/complete", completeAppointmentHandler(cfg.Service))
		r.Post("/appointments/{id}/cancel", cancelAppointmentHandler(cfg.Service))
	})

	return r
}
