package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/a-bjn/sudexpert-storefront/internal/notifier/service"
	"github.com/a-bjn/sudexpert-storefront/pkg/health"
	"github.com/a-bjn/sudexpert-storefront/pkg/middleware"
)

// NewRouter creates a chi router with all notifier routes registered.
// The token-bucket rate limit on top of the service's hourly cap keeps a
// burst from reaching the database at all.
func NewRouter(
	notifierService *service.NotifierService,
	healthHandler *health.Handler,
	logger *slog.Logger,
	cors middleware.CORSConfig,
	rps, burst int,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("notifier"))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS(cors))

	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	notifierHandler := NewNotifierHandler(notifierService, logger)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(rps, burst, logger))
		r.Post("/api/token-form", notifierHandler.Submit)
	})

	return r
}
