package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dressly/storefront/internal/badge"
	"github.com/dressly/storefront/internal/reconciler"
	"github.com/dressly/storefront/internal/selection"
	"github.com/dressly/storefront/pkg/health"
	"github.com/dressly/storefront/pkg/middleware"
)

// RouterConfig holds the dependencies and settings for the HTTP router.
type RouterConfig struct {
	Selections     *selection.Service
	Reconciler     *reconciler.Reconciler
	Badge          *badge.Counter
	Health         *health.Handler
	Logger         *slog.Logger
	JWTSecret      string
	RateLimitRPS   int
	RateLimitBurst int
}

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.CORS)
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(cfg.Logger))
	r.Use(middleware.PrometheusMetrics("storefront"))
	r.Use(middleware.Tracing("storefront"))
	r.Use(middleware.RequestLogger(cfg.Logger))
	r.Use(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst, cfg.Logger))

	// Health check endpoints
	r.Get("/health/live", cfg.Health.LivenessHandler())
	r.Get("/health/ready", cfg.Health.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	productHandler := NewProductHandler(cfg.Selections, cfg.Logger)
	selectionHandler := NewSelectionHandler(cfg.Selections, cfg.Reconciler, cfg.Logger)
	cartHandler := NewCartHandler(cfg.Badge, cfg.Logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(Authenticate(cfg.JWTSecret, cfg.Logger))
		r.Use(SessionOwner)

		r.Get("/products/{productID}/view", productHandler.GetView)

		r.Route("/selections/{productID}", func(r chi.Router) {
			r.Get("/", selectionHandler.Get)
			r.Put("/pick", selectionHandler.Pick)
			r.Post("/lines", selectionHandler.AddLine)
			r.Patch("/lines/{key}", selectionHandler.UpdateLine)
			r.Delete("/lines/{key}", selectionHandler.RemoveLine)
			r.Post("/checkout", selectionHandler.Checkout)
		})

		r.Get("/cart/count", cartHandler.GetCount)
	})

	return r
}
