package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/storefront/pkg/health"
	"github.com/utafrali/storefront/pkg/middleware"
)

// RouterConfig carries everything the router wires together.
type RouterConfig struct {
	ServiceName    string
	Logger         *slog.Logger
	Health         *health.Handler
	Catalog        *CatalogHandler
	Cart           *CartHandler
	Checkout       *CheckoutHandler
	Auth           *AuthHandler
	JWTSecret      string
	AllowedOrigins []string
	RateLimitRPS   int
	RateLimitBurst int
	TracingEnabled bool
}

// NewRouter assembles the HTTP surface: observability middleware, health
// probes, metrics, and the versioned API.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestLogging(cfg.Logger))
	if cfg.TracingEnabled {
		r.Use(middleware.Tracing(cfg.ServiceName))
	}
	r.Use(middleware.PrometheusMetrics(cfg.ServiceName))

	corsCfg := middleware.DefaultCORSConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsCfg.AllowedOrigins = cfg.AllowedOrigins
	}
	r.Use(middleware.CORS(corsCfg))

	if cfg.RateLimitRPS > 0 {
		r.Use(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst, cfg.Logger))
	}

	r.Get("/health/live", cfg.Health.LivenessHandler())
	r.Get("/health/ready", cfg.Health.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(middleware.RequestLogger(cfg.Logger))

		api.Get("/products", cfg.Catalog.List)
		api.Get("/products/facets", cfg.Catalog.Facets)
		api.Get("/products/{id}", cfg.Catalog.Get)

		api.Post("/auth/login", cfg.Auth.Login)
		api.Post("/auth/register", cfg.Auth.Register)

		api.Group(func(session chi.Router) {
			session.Use(Session(cfg.JWTSecret))

			session.Get("/cart", cfg.Cart.Get)
			session.Post("/cart/items", cfg.Cart.AddItem)
			session.Put("/cart/items/{productID}", cfg.Cart.UpdateQuantity)
			session.Delete("/cart/items/{productID}", cfg.Cart.RemoveItem)
			session.Delete("/cart", cfg.Cart.Clear)

			session.Post("/checkout/quote", cfg.Checkout.Quote)
			session.Post("/checkout", cfg.Checkout.Submit)
		})
	})

	return r
}
