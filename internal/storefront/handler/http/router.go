package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/a-bjn/sudexpert-storefront/internal/storefront/service"
	"github.com/a-bjn/sudexpert-storefront/pkg/health"
	"github.com/a-bjn/sudexpert-storefront/pkg/middleware"
)

// RouterConfig carries the handler dependencies and HTTP-level settings.
type RouterConfig struct {
	Cart          *service.CartService
	Auth          *service.AuthService
	Catalog       *service.CatalogService
	Checkout      *service.CheckoutService
	Orders        *service.OrderService
	Health        *health.Handler
	Logger        *slog.Logger
	CORS          middleware.CORSConfig
	SecureCookies bool
	SessionTTL    time.Duration
	PprofCIDRs    []string
}

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(cfg.Logger))
	r.Use(middleware.PrometheusMetrics("storefront"))
	r.Use(middleware.Tracing("storefront"))
	r.Use(middleware.RequestLogger(cfg.Logger))
	r.Use(middleware.CORS(cfg.CORS))

	// Health check endpoints
	r.Get("/health/live", cfg.Health.LivenessHandler())
	r.Get("/health/ready", cfg.Health.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Pprof debug endpoints with IP allowlist.
	middleware.RegisterPprof(r, cfg.PprofCIDRs, cfg.Logger)

	cartHandler := NewCartHandler(cfg.Cart, cfg.Logger)
	authHandler := NewAuthHandler(cfg.Auth, cfg.Logger)
	catalogHandler := NewCatalogHandler(cfg.Catalog, cfg.Logger)
	checkoutHandler := NewCheckoutHandler(cfg.Checkout, cfg.Orders, cfg.Logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(Session(cfg.SecureCookies, cfg.SessionTTL))

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/logout", authHandler.Logout)
			r.Get("/session", authHandler.Session)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Delete("/", cartHandler.ClearCart)

			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{productId}", cartHandler.UpdateItemQuantity)
			r.Delete("/items/{productId}", cartHandler.RemoveItem)
		})

		r.Get("/products", catalogHandler.ListProducts)
		r.Get("/products/{productId}", catalogHandler.GetProduct)
		r.Get("/categories", catalogHandler.ListCategories)
		r.Get("/categories/{categoryId}/products", catalogHandler.ListCategoryProducts)

		r.Route("/checkout", func(r chi.Router) {
			r.Get("/", checkoutHandler.GetState)
			r.Post("/delivery", checkoutHandler.SubmitDelivery)
			r.Post("/payment", checkoutHandler.CompletePayment)
		})

		r.Get("/orders", checkoutHandler.ListOrders)
		r.Get("/orders/code/{orderCode}", checkoutHandler.GetOrderByCode)
	})

	return r
}
