package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/arca-mz/storefront/internal/arca"
	"github.com/arca-mz/storefront/internal/service"
	"github.com/arca-mz/storefront/pkg/health"
	"github.com/arca-mz/storefront/pkg/middleware"
)

// RouterConfig bundles everything the router needs.
type RouterConfig struct {
	CartService     *service.CartService
	CheckoutService *service.CheckoutService
	AuthService     *service.AuthService
	Core            *arca.Client
	HealthHandler   *health.Handler
	Logger          *slog.Logger
	CORS            middleware.CORSConfig
}

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.RequestLogging(cfg.Logger))
	r.Use(middleware.PrometheusMetrics())
	r.Use(middleware.Tracing("storefront"))
	r.Use(middleware.RequestLogger(cfg.Logger))

	// Health check endpoints
	r.Get("/health/live", cfg.HealthHandler.LivenessHandler())
	r.Get("/health/ready", cfg.HealthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	cartHandler := NewCartHandler(cfg.CartService, cfg.Logger)
	checkoutHandler := NewCheckoutHandler(cfg.CheckoutService, cfg.Logger)
	authHandler := NewAuthHandler(cfg.AuthService, cfg.Logger)
	catalogHandler := NewCatalogHandler(cfg.Core, cfg.Logger)
	accountHandler := NewAccountHandler(cfg.Core, cfg.AuthService, cfg.Logger)
	adminHandler := NewAdminHandler(cfg.Core, cfg.AuthService, cfg.Logger)

	// Catalog is public; no session required.
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", catalogHandler.ListProducts)
		r.Get("/{productID}", catalogHandler.GetProduct)
	})

	// Everything else is scoped to a browser session.
	r.Group(func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(SessionIDFromHeader)

		r.Route("/api/v1/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Delete("/", cartHandler.ClearCart)

			r.Post("/lines", cartHandler.AddLine)
			r.Put("/lines/{productID}", cartHandler.SetQuantity)
			r.Post("/lines/{productID}/decrement", cartHandler.DecrementLine)
			r.Delete("/lines/{productID}", cartHandler.RemoveLine)
		})

		r.Route("/api/v1/checkout", func(r chi.Router) {
			r.Get("/", checkoutHandler.State)
			r.Post("/", checkoutHandler.Submit)
		})

		r.Route("/api/v1/auth", func(r chi.Router) {
			r.Post("/login", authHandler.Login)
			r.Post("/register", authHandler.Register)
			r.Post("/logout", authHandler.Logout)
			r.Get("/me", authHandler.Me)
		})

		r.Get("/api/v1/orders", accountHandler.MyOrders)
		r.Get("/api/v1/commissions", accountHandler.MyCommissions)
		r.Get("/api/v1/commissions/summary", accountHandler.CommissionSummary)
		r.Get("/api/v1/payouts", accountHandler.MyPayouts)

		r.Route("/api/v1/admin", func(r chi.Router) {
			r.Get("/orders", adminHandler.ListOrders)

			r.Route("/products", func(r chi.Router) {
				r.Get("/", adminHandler.ListProducts)
				r.Post("/", adminHandler.CreateProduct)
				r.Patch("/{productID}", adminHandler.UpdateProduct)
				r.Post("/{productID}/deactivate", adminHandler.DeactivateProduct)
			})

			r.Route("/payouts", func(r chi.Router) {
				r.Get("/", adminHandler.ListPayouts)
				r.Post("/generate", adminHandler.GeneratePayouts)
				r.Post("/{payoutID}/pay", adminHandler.MarkPayoutPaid)
			})
		})
	})

	return r
}
