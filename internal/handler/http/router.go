package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/No25ha/Market/pkg/health"
	"github.com/No25ha/Market/pkg/middleware"
)

// Services are the dependencies behind the local API.
type Services struct {
	Session   SessionService
	Passwords PasswordResetter
	Catalog   Catalog
	Cart      CartStore
	Wishlist  WishlistStore
	Addresses AddressStore
	Orders    OrderStore
	Checkout  Checkout
}

// RouterConfig holds the local API's access and caching settings.
type RouterConfig struct {
	// APIToken, when set, must be sent as a bearer token on /api routes.
	APIToken      string
	CORSOrigins   []string
	PprofCIDRs    []string
	CatalogMaxAge int
	Timeout       time.Duration
}

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(svc Services, healthHandler *health.Handler, logger *slog.Logger, cfg RouterConfig) http.Handler {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(cfg.Timeout))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("storefront"))
	r.Use(middleware.Tracing("storefront"))
	r.Use(middleware.RequestLogger(logger, shopperID(svc.Session)))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	middleware.RegisterPprof(r, cfg.PprofCIDRs, logger)

	sessionHandler := NewSessionHandler(svc.Session, svc.Passwords, logger)
	catalogHandler := NewCatalogHandler(svc.Catalog, logger)
	cartHandler := NewCartHandler(svc.Cart, logger)
	wishlistHandler := NewWishlistHandler(svc.Wishlist, logger)
	addressHandler := NewAddressHandler(svc.Addresses, logger)
	orderHandler := NewOrderHandler(svc.Orders, svc.Checkout, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.BearerToken(cfg.APIToken))
		r.Use(ContentTypeJSON)

		// Catalog
		r.Group(func(r chi.Router) {
			r.Use(middleware.CacheControl(cfg.CatalogMaxAge))

			r.Get("/products", catalogHandler.ListProducts)
			r.Get("/products/{id}", catalogHandler.GetProduct)
			r.Get("/categories", catalogHandler.ListCategories)
			r.Get("/categories/{id}", catalogHandler.GetCategory)
			r.Get("/categories/{id}/subcategories", catalogHandler.ListCategorySubCategories)
			r.Get("/subcategories", catalogHandler.ListSubCategories)
			r.Get("/subcategories/{id}", catalogHandler.GetSubCategory)
			r.Get("/brands", catalogHandler.ListBrands)
			r.Get("/brands/{id}", catalogHandler.GetBrand)
		})

		// Session-scoped
		r.Group(func(r chi.Router) {
			r.Use(middleware.NoStore)

			r.Route("/session", func(r chi.Router) {
				r.Get("/", sessionHandler.Get)
				r.Post("/signin", sessionHandler.SignIn)
				r.Post("/signup", sessionHandler.SignUp)
				r.Post("/logout", sessionHandler.Logout)
				r.Put("/profile", sessionHandler.UpdateProfile)
				r.Put("/password", sessionHandler.ChangePassword)
				r.Post("/password/forgot", sessionHandler.ForgotPassword)
				r.Post("/password/verify", sessionHandler.VerifyResetCode)
				r.Put("/password/reset", sessionHandler.ResetPassword)
			})

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", cartHandler.GetCart)
				r.Delete("/", cartHandler.ClearCart)
				r.Post("/refresh", cartHandler.Refresh)
				r.Put("/coupon", cartHandler.ApplyCoupon)

				r.Post("/items", cartHandler.AddItem)
				r.Put("/items/{productId}", cartHandler.UpdateItemQuantity)
				r.Delete("/items/{productId}", cartHandler.RemoveItem)
			})

			r.Route("/wishlist", func(r chi.Router) {
				r.Get("/", wishlistHandler.List)
				r.Post("/refresh", wishlistHandler.Refresh)
				r.Post("/items", wishlistHandler.Add)
				r.Delete("/items/{id}", wishlistHandler.Remove)
			})

			r.Route("/addresses", func(r chi.Router) {
				r.Get("/", addressHandler.List)
				r.Post("/", addressHandler.Add)
				r.Post("/refresh", addressHandler.Refresh)
				r.Put("/selected", addressHandler.Select)
				r.Delete("/{id}", addressHandler.Remove)
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", orderHandler.List)
				r.Post("/refresh", orderHandler.Refresh)
			})
			r.Post("/checkout", orderHandler.Checkout)
		})
	})

	return r
}

func shopperID(session SessionService) middleware.ShopperFunc {
	if session == nil {
		return nil
	}
	return func(context.Context) string {
		if u := session.Snapshot().User; u != nil {
			return u.ID
		}
		return ""
	}
}
