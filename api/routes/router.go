package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/storefront-backend/api/controllers"
	cartcontrollers "github.com/angelmondragon/storefront-backend/api/controllers/cart"
	webhookcontrollers "github.com/angelmondragon/storefront-backend/api/controllers/webhooks"
	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/internal/catalog"
	"github.com/angelmondragon/storefront-backend/internal/checkout"
	"github.com/angelmondragon/storefront-backend/internal/contact"
	mercadopagowebhook "github.com/angelmondragon/storefront-backend/internal/webhooks/mercadopago"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	"github.com/angelmondragon/storefront-backend/pkg/redis"
)

// RouterParams carries everything the HTTP surface is wired to. Redis is optional;
// without it idempotency replay and contact rate limiting are off.
type RouterParams struct {
	Config   *config.Config
	Logger   *logger.Logger
	Metrics  *metrics.StorefrontMetrics
	Gatherer prometheus.Gatherer
	DB       controllers.Pinger
	Redis    *redis.Client

	Catalog         catalog.Service
	Cart            cartcontrollers.Service
	Checkout        checkout.Service
	Contact         contact.Service
	Webhooks        webhookcontrollers.NotificationHandler
	WebhookVerifier *mercadopagowebhook.Verifier
}

func NewRouter(p RouterParams) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, p.Metrics),
		middleware.CORS(cfg.Storefront.CORSOrigins),
	)

	var cache controllers.Pinger
	idempotency := func(next http.Handler) http.Handler { return next }
	contactLimit := func(next http.Handler) http.Handler { return next }
	if p.Redis != nil {
		cache = p.Redis
		idempotency = middleware.Idempotency(p.Redis, cfg.MercadoPago.IdempotencyTTL, logg)
		contactLimit = middleware.RateLimit(middleware.NewRateLimitPolicy(
			"contact",
			cfg.ContactRateLimit.Window,
			cfg.ContactRateLimit.IPLimit,
			cfg.ContactRateLimit.EmailLimit,
		), p.Redis, logg)
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, p.DB, cache))
	})

	if p.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(p.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/products", controllers.ProductList(p.Catalog, logg))
		r.Get("/products/{slug}", controllers.ProductDetail(p.Catalog, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Use(middleware.CartSession(cfg.Cart, logg))
			r.Get("/", cartcontrollers.CartFetch(p.Cart, logg))
			r.Delete("/", cartcontrollers.CartClear(p.Cart, logg))
			r.Post("/items", cartcontrollers.CartAddItem(p.Cart, p.Catalog, logg))
			r.Patch("/items/{productId}", cartcontrollers.CartUpdateItem(p.Cart, logg))
			r.Delete("/items/{productId}", cartcontrollers.CartRemoveItem(p.Cart, logg))
			r.Put("/visibility", cartcontrollers.CartVisibility(p.Cart, logg))
			r.With(idempotency).Post("/checkout", cartcontrollers.CartCheckout(p.Cart, p.Checkout, logg))
		})

		r.With(idempotency).Post("/checkout/preference", controllers.CheckoutPreference(p.Checkout, logg))
		r.Post("/webhooks/mercadopago", webhookcontrollers.MercadoPagoWebhook(p.Webhooks, p.WebhookVerifier, p.Metrics, logg))
		r.With(contactLimit).Post("/contact", controllers.ContactSubmit(p.Contact, logg))
	})

	return r
}
