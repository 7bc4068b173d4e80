package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/storefront-pricing/api/controllers"
	cartcontrollers "github.com/angelmondragon/storefront-pricing/api/controllers/cart"
	"github.com/angelmondragon/storefront-pricing/api/middleware"
	"github.com/angelmondragon/storefront-pricing/internal/aggregator"
	"github.com/angelmondragon/storefront-pricing/internal/catalog"
	"github.com/angelmondragon/storefront-pricing/internal/pricing"
	"github.com/angelmondragon/storefront-pricing/pkg/config"
	"github.com/angelmondragon/storefront-pricing/pkg/logger"
)

// Deps carries everything the HTTP surface needs.
type Deps struct {
	Config    *config.Config
	Logger    *logger.Logger
	Checks    map[string]controllers.Pinger
	Gatherer  prometheus.Gatherer
	Products  catalog.Accessor
	Lister    catalog.Lister
	Resolver  *pricing.Resolver
	Session   *catalog.Session
	Customers *catalog.Customers
	Cart      cartcontrollers.Mutator
	Runner    *aggregator.Runner
	Latest    *aggregator.Latest
}

func NewRouter(d Deps) http.Handler {
	cfg, logg := d.Config, d.Logger
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, d.Checks))
	})

	if d.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/products", controllers.ProductList(d.Lister, logg))
		r.Get("/products/{sku}", controllers.ProductQuote(d.Products, d.Resolver, logg))

		r.Get("/customers", controllers.CustomerList(d.Customers))
		r.Get("/pricing-context", controllers.PricingContextGet(d.Session, logg))
		r.Put("/pricing-context", controllers.PricingContextPut(d.Session, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartcontrollers.CartFetch(d.Runner, logg))
			r.Delete("/", cartcontrollers.CartClear(d.Cart, logg))
			r.Get("/latest", cartcontrollers.CartLatest(d.Latest, logg))

			r.Post("/items", cartcontrollers.CartAddItem(d.Cart, logg))
			r.Patch("/items/{sku}", cartcontrollers.CartUpdateQuantity(d.Cart, logg))
			r.Delete("/items/{sku}", cartcontrollers.CartRemoveItem(d.Cart, logg))

			r.Post("/bundles", cartcontrollers.CartAddBundle(d.Cart, logg))
			r.Delete("/bundles/{name}", cartcontrollers.CartRemoveBundle(d.Cart, logg))
		})
	})

	return r
}
