package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/angelmondragon/storefront-backend/api/controllers"
	admincontrollers "github.com/angelmondragon/storefront-backend/api/controllers/admin"
	cartcontrollers "github.com/angelmondragon/storefront-backend/api/controllers/cart"
	checkoutcontrollers "github.com/angelmondragon/storefront-backend/api/controllers/checkout"
	ordercontrollers "github.com/angelmondragon/storefront-backend/api/controllers/orders"
	wishlistcontrollers "github.com/angelmondragon/storefront-backend/api/controllers/wishlist"
	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/internal/cart"
	checkoutsvc "github.com/angelmondragon/storefront-backend/internal/checkout"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/internal/profiles"
	"github.com/angelmondragon/storefront-backend/internal/refunds"
	"github.com/angelmondragon/storefront-backend/internal/shipments"
	"github.com/angelmondragon/storefront-backend/internal/tracking"
	"github.com/angelmondragon/storefront-backend/internal/wishlist"
	"github.com/angelmondragon/storefront-backend/pkg/auth/session"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	"github.com/angelmondragon/storefront-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	redisP controllers.Pinger,
	idempotencyStore redis.IdempotencyStore,
	sessionChecker session.AccessSessionChecker,
	metricSet *metrics.Set,
	profileService profiles.Service,
	cartService cart.Service,
	checkoutService checkoutsvc.Service,
	trackingService tracking.Service,
	wishlistService wishlist.Service,
	ordersService orders.Service,
	shipmentsService shipments.Service,
	refundsService refunds.Service,
	activityFeed admincontrollers.ActivityFeed,
) http.Handler {
	r := chi.NewRouter()

	var httpMetrics *metrics.HTTPMetrics
	if metricSet != nil {
		httpMetrics = metricSet.HTTP
	}

	r.Use(
		chimw.RealIP,
		chimw.RequestID,
		middleware.RequestContext(logg),
		middleware.Recoverer(logg),
		middleware.Logging(logg, httpMetrics),
		middleware.CORS(cfg.App.PublicURL),
	)

	cartCookies := middleware.NewCartCookies(cfg.Cart, cfg.App.IsProd())

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, map[string]controllers.Pinger{"db": dbP, "redis": redisP}, logg))
	})
	r.Method(http.MethodGet, "/metrics", metricSet.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.OptionalAuth(cfg.JWT, sessionChecker, logg))
		r.Use(cartCookies.Middleware)
		r.Use(middleware.Idempotency(idempotencyStore, cfg.Idempotency, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartcontrollers.Fetch(cartService, logg))
			r.Post("/", cartcontrollers.Apply(cartService, cartCookies, logg))
		})
		r.Post("/checkout", checkoutcontrollers.PlaceOrder(checkoutService, cartCookies, logg))
		r.Get("/orders/track", ordercontrollers.Track(trackingService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireUser(logg))
			r.Get("/me", controllers.Me(profileService, logg))
			r.Route("/wishlist", func(r chi.Router) {
				r.Get("/", wishlistcontrollers.List(wishlistService, logg))
				r.Post("/", wishlistcontrollers.Toggle(wishlistService, logg))
			})
			r.Post("/orders/{orderId}/refunds", ordercontrollers.RequestRefund(refundsService, logg))
		})
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessionChecker, logg))
		r.Use(middleware.RequireAdmin(profileService, logg))
		r.Use(middleware.Idempotency(idempotencyStore, cfg.Idempotency, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", admincontrollers.ListOrders(ordersService, logg))
			r.Post("/", admincontrollers.CreateManualOrder(checkoutService, logg))
			r.Get("/states", admincontrollers.OrderStates(logg))
			r.Route("/{orderId}", func(r chi.Router) {
				r.Get("/", admincontrollers.OrderDetail(ordersService, logg))
				r.Get("/history", admincontrollers.OrderHistory(ordersService, logg))
				r.Get("/transitions", admincontrollers.OrderTransitions(ordersService, logg))
				r.Get("/activity", admincontrollers.OrderActivity(activityFeed, logg))
				r.Post("/status", admincontrollers.TransitionOrder(ordersService, logg))
				r.Post("/hold", admincontrollers.HoldOrder(ordersService, logg))
				r.Post("/release", admincontrollers.ReleaseOrder(ordersService, logg))
				r.Patch("/notes", admincontrollers.UpdateNotes(ordersService, logg))
				r.Get("/shipments", admincontrollers.ListShipments(shipmentsService, logg))
				r.Post("/shipments", admincontrollers.CreateShipment(shipmentsService, logg))
				r.Post("/refunds", admincontrollers.CreateRefund(refundsService, logg))
			})
		})
		r.Route("/shipments/{shipmentId}", func(r chi.Router) {
			r.Post("/items", admincontrollers.AddShipmentItems(shipmentsService, logg))
			r.Post("/shipped", admincontrollers.MarkShipped(shipmentsService, logg))
			r.Post("/delivered", admincontrollers.MarkDelivered(shipmentsService, logg))
		})
		r.Route("/refunds", func(r chi.Router) {
			r.Get("/", admincontrollers.ListRefunds(refundsService, logg))
			r.Post("/{refundId}", admincontrollers.DecideRefund(refundsService, logg))
		})
	})

	return r
}
