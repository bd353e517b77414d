package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ruwinya10/agrilink-backend/api/controllers"
	"github.com/ruwinya10/agrilink-backend/api/middleware"
	"github.com/ruwinya10/agrilink-backend/internal/activity"
	"github.com/ruwinya10/agrilink-backend/internal/cart"
	"github.com/ruwinya10/agrilink-backend/internal/catalog"
	"github.com/ruwinya10/agrilink-backend/internal/deliveries"
	"github.com/ruwinya10/agrilink-backend/internal/orders"
	"github.com/ruwinya10/agrilink-backend/internal/rentals"
	"github.com/ruwinya10/agrilink-backend/pkg/config"
	"github.com/ruwinya10/agrilink-backend/pkg/db"
	"github.com/ruwinya10/agrilink-backend/pkg/enums"
	"github.com/ruwinya10/agrilink-backend/pkg/logger"
	"github.com/ruwinya10/agrilink-backend/pkg/redis"
)

// Services bundles the wired domain services the router exposes.
type Services struct {
	Catalog    catalog.Service
	Rentals    rentals.Service
	Cart       cart.Service
	Orders     orders.Service
	Deliveries deliveries.Service
	Activity   activity.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	userMirror middleware.UserMirror,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
		r.Route("/v1", func(r chi.Router) {
			r.Get("/listings", controllers.BrowseListings(svcs.Catalog, logg))
			r.Get("/listings/{listingId}", controllers.GetListing(svcs.Catalog, logg))
			r.Get("/inventory", controllers.BrowseInventory(svcs.Catalog, logg))
			r.Get("/inventory/{productId}", controllers.GetInventoryProduct(svcs.Catalog, logg))
			r.Get("/rentals", controllers.BrowseRentalItems(svcs.Catalog, logg))
			r.Get("/rentals/{rentalId}", controllers.GetRentalItem(svcs.Catalog, logg))
			r.Get("/rentals/{rentalId}/availability", controllers.RentalAvailability(svcs.Rentals, logg))
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, userMirror, logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Get("/ping", controllers.PrivatePing())

		r.Route("/v1/listings", func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, enums.UserRoleFarmer))
			r.Post("/", controllers.CreateListing(svcs.Catalog, logg))
			r.Get("/mine", controllers.MyListings(svcs.Catalog, logg))
			r.Patch("/{listingId}", controllers.UpdateListing(svcs.Catalog, logg))
			r.Delete("/{listingId}", controllers.RemoveListing(svcs.Catalog, logg))
		})

		r.Route("/v1/admin", func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, enums.UserRoleAdmin))
			r.Route("/inventory", func(r chi.Router) {
				r.Post("/", controllers.CreateInventoryProduct(svcs.Catalog, logg))
				r.Patch("/{productId}", controllers.UpdateInventoryProduct(svcs.Catalog, logg))
				r.Delete("/{productId}", controllers.DeleteInventoryProduct(svcs.Catalog, logg))
			})
			r.Route("/rentals", func(r chi.Router) {
				r.Post("/", controllers.CreateRentalItem(svcs.Catalog, logg))
				r.Patch("/{rentalId}", controllers.UpdateRentalItem(svcs.Catalog, logg))
				r.Delete("/{rentalId}", controllers.DeleteRentalItem(svcs.Catalog, logg))
			})
			r.Route("/deliveries", func(r chi.Router) {
				r.Get("/", controllers.ListDeliveries(svcs.Deliveries, logg))
				r.Post("/{deliveryId}/assign", controllers.AssignDelivery(svcs.Deliveries, logg))
				r.Post("/{deliveryId}/offer", controllers.OfferDelivery(svcs.Deliveries, logg))
				r.Post("/{deliveryId}/cancel", controllers.CancelDelivery(svcs.Deliveries, logg))
				r.Delete("/{deliveryId}", controllers.DeleteDelivery(svcs.Deliveries, logg))
			})
			r.Post("/orders/{orderId}/ready", controllers.MarkOrderReady(svcs.Orders, logg))
		})

		r.Route("/v1/driver/deliveries", func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, enums.UserRoleDriver))
			r.Get("/", controllers.MyDeliveryJobs(svcs.Deliveries, logg))
			r.Post("/{deliveryId}/accept", controllers.AcceptDelivery(svcs.Deliveries, logg))
			r.Post("/{deliveryId}/decline", controllers.DeclineDelivery(svcs.Deliveries, logg))
			r.Post("/{deliveryId}/advance", controllers.AdvanceDelivery(svcs.Deliveries, logg))
		})

		r.Route("/v1/cart", func(r chi.Router) {
			r.Get("/", controllers.GetCart(svcs.Cart, logg))
			r.Delete("/", controllers.ClearCart(svcs.Cart, logg))
			r.Post("/items", controllers.AddCartItem(svcs.Cart, logg))
			r.Patch("/items/{lineId}", controllers.UpdateCartItem(svcs.Cart, logg))
			r.Delete("/items/{lineId}", controllers.RemoveCartItem(svcs.Cart, logg))
		})

		r.Route("/v1/orders", func(r chi.Router) {
			r.Post("/", controllers.CreateOrder(svcs.Orders, logg))
			r.Get("/", controllers.MyOrders(svcs.Orders, logg))
			r.Get("/{orderId}", controllers.GetOrder(svcs.Orders, logg))
			r.Post("/{orderId}/cancel", controllers.CancelOrder(svcs.Orders, logg))
		})

		r.Route("/v1/deliveries", func(r chi.Router) {
			r.Get("/", controllers.MyDeliveries(svcs.Deliveries, logg))
			r.Get("/{deliveryId}", controllers.GetDelivery(svcs.Deliveries, logg))
			r.Post("/{deliveryId}/cancel", controllers.CancelDelivery(svcs.Deliveries, logg))
		})

		r.Get("/v1/activity", controllers.MyActivity(svcs.Activity, logg))
	})

	return r
}
