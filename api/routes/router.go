package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/phamdt203/zenmart-backend/api/controllers"
	"github.com/phamdt203/zenmart-backend/api/middleware"
	"github.com/phamdt203/zenmart-backend/internal/ledger"
	"github.com/phamdt203/zenmart-backend/internal/notifications"
	"github.com/phamdt203/zenmart-backend/internal/orders"
	"github.com/phamdt203/zenmart-backend/internal/payouts"
	"github.com/phamdt203/zenmart-backend/internal/reconcile"
	"github.com/phamdt203/zenmart-backend/pkg/config"
	"github.com/phamdt203/zenmart-backend/pkg/db"
	"github.com/phamdt203/zenmart-backend/pkg/logger"
	"github.com/phamdt203/zenmart-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	ordersService orders.Service,
	payoutsService payouts.Service,
	notificationsService notifications.Service,
	reconcileService reconcile.Service,
	ledgerService ledger.Service,
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

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/orders", func(r chi.Router) {
			r.Post("/", controllers.CreateOrder(ordersService, logg))
			r.Get("/{orderID}", controllers.GetOrder(ordersService, logg))
			r.Patch("/{orderID}/status", controllers.UpdateOrderStatus(ordersService, logg))
			r.Post("/{orderID}/cancel", controllers.RequestOrderCancel(ordersService, logg))
			r.Delete("/{orderID}", controllers.DeleteOrder(ordersService, logg))
		})

		r.Route("/customers/{customerID}", func(r chi.Router) {
			r.Get("/orders", controllers.ListCustomerOrders(ordersService, logg))
		})

		r.Route("/sellers/{sellerID}", func(r chi.Router) {
			r.Get("/stats", controllers.SellerStats(payoutsService, logg))
			r.Get("/items", controllers.ListSellerItems(ordersService, logg))
			r.Get("/payouts", controllers.ListSellerPayouts(payoutsService, logg))
			r.Post("/payouts", controllers.RequestPayout(payoutsService, logg))
			r.Get("/ledger", controllers.ListSellerLedger(ledgerService, logg))
			r.Post("/balance/sync", controllers.SyncSellerBalance(reconcileService, logg))
		})

		r.Route("/payouts/{payoutID}", func(r chi.Router) {
			r.Get("/", controllers.GetPayout(payoutsService, logg))
			r.Patch("/status", controllers.UpdatePayoutStatus(payoutsService, logg))
		})

		r.Route("/users/{userID}/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(notificationsService, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(notificationsService, logg))
			r.Post("/{notificationID}/read", controllers.MarkNotificationRead(notificationsService, logg))
		})
	})

	return r
}
