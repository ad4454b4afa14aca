package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/phamdt203/zenmart-backend/api/routes"
	"github.com/phamdt203/zenmart-backend/internal/balance"
	"github.com/phamdt203/zenmart-backend/internal/inventory"
	"github.com/phamdt203/zenmart-backend/internal/ledger"
	"github.com/phamdt203/zenmart-backend/internal/notifications"
	"github.com/phamdt203/zenmart-backend/internal/orders"
	"github.com/phamdt203/zenmart-backend/internal/payouts"
	"github.com/phamdt203/zenmart-backend/internal/reconcile"
	"github.com/phamdt203/zenmart-backend/pkg/config"
	"github.com/phamdt203/zenmart-backend/pkg/db"
	"github.com/phamdt203/zenmart-backend/pkg/logger"
	"github.com/phamdt203/zenmart-backend/pkg/migrate"
	"github.com/phamdt203/zenmart-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	gormDB := dbClient.DB()
	inventoryRepo := inventory.NewRepository(gormDB)
	balanceRepo := balance.NewRepository(gormDB)
	ledgerRepo := ledger.NewRepository(gormDB)
	ordersRepo := orders.NewRepository(gormDB)
	payoutsRepo := payouts.NewRepository(gormDB)
	notificationsRepo := notifications.NewRepository(gormDB)
	reconcileRepo := reconcile.NewRepository(gormDB)

	inventoryService, err := inventory.NewService(inventoryRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create inventory service", err)
		os.Exit(1)
	}
	balanceService, err := balance.NewService(balanceRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create balance service", err)
		os.Exit(1)
	}
	notificationsService, err := notifications.NewService(notificationsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}
	ledgerService, err := ledger.NewService(ledgerRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create ledger service", err)
		os.Exit(1)
	}
	ordersService, err := orders.NewService(ordersRepo, dbClient, inventoryService, balanceService, ledgerService, notificationsService)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}
	payoutsService, err := payouts.NewService(payoutsRepo, dbClient, balanceService, ledgerService, redisClient, cfg.Payouts.StatsCacheTTL, notificationsService)
	if err != nil {
		logg.Error(context.Background(), "failed to create payouts service", err)
		os.Exit(1)
	}
	reconcileService, err := reconcile.NewService(reconcileRepo, ordersRepo, payoutsRepo, balanceRepo, inventoryRepo, redisClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create reconcile service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			ordersService,
			payoutsService,
			notificationsService,
			reconcileService,
			ledgerService,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
