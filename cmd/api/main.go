package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/ruwinya10/agrilink-backend/api/routes"
	"github.com/ruwinya10/agrilink-backend/internal/activity"
	"github.com/ruwinya10/agrilink-backend/internal/cart"
	"github.com/ruwinya10/agrilink-backend/internal/catalog"
	"github.com/ruwinya10/agrilink-backend/internal/deliveries"
	"github.com/ruwinya10/agrilink-backend/internal/orders"
	"github.com/ruwinya10/agrilink-backend/internal/rentals"
	"github.com/ruwinya10/agrilink-backend/internal/users"
	"github.com/ruwinya10/agrilink-backend/pkg/config"
	"github.com/ruwinya10/agrilink-backend/pkg/db"
	"github.com/ruwinya10/agrilink-backend/pkg/logger"
	"github.com/ruwinya10/agrilink-backend/pkg/mailer"
	"github.com/ruwinya10/agrilink-backend/pkg/migrate"
	"github.com/ruwinya10/agrilink-backend/pkg/redis"
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

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
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
	usersRepo := users.NewRepository(gormDB)
	catalogRepo := catalog.NewRepository(gormDB)

	catalogSvc, err := catalog.NewService(catalogRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}
	rentalsSvc, err := rentals.NewService(rentals.NewRepository(gormDB), catalogRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create rentals service", err)
		os.Exit(1)
	}
	cartSvc, err := cart.NewService(cart.NewRepository(gormDB), catalogSvc, rentalsSvc, cfg.Pricing.Rate())
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}
	activitySvc, err := activity.NewService(activity.NewRepository(gormDB))
	if err != nil {
		logg.Error(context.Background(), "failed to create activity service", err)
		os.Exit(1)
	}
	deliveriesSvc, err := deliveries.NewService(deliveries.NewRepository(gormDB), dbClient, usersRepo, activitySvc, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create deliveries service", err)
		os.Exit(1)
	}
	ordersSvc, err := orders.NewService(
		orders.NewRepository(gormDB),
		dbClient,
		catalogSvc,
		rentalsSvc,
		deliveriesSvc,
		activitySvc,
		mailer.New(cfg.Mailer),
		cfg.Pricing,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
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
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, usersRepo, routes.Services{
			Catalog:    catalogSvc,
			Rentals:    rentalsSvc,
			Cart:       cartSvc,
			Orders:     ordersSvc,
			Deliveries: deliveriesSvc,
			Activity:   activitySvc,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
