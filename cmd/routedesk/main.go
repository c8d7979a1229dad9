package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"github.com/routedesk/routedesk/internal/app"
	"github.com/routedesk/routedesk/internal/auth"
	"github.com/routedesk/routedesk/internal/customers"
	"github.com/routedesk/routedesk/internal/orders"
	"github.com/routedesk/routedesk/internal/platform/cache"
	"github.com/routedesk/routedesk/internal/platform/db"
	"github.com/routedesk/routedesk/internal/registry"
	"github.com/routedesk/routedesk/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, route cache disabled", slog.Any("error", err))
		redisClient = nil
	} else {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	enqueuer := jobs.NewEnqueuer(asynqClient)
	defer func() {
		if err := enqueuer.Close(); err != nil {
			logger.Warn("asynq close", slog.Any("error", err))
		}
	}()

	issuer := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)
	authmw := auth.Middleware{Issuer: issuer, Logger: logger}

	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo, issuer)
	authHandler := auth.NewHandler(logger, authService)

	registryRepo := registry.NewRepository(pool)
	routeCache := registry.NewRouteCache(redisClient, registryRepo, logger, cfg.RouteCacheTTL)
	registryService := registry.NewService(registryRepo, routeCache)
	registryHandler := registry.NewHandler(logger, registryService, authmw)

	customerRepo := customers.NewRepository(pool)
	customerService := customers.NewService(customerRepo, registryService, enqueuer, logger)
	customerImporter := customers.NewImporter(customerRepo, registryService, logger)
	customerHandler := customers.NewHandler(logger, customerService, customerImporter, authmw)

	orderRepo := orders.NewRepository(pool)
	orderService := orders.NewService(orderRepo, customerRepo, logger)
	orderHandler := orders.NewHandler(logger, orderService, authmw)

	router := app.NewRouter(app.RouterParams{
		Config:           cfg,
		AuthMiddleware:   authmw,
		AuthHandler:      authHandler,
		RegistryHandler:  registryHandler,
		CustomersHandler: customerHandler,
		OrdersHandler:    orderHandler,
		Middleware:       app.MiddlewareConfig{Logger: logger, Config: cfg},
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
