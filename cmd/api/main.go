package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/condohub/property-service/internal/api/http"
	"github.com/condohub/property-service/internal/api/http/handlers"
	"github.com/condohub/property-service/internal/auth"
	"github.com/condohub/property-service/internal/config"
	"github.com/condohub/property-service/internal/events"
	"github.com/condohub/property-service/internal/keygen"
	"github.com/condohub/property-service/internal/notify"
	"github.com/condohub/property-service/internal/observability"
	"github.com/condohub/property-service/internal/persistence"
	"github.com/condohub/property-service/internal/repository"
	"github.com/condohub/property-service/internal/repository/memory"
	"github.com/condohub/property-service/internal/service"
	"github.com/condohub/property-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	dependencies := map[string]handlers.Pinger{}
	var (
		store      repository.Store
		transactor repository.Transactor
	)
	if pg.Enabled() {
		store = repository.NewStore(pg.Pool)
		transactor = repository.NewPgTransactor(pg.Pool, cfg.Postgres.TxTimeout())
		dependencies["postgres"] = pg
	} else {
		logger.Warn("using in-memory store; data is lost on restart")
		mem := memory.NewStore()
		store, transactor = mem, mem
	}

	var revocations auth.RevocationList = auth.NewMemoryRevocationList()
	if redis.Enabled() {
		revocations = auth.NewRedisRevocationList(redis.Client)
		dependencies["redis"] = redis
	}

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	worker.StartNotificationWorker(service.NewNotificationService(dispatcher, logger), logger)

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		Store:       store,
		Transactor:  transactor,
		Revocations: revocations,
	})
	registrationService := service.NewRegistrationService(*cfg, service.RegistrationDependencies{
		Store:      store,
		Transactor: transactor,
		Generator:  keygen.New(),
		Notifier:   notify.New(cfg.Notification, logger),
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
	})
	propertyService := service.NewPropertyService(store)
	financeService := service.NewFinanceService(store)
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), store.Users(), revocations)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:           handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, dependencies),
		Users:            handlers.NewUsersHandler(authService),
		RegistrationKeys: handlers.NewRegistrationKeysHandler(registrationService),
		PublicProfiles:   handlers.NewPublicProfileHandler(registrationService, propertyService),
		Properties:       handlers.NewPropertiesHandler(propertyService, financeService),
		AuthMiddleware:   authMiddleware,
		MetricsRegistry:  metrics.Registry,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
