package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/noryangjin/auction-server/internal/api/http"
	"github.com/noryangjin/auction-server/internal/api/http/handlers"
	"github.com/noryangjin/auction-server/internal/auth"
	"github.com/noryangjin/auction-server/internal/config"
	"github.com/noryangjin/auction-server/internal/events"
	"github.com/noryangjin/auction-server/internal/observability"
	"github.com/noryangjin/auction-server/internal/persistence"
	"github.com/noryangjin/auction-server/internal/repository"
	"github.com/noryangjin/auction-server/internal/service"
	"github.com/noryangjin/auction-server/internal/validation"
	"github.com/noryangjin/auction-server/internal/worker"
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
	logger = logger.With(zap.String("service", cfg.App.Name), zap.String("version", cfg.App.Version))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	productRepo := repository.NewProductRepository(pool)

	identities := service.NewCachedIdentityResolver(
		service.NewStoreIdentityResolver(userRepo),
		persistence.NewRedisIdentityCache(redis.Client),
		cfg.Identity.CacheTTL(),
		logger.Named("identity"),
	)

	dispatcher := events.NewInMemoryDispatcher()
	notificationService := service.NewNotificationService(dispatcher, logger.Named("notifications"), cfg.Notification)
	worker.StartNotificationWorker(notificationService, logger.Named("worker"))

	accountService := service.NewAccountService(*cfg, service.AccountDependencies{
		UserRepo:    userRepo,
		Identities:  identities,
		Invalidator: identities,
		Dispatcher:  dispatcher,
		Logger:      logger.Named("accounts"),
	})
	productService := service.NewProductService(service.ProductDependencies{
		ProductRepo: productRepo,
		Identities:  identities,
		Validator:   validation.New(),
		Dispatcher:  dispatcher,
		Logger:      logger.Named("products"),
	})

	metrics := observability.NewMetrics()
	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ErrorHandler: httptransport.ErrorHandler,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, metrics),
		Users:          handlers.NewUsersHandler(accountService),
		Products:       handlers.NewProductsHandler(productService),
		Admin:          handlers.NewAdminHandler(accountService),
		AuthMiddleware: auth.NewAuthMiddleware(accountService.TokenManager()),
		Identities:     identities,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
