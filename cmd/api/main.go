package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/complaint-service/internal/api/http"
	"github.com/spec-kit/complaint-service/internal/api/http/handlers"
	"github.com/spec-kit/complaint-service/internal/auth"
	"github.com/spec-kit/complaint-service/internal/classifier"
	"github.com/spec-kit/complaint-service/internal/config"
	"github.com/spec-kit/complaint-service/internal/events"
	"github.com/spec-kit/complaint-service/internal/observability"
	"github.com/spec-kit/complaint-service/internal/persistence"
	"github.com/spec-kit/complaint-service/internal/repository"
	"github.com/spec-kit/complaint-service/internal/service"
	"github.com/spec-kit/complaint-service/internal/worker"
	"github.com/spec-kit/complaint-service/internal/ws"
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

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	agencyRepo := repository.NewAgencyRepository(pool)
	complaintRepo := repository.NewComplaintRepository(pool)
	analyticsRepo := repository.NewAnalyticsRepository(pool)

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	model := classifier.New(classifier.DefaultCorpus)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authMiddleware := auth.NewAuthMiddleware(tokens)

	hub := ws.NewHub(logger)
	if cfg.Notify.Channel != "" {
		go hub.RunRedisBridge(ctx, redis.Client, cfg.Notify.Channel)
	}

	assignmentService := service.NewAssignmentService(service.AssignmentDependencies{
		ComplaintRepo: complaintRepo,
		AgencyRepo:    agencyRepo,
		Dispatcher:    dispatcher,
		Logger:        logger,
	})
	complaintService := service.NewComplaintService(service.ComplaintDependencies{
		ComplaintRepo: complaintRepo,
		AgencyRepo:    agencyRepo,
		Assigner:      assignmentService,
		Classifier:    model,
		Dispatcher:    dispatcher,
		Logger:        logger,
	})
	agencyService := service.NewAgencyService(service.AgencyDependencies{
		AgencyRepo:    agencyRepo,
		ComplaintRepo: complaintRepo,
		Logger:        logger,
	})
	analyticsService := service.NewAnalyticsService(service.AnalyticsDependencies{
		AnalyticsRepo: analyticsRepo,
		AgencyRepo:    agencyRepo,
		Logger:        logger,
	})
	authService := service.NewAuthService(service.AuthDependencies{
		UserRepo:   userRepo,
		AgencyRepo: agencyRepo,
		Tokens:     tokens,
		BcryptCost: cfg.Auth.BcryptCost,
		Logger:     logger,
	})
	notificationService := service.NewNotificationService(service.NotificationDependencies{
		Hub:       hub,
		Publisher: redis.Client,
		Channel:   cfg.Notify.Channel,
		Metrics:   metrics,
		Logger:    logger,
	})
	worker.StartNotificationWorker(notificationService, dispatcher)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Users:          handlers.NewUsersHandler(authService),
		Complaints:     handlers.NewComplaintsHandler(complaintService),
		Agencies:       handlers.NewAgenciesHandler(agencyService),
		Analytics:      handlers.NewAnalyticsHandler(analyticsService),
		WS:             handlers.NewWSHandler(hub),
		AuthMiddleware: authMiddleware,
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
