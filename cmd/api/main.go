package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/event-ticket-service/internal/api/http"
	"github.com/spec-kit/event-ticket-service/internal/api/http/handlers"
	"github.com/spec-kit/event-ticket-service/internal/auth"
	"github.com/spec-kit/event-ticket-service/internal/config"
	"github.com/spec-kit/event-ticket-service/internal/events"
	"github.com/spec-kit/event-ticket-service/internal/observability"
	"github.com/spec-kit/event-ticket-service/internal/persistence"
	"github.com/spec-kit/event-ticket-service/internal/repository"
	"github.com/spec-kit/event-ticket-service/internal/scanstore"
	"github.com/spec-kit/event-ticket-service/internal/service"
	"github.com/spec-kit/event-ticket-service/internal/worker"
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

	metrics := observability.NewMetrics()

	pool := pg.PoolHandle()
	eventRepo := repository.NewEventRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	operatorRepo := repository.NewOperatorRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()

	authService := service.NewAuthService(cfg.Auth, operatorRepo)
	eventService := service.NewEventService(eventRepo, dispatcher)
	ticketService := service.NewTicketService(ticketRepo, eventRepo, dispatcher, cfg.Share)
	validationService := service.NewValidationService(ticketRepo, dispatcher, metrics, logger)
	scanSessions := scanstore.NewRedisStore(redis.Client, cfg.Scan.SessionTTL())
	scanService := service.NewScanSessionService(validationService, scanSessions, metrics, logger)
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), operatorRepo)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Events:         handlers.NewEventsHandler(eventService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Validator:      handlers.NewValidatorHandler(scanService),
		AuthMiddleware: authMiddleware,
		Metrics:        metrics,
	})

	worker.StartNotificationWorker(notificationService)

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
