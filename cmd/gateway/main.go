package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/fixit-suporte/fixit-gateway/internal/api/http"
	"github.com/fixit-suporte/fixit-gateway/internal/api/http/handlers"
	"github.com/fixit-suporte/fixit-gateway/internal/auth"
	"github.com/fixit-suporte/fixit-gateway/internal/backend"
	"github.com/fixit-suporte/fixit-gateway/internal/config"
	"github.com/fixit-suporte/fixit-gateway/internal/directory"
	"github.com/fixit-suporte/fixit-gateway/internal/events"
	"github.com/fixit-suporte/fixit-gateway/internal/observability"
	"github.com/fixit-suporte/fixit-gateway/internal/persistence"
	"github.com/fixit-suporte/fixit-gateway/internal/service"
	"github.com/fixit-suporte/fixit-gateway/internal/session"
	"github.com/fixit-suporte/fixit-gateway/internal/worker"
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

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	backendClient := backend.NewClient(cfg.Backend)

	sessions := session.NewRedisStore(redis.Client, cfg.Session.TTL())
	dir := directory.New(directory.NewRedisStore(redis.Client), backendClient, logger, cfg.Session.BcryptCost)
	if err := dir.Seed(ctx); err != nil {
		logger.Fatal("failed to seed bootstrap accounts", zap.Error(err))
	}

	tokens := auth.NewTokenManager(cfg.Session.JWTSecret, cfg.Session.TTL())
	authMiddleware := auth.NewAuthMiddleware(tokens, sessions)

	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()

	authService := service.NewAuthService(service.AuthDependencies{
		Directory: dir,
		Users:     backendClient,
		Sessions:  sessions,
		Tokens:    tokens,
		Logger:    logger,
	})
	incidentService := service.NewIncidentService(service.IncidentDependencies{
		Incidents:  backendClient,
		Directory:  dir,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	reportService := service.NewReportService(backendClient, sessions, logger)
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, redis, backendClient),
		Auth:           handlers.NewAuthHandler(authService),
		Incidents:      handlers.NewIncidentsHandler(incidentService),
		Users:          handlers.NewUsersHandler(dir),
		Dashboard:      handlers.NewDashboardHandler(reportService),
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
