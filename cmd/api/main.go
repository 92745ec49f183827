package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/helpdesk-service/internal/api/http"
	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/intelligence"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/persistence"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/service"
	"github.com/spec-kit/helpdesk-service/internal/worker"
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
	teamRepo := repository.NewTeamRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	embeddingRepo := repository.NewEmbeddingRepository(pool)
	dashboardRepo := repository.NewDashboardRepository(pool)

	sessionStore := auth.NewRedisSessionStore(redis.Client)
	tokenCodec := auth.NewTokenCodec(cfg.Session.Secret)
	sessions := auth.NewSessionManager(sessionStore, tokenCodec, cfg.Session.IdleTTL())
	sessionMiddleware := auth.NewSessionMiddleware(sessions, cfg.Session.CookieName)

	intelClient := intelligence.NewClient(cfg.Intelligence, logger)
	dispatcher := events.NewInMemoryDispatcher()

	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:    ticketRepo,
		TeamRepo:      teamRepo,
		UserRepo:      userRepo,
		EmbeddingRepo: embeddingRepo,
		Intelligence:  intelClient,
		Dispatcher:    dispatcher,
		Logger:        logger,
	})
	identityService := service.NewIdentityService(userRepo, teamRepo)
	dashboardService := service.NewDashboardService(dashboardRepo)

	notificationService := service.NewNotificationService(intelClient, logger)
	worker.StartNotificationWorker(ctx, notificationService, dispatcher, 2)

	metrics := observability.NewMetrics()
	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:            handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:              handlers.NewAuthHandler(identityService, sessions, sessionMiddleware, cfg.Session.CookieName, cfg.Session.IdleTTL()),
		Requester:         handlers.NewRequesterTicketsHandler(ticketService, dashboardService),
		Support:           handlers.NewSupportTicketsHandler(ticketService, dashboardService),
		HelpDesk:          handlers.NewHelpDeskHandler(ticketService, dashboardService, teamRepo),
		SessionMiddleware: sessionMiddleware,
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
