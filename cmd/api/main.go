package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/dpp-hub/portal-core/internal/api/http"
	"github.com/dpp-hub/portal-core/internal/api/http/gate"
	"github.com/dpp-hub/portal-core/internal/api/http/handlers"
	"github.com/dpp-hub/portal-core/internal/auth"
	"github.com/dpp-hub/portal-core/internal/config"
	"github.com/dpp-hub/portal-core/internal/domainresolver"
	"github.com/dpp-hub/portal-core/internal/events"
	"github.com/dpp-hub/portal-core/internal/observability"
	"github.com/dpp-hub/portal-core/internal/persistence"
	"github.com/dpp-hub/portal-core/internal/repository"
	"github.com/dpp-hub/portal-core/internal/service"
	"github.com/dpp-hub/portal-core/internal/sessioncache"
	"github.com/dpp-hub/portal-core/internal/sla"
	"github.com/dpp-hub/portal-core/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.App, cfg.Logger)
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

	checks := map[string]handlers.Pinger{"postgres": pg}
	var sessions sessioncache.Provider
	if redis.Configured() {
		sessions = sessioncache.NewRedisProvider(redis.Client, cfg.Session.TTL())
		checks["redis"] = redis
	} else {
		sessions = sessioncache.NewMemoryProvider(cfg.Session.TTL())
	}

	metrics := observability.NewMetrics()

	pool := pg.PoolHandle()
	staffRepo := repository.NewStaffRepository(pool)
	tenantDomainRepo := repository.NewTenantDomainRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	activityRepo := repository.NewTicketActivityRepository(pool)

	resolver := domainresolver.NewResolver(domainresolver.Dependencies{
		Hosts:   domainresolver.NewHostSet(cfg.Domain.KnownHosts, cfg.Domain.PlatformSuffixes),
		Lookup:  tenantDomainRepo,
		Logger:  logger.Named("domainresolver"),
		Metrics: metrics,
	})

	dispatcher := events.NewInMemoryDispatcher(logger)
	notificationWorker := worker.NewNotificationWorker(service.NewLogSender(logger.Named("notifications")), logger, 256)
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification, notificationWorker)
	worker.StartNotificationWorker(ctx, notificationService, notificationWorker)

	authService := service.NewAuthService(cfg.Auth, staffRepo)
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:   ticketRepo,
		ActivityRepo: activityRepo,
		Dispatcher:   dispatcher,
		Policy:       sla.NewPolicy(cfg.SLA),
	})
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), staffRepo, gate.TenantID)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, checks),
		Domain:         handlers.NewDomainHandler(),
		Staff:          handlers.NewStaffHandler(authService, tenantDomainRepo),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Metrics:        metrics,
		AuthMiddleware: authMiddleware,
		Session:        gate.Session(cfg.Session),
		DomainGate:     gate.Domain(resolver, sessions, logger),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
	cancel()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
