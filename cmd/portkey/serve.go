package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httptransport "github.com/portkey-logistics/portkey/internal/api/http"
	"github.com/portkey-logistics/portkey/internal/api/http/handlers"
	"github.com/portkey-logistics/portkey/internal/auth"
	"github.com/portkey-logistics/portkey/internal/events"
	"github.com/portkey-logistics/portkey/internal/gate"
	"github.com/portkey-logistics/portkey/internal/observability"
	"github.com/portkey-logistics/portkey/internal/persistence"
	"github.com/portkey-logistics/portkey/internal/repository"
	"github.com/portkey-logistics/portkey/internal/service"
	"github.com/portkey-logistics/portkey/internal/worker"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	}
}

func serve() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	engine := newEngine(cfg.Gate)
	if err := engine.ValidatePaths(); err != nil {
		return err
	}
	if err := engine.Policy().Validate(); err != nil {
		logger.Warn("route policy overlap", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics := observability.NewMetrics()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations && pg.PoolHandle() != nil {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
	}

	rdb := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer rdb.Close()

	pool := pg.PoolHandle()
	profileRepo := repository.NewProfileRepository(pool)
	shipmentRepo := repository.NewShipmentRepository(pool)
	documentRepo := repository.NewDocumentRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	profileService := service.NewProfileService(profileRepo, dispatcher, logger)
	shipmentService := service.NewShipmentService(shipmentRepo, dispatcher, logger)
	documentService := service.NewDocumentService(documentRepo, shipmentService, dispatcher, logger)
	dashboardService := service.NewDashboardService(
		shipmentRepo,
		service.NewRedisMetricsCache(rdb.Client),
		cfg.Dashboard.CacheTTL(),
		metrics,
		logger,
	)
	notificationService := service.NewNotificationService(dispatcher, dashboardService, logger, cfg.Notification)
	worker.StartNotificationWorker(dispatcher, notificationService, logger)

	supabase := auth.NewSupabaseClient(cfg.Supabase, logger, metrics)
	accessGate := gate.New(gate.NewSessionReader(supabase, logger), engine, logger, metrics)
	authMiddleware := auth.NewAuthMiddleware(supabase, profileService, supabase.Cookies())

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: true,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
			"postgres": pg,
			"redis":    rdb,
		}),
		Session:        handlers.NewSessionHandler(supabase, profileService, engine, logger),
		Users:          handlers.NewUsersHandler(profileService),
		AdminUsers:     handlers.NewAdminUsersHandler(profileService),
		Shipments:      handlers.NewShipmentsHandler(shipmentService, documentService),
		Dashboard:      handlers.NewDashboardHandler(dashboardService),
		Pages:          handlers.NewPagesHandler(),
		AuthMiddleware: authMiddleware,
		Gate:           accessGate,
		Metrics:        metrics,
	})

	listenErr := make(chan error, 1)
	go func() {
		logger.Info("http server listening",
			zap.String("addr", cfg.App.Addr()),
			zap.String("env", cfg.App.Env),
			zap.Strings("protected", engine.Policy().Protected()),
			zap.Strings("guest_only", engine.Policy().GuestOnly()),
		)
		listenErr <- app.Listen(cfg.App.Addr())
	}()

	select {
	case err := <-listenErr:
		return fmt.Errorf("fiber listen: %w", err)
	case sig := <-waitForShutdown():
		logger.Info("shutting down", zap.String("signal", sig.String()))
	}

	err = app.ShutdownWithTimeout(shutdownTimeout)
	notificationService.Wait()
	return err
}

func waitForShutdown() <-chan os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	return sigCh
}
