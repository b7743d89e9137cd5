package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/civicflow/civicflow/internal/api/http"
	"github.com/civicflow/civicflow/internal/api/http/handlers"
	"github.com/civicflow/civicflow/internal/auth"
	"github.com/civicflow/civicflow/internal/config"
	"github.com/civicflow/civicflow/internal/events"
	"github.com/civicflow/civicflow/internal/notify"
	"github.com/civicflow/civicflow/internal/observability"
	"github.com/civicflow/civicflow/internal/persistence"
	"github.com/civicflow/civicflow/internal/repository"
	"github.com/civicflow/civicflow/internal/repository/memory"
	"github.com/civicflow/civicflow/internal/service"
	"github.com/civicflow/civicflow/internal/worker"
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

	var (
		userRepo         repository.UserRepository
		ticketRepo       repository.TicketRepository
		verificationRepo repository.EmailVerificationRepository
		resetRepo        repository.PasswordResetRepository
	)
	if pool := pg.PoolHandle(); pool != nil {
		userRepo = repository.NewUserRepository(pool)
		ticketRepo = repository.NewTicketRepository(pool)
		verificationRepo = repository.NewEmailVerificationRepository(pool)
		resetRepo = repository.NewPasswordResetRepository(pool)
	} else {
		logger.Warn("using in-memory stores; data will not survive restarts")
		userRepo = memory.NewUserRepository()
		ticketRepo = memory.NewTicketRepository()
		verificationRepo = memory.NewEmailVerificationRepository()
		resetRepo = memory.NewPasswordResetRepository()
	}

	dispatcher := events.NewDispatcher(logger)
	defer dispatcher.Close()

	notifier := notify.New(cfg.SMTP, logger)
	notificationService := service.NewNotificationService(dispatcher, notifier, logger)
	worker.StartNotificationWorker(notificationService)

	throttle := auth.NewLoginThrottle(redis.Client, cfg.Auth.LoginAttemptLimit, cfg.Auth.LoginAttemptWindowMinutes)

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:         userRepo,
		VerificationRepo: verificationRepo,
		ResetRepo:        resetRepo,
		Throttle:         throttle,
		Dispatcher:       dispatcher,
	})
	userService := service.NewUserService(userRepo)
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: ticketRepo,
		UserRepo:   userRepo,
		Dispatcher: dispatcher,
	})

	authMiddleware := auth.NewMiddleware(authService.TokenManager())

	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Me:             handlers.NewMeHandler(userService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Users:          handlers.NewUsersHandler(userService),
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
