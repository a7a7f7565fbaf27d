package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/crmkit/support-desk/internal/api/http"
	"github.com/crmkit/support-desk/internal/api/http/handlers"
	"github.com/crmkit/support-desk/internal/auth"
	"github.com/crmkit/support-desk/internal/config"
	"github.com/crmkit/support-desk/internal/events"
	"github.com/crmkit/support-desk/internal/observability"
	"github.com/crmkit/support-desk/internal/persistence"
	"github.com/crmkit/support-desk/internal/repository"
	"github.com/crmkit/support-desk/internal/service"
	"github.com/crmkit/support-desk/internal/worker"
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
	departmentRepo := repository.NewDepartmentRepository(pool)
	agentRepo := repository.NewAgentRepository(pool)
	customerRepo := repository.NewCustomerRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	commentRepo := repository.NewTicketCommentRepository(pool)

	resolver := service.NewResolver(service.ResolverDependencies{
		CustomerRepo:   customerRepo,
		DepartmentRepo: departmentRepo,
		AgentRepo:      agentRepo,
		TicketRepo:     ticketRepo,
		CommentRepo:    commentRepo,
	})
	guard := service.NewIntegrityGuard(agentRepo, ticketRepo)

	dispatcher := events.NewInMemoryDispatcher()
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	authService := service.NewAuthService(*cfg, userRepo)
	departmentService := service.NewDepartmentService(departmentRepo, guard)
	agentService := service.NewAgentService(service.AgentDependencies{
		AgentRepo:  agentRepo,
		UserRepo:   userRepo,
		Resolver:   resolver,
		Guard:      guard,
		BcryptCost: cfg.Auth.BcryptCost,
	})
	customerService := service.NewCustomerService(service.CustomerDependencies{
		CustomerRepo: customerRepo,
		UserRepo:     userRepo,
		Resolver:     resolver,
		Guard:        guard,
		BcryptCost:   cfg.Auth.BcryptCost,
	})
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: ticketRepo,
		Resolver:   resolver,
		Dispatcher: dispatcher,
	})
	commentService := service.NewCommentService(service.CommentDependencies{
		CommentRepo: commentRepo,
		Resolver:    resolver,
		Dispatcher:  dispatcher,
	})

	authMiddleware := auth.NewMiddleware(authService.TokenManager(), userRepo)
	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Departments:    handlers.NewDepartmentsHandler(departmentService),
		Agents:         handlers.NewAgentsHandler(agentService),
		Customers:      handlers.NewCustomersHandler(customerService),
		Tickets:        handlers.NewTicketsHandler(ticketService, resolver),
		Comments:       handlers.NewCommentsHandler(commentService),
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
