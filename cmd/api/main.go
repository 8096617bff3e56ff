package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httpapi "github.com/spec-kit/school-api/internal/api/http"
	"github.com/spec-kit/school-api/internal/api/http/handlers"
	"github.com/spec-kit/school-api/internal/auth"
	"github.com/spec-kit/school-api/internal/config"
	"github.com/spec-kit/school-api/internal/events"
	"github.com/spec-kit/school-api/internal/observability"
	"github.com/spec-kit/school-api/internal/persistence"
	"github.com/spec-kit/school-api/internal/registry"
	"github.com/spec-kit/school-api/internal/repository"
	"github.com/spec-kit/school-api/internal/service"
	"github.com/spec-kit/school-api/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	postgres, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("postgres connection failed", zap.Error(err))
	}
	defer postgres.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, postgres.PoolHandle(), logger); err != nil {
			logger.Fatal("migrations failed", zap.Error(err))
		}
	}

	redisStore := persistence.NewRedis(cfg.Redis, logger)
	defer redisStore.Close()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	tables := registry.Default()

	principalRepo := repository.NewPrincipalRepository(postgres.PoolHandle())
	studentRepo := repository.NewStudentRepository(postgres.PoolHandle())
	sessionRepo := repository.NewSessionRepository(postgres.PoolHandle())
	gatewayRepo := repository.NewGatewayRepository(postgres.PoolHandle())

	principalCache := auth.NewPrincipalCache(redisStore.ClientHandle(), cfg.Auth.PrincipalCacheTTLSecs)

	authService := service.NewAuthService(*cfg, principalRepo, dispatcher)
	studentService := service.NewStudentService(studentRepo, principalCache, dispatcher, cfg.Auth.BcryptCost)
	sessionService := service.NewSessionService(sessionRepo, dispatcher)
	gatewayService := service.NewGatewayService(tables, gatewayRepo, principalCache, cfg.Auth.BcryptCost)
	auditService := service.NewAuditService(dispatcher, logger, cfg.Audit)
	worker.StartAuditWorker(auditService)

	guard := auth.NewAccessGuard(authService.TokenManager(), principalRepo, principalCache)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	})

	httpapi.RegisterMiddlewares(app, cfg, logger, metrics)
	httpapi.RegisterRoutes(app, httpapi.RouteConfig{
		Guard:    guard,
		Health:   handlers.NewHealthHandler(postgres, redisStore, metrics),
		Auth:     handlers.NewAuthHandler(authService),
		Students: handlers.NewStudentsHandler(studentService),
		Sessions: handlers.NewSessionsHandler(sessionService),
		Gateway:  handlers.NewGatewayHandler(gatewayService),
	})

	go func() {
		logger.Info("server starting", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
}
