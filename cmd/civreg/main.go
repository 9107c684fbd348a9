package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/civreg/civreg/internal/app"
	"github.com/civreg/civreg/internal/audit"
	"github.com/civreg/civreg/internal/auth"
	"github.com/civreg/civreg/internal/citizens"
	"github.com/civreg/civreg/internal/dashboard"
	"github.com/civreg/civreg/internal/menu"
	"github.com/civreg/civreg/internal/observability"
	"github.com/civreg/civreg/internal/platform/cache"
	"github.com/civreg/civreg/internal/platform/db"
	"github.com/civreg/civreg/internal/rbac"
	"github.com/civreg/civreg/internal/shared"
	"github.com/civreg/civreg/internal/users"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "civreg_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)
	activityLogger := shared.NewActivityLogger(dbpool)
	metrics := observability.NewMetrics()

	rbacRepo := rbac.NewRepository(dbpool)
	rbacCache := rbac.NewCache(redisClient, 10*time.Minute)
	rbacService := rbac.NewService(rbacRepo, rbacCache, logger)
	rbacMiddleware := rbac.Middleware{Service: rbacService, Logger: logger, Denials: metrics}
	rbacHandler := rbac.NewHandler(logger, rbacService)

	menuRepo := menu.NewRepository(dbpool)
	menuCache := menu.NewCache(redisClient, 10*time.Minute)
	menuService := menu.NewService(menuRepo, rbacService, menuCache)
	menuHandler := menu.NewHandler(logger, menuService)

	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(authRepo)
	authHandler := auth.NewHandler(logger, authService, rbacService, menuService, sessionManager, csrfManager)

	auditRepo := audit.NewRepository(dbpool)
	auditService := audit.NewService(auditRepo)

	citizensRepo := citizens.NewRepository(dbpool)
	citizensService := citizens.NewService(citizensRepo, activityLogger, logger)
	citizensHandler := citizens.NewHandler(logger, citizensService, auditService)

	usersRepo := users.NewRepository(dbpool)
	usersService := users.NewService(usersRepo, auth.BcryptHasher{}, rbacCache, activityLogger, logger)
	usersHandler := users.NewHandler(logger, usersService)

	dashboardRepo := dashboard.NewRepository(dbpool)
	dashboardService := dashboard.NewService(dashboardRepo)
	dashboardHandler := dashboard.NewHandler(logger, dashboardService)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		SessionManager:   sessionManager,
		CSRFManager:      csrfManager,
		AuthHandler:      authHandler,
		MenuHandler:      menuHandler,
		CitizensHandler:  citizensHandler,
		UsersHandler:     usersHandler,
		RBACHandler:      rbacHandler,
		DashboardHandler: dashboardHandler,
		RBACMiddleware:   rbacMiddleware,
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
