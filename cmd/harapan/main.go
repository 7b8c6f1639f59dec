package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/harapan-ngo/harapan-cms/internal/announcements"
	"github.com/harapan-ngo/harapan-cms/internal/app"
	"github.com/harapan-ngo/harapan-cms/internal/audit"
	"github.com/harapan-ngo/harapan-cms/internal/auth"
	"github.com/harapan-ngo/harapan-cms/internal/observability"
	"github.com/harapan-ngo/harapan-cms/internal/platform/cache"
	"github.com/harapan-ngo/harapan-cms/internal/platform/db"
	"github.com/harapan-ngo/harapan-cms/internal/platform/httpx"
	"github.com/harapan-ngo/harapan-cms/internal/programs"
	"github.com/harapan-ngo/harapan-cms/internal/rbac"
	"github.com/harapan-ngo/harapan-cms/internal/users"
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
	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("harapan exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *app.Config, logger *slog.Logger) error {
	dbpool, err := db.New(ctx, cfg.PGDSN, db.PoolOptions{MaxConns: cfg.PGMaxConns})
	if err != nil {
		return err
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cache.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	if err != nil {
		return err
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	tokens, err := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL, cfg.JWTLeeway)
	if err != nil {
		return err
	}

	metrics := observability.NewMetrics()
	errorResponder := httpx.NewErrorResponder(logger, cfg.IsDevelopment())

	usersService := users.NewService(users.NewRepository(dbpool)).WithAudit(audit.NewLogger(dbpool), logger)
	revocations := auth.NewRedisRevocations(redisClient)
	authenticator := &auth.Authenticator{
		Tokens:      tokens,
		Accounts:    usersService,
		Revocations: revocations,
		Errors:      errorResponder,
		Logger:      logger,
		Metrics:     metrics,
	}
	authHandler := auth.NewHandler(logger, auth.NewService(usersService, tokens, revocations), errorResponder, authenticator, cfg.CookieSecure)

	rbacMiddleware := rbac.Middleware{Errors: errorResponder, Logger: logger, Metrics: metrics}

	programsHandler := programs.NewHandler(logger, programs.NewService(programs.NewRepository(dbpool)), errorResponder, rbacMiddleware)
	announcementsHandler := announcements.NewHandler(logger, announcements.NewService(announcements.NewRepository(dbpool)), errorResponder, rbacMiddleware)
	usersHandler := users.NewHandler(logger, usersService, errorResponder, auth.ActorFromContext,
		rbacMiddleware.RequireRole(users.RoleAdmin),
		rbacMiddleware.RequirePage(rbac.PageUsers),
	)

	router := app.NewRouter(app.RouterParams{
		Logger:               logger,
		Config:               cfg,
		Errors:               errorResponder,
		Authenticator:        authenticator,
		AuthHandler:          authHandler,
		ProgramsHandler:      programsHandler,
		AnnouncementsHandler: announcementsHandler,
		UsersHandler:         usersHandler,
		Metrics:              metrics,
		HealthChecks: map[string]app.HealthCheck{
			"postgres": dbpool.Ping,
			"redis":    func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		},
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
