package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/ipede/album-catalog/internal/application"
	"github.com/ipede/album-catalog/internal/infrastructure/database"
	"github.com/ipede/album-catalog/internal/infrastructure/jwt"
	"github.com/ipede/album-catalog/internal/infrastructure/ratelimit"
	"github.com/ipede/album-catalog/internal/infrastructure/repository"
	httprouter "github.com/ipede/album-catalog/internal/interfaces/http"
	mwratelimit "github.com/ipede/album-catalog/internal/interfaces/http/middleware/ratelimit"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func serveCmd() *cobra.Command {
	var migrateOnStart bool
	var swaggerPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(migrateOnStart, swaggerPath)
		},
	}
	cmd.Flags().BoolVar(&migrateOnStart, "migrate", false, "Apply SQL migrations before serving")
	cmd.Flags().StringVar(&swaggerPath, "swagger", "docs/swagger.json", "Path of the OpenAPI document")
	return cmd
}

func serve(migrateOnStart bool, swaggerPath string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if migrateOnStart {
		if err := database.RunMigrations(cfg.DatabaseURL(), cfg.MigrationsPath, logger); err != nil {
			return err
		}
	}

	db, err := database.NewPostgres(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	codec, err := jwt.NewHMACCodec([]byte(cfg.JWTSecret))
	if err != nil {
		return err
	}
	tokens := jwt.NewTokenService(codec, cfg.JWTAccessDuration, cfg.JWTRefreshDuration, logger)

	userRepo := repository.NewUserRepository(db, logger)
	userService := application.NewUserService(userRepo, logger)
	authService := application.NewAuthService(userRepo, userService, tokens, logger)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := ratelimit.NewPrometheusRecorder(registry)
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	recorders := ratelimit.MultiRecorder{metrics}
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("Redis unreachable, admission stats disabled", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		} else {
			recorders = append(recorders, ratelimit.NewRedisStatsRecorder(rdb))
			logger.Info("Recording admission stats in Redis", zap.String("addr", cfg.RedisAddr))
		}
	}

	loginLimiter := mwratelimit.NewIPRateLimiter(cfg.LoginRateLimitPerMinute, 3*time.Minute, logger)
	loginLimiter.StartCleanup(ctx, time.Minute)

	router := httprouter.NewRouter(httprouter.Dependencies{
		APIBase:      cfg.APIBase,
		DB:           db,
		Tokens:       tokens,
		Principals:   userService,
		AuthService:  authService,
		UserService:  userService,
		Limiter:      ratelimit.NewLimiter(cfg.RateLimitRequestsPerMinute, logger),
		Recorder:     recorders,
		LoginLimiter: loginLimiter,
		Gatherer:     registry,
		SwaggerPath:  swaggerPath,
		Logger:       logger,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server",
			zap.Int("port", cfg.ServerPort),
			zap.String("api_base", cfg.APIBase),
			zap.Int("requests_per_minute", cfg.RateLimitRequestsPerMinute))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	// Graceful shutdown
	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("Server exited properly")
	return nil
}
