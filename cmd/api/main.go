package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/hszk-dev/gocatalog/internal/api/handler"
	"github.com/hszk-dev/gocatalog/internal/api/middleware"
	"github.com/hszk-dev/gocatalog/internal/config"
	"github.com/hszk-dev/gocatalog/internal/infrastructure/cache"
	"github.com/hszk-dev/gocatalog/internal/infrastructure/postgres"
	"github.com/hszk-dev/gocatalog/internal/infrastructure/queue"
	"github.com/hszk-dev/gocatalog/internal/infrastructure/storage"
	"github.com/hszk-dev/gocatalog/internal/usecase"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.Log.SlogLevel(),
	}))
	slog.SetDefault(logger)

	// Initialize infrastructure clients
	pgClient, err := postgres.NewClient(ctx, postgres.DefaultClientConfig(cfg.Database.DSN()))
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	defer pgClient.Close()
	logger.Info("connected to PostgreSQL")

	if cfg.Database.Migrate {
		if err := pgClient.Migrate(ctx); err != nil {
			return err
		}
		logger.Info("database schema applied")
	}

	storageClient, err := storage.NewClient(ctx, storage.ClientConfig{
		Endpoint:     cfg.MinIO.Endpoint,
		AccessKey:    cfg.MinIO.AccessKey,
		SecretKey:    cfg.MinIO.SecretKey,
		Bucket:       cfg.MinIO.Bucket,
		UseSSL:       cfg.MinIO.UseSSL,
		CreateBucket: cfg.MinIO.CreateBucket,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to MinIO: %w", err)
	}
	logger.Info("connected to MinIO", slog.String("bucket", storageClient.Bucket()))

	queueClient, err := queue.NewClient(ctx, queueConfig(cfg.RabbitMQ))
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	defer queueClient.Close()
	logger.Info("connected to RabbitMQ")

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	logger.Info("connected to Redis")

	// Initialize repositories and services
	pool := pgClient.Pool()
	videoSvc := usecase.NewVideoService(
		postgres.NewVideoRepository(pool),
		postgres.NewCategoryRepository(pool),
		postgres.NewGenreRepository(pool),
		postgres.NewCastMemberRepository(pool),
		storage.NewMediaGateway(storageClient),
		queueClient,
	)
	cachedSvc := usecase.NewCachedVideoService(
		videoSvc,
		cache.NewRedisVideoCache(redisClient),
		usecase.CachedVideoServiceConfig{CacheTTL: cfg.Cache.VideoTTL},
	)

	health := handler.NewHealthHandler(
		handler.HealthCheck{Name: "postgres", Check: pgClient.Ping},
		handler.HealthCheck{Name: "minio", Check: storageClient.Ping},
		handler.HealthCheck{Name: "redis", Check: func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}},
	)

	r := setupRouter(logger, handler.NewVideoHandler(cachedSvc, cfg.Server.MaxUploadSize), health)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("server error: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutting down server", slog.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

func queueConfig(c config.RabbitMQConfig) queue.ClientConfig {
	qc := queue.DefaultClientConfig(c.URL())
	qc.RequestQueue = c.RequestQueue
	qc.ResultQueue = c.ResultQueue
	qc.Prefetch = c.Prefetch
	qc.MaxRetries = c.MaxRetries
	return qc
}

func setupRouter(logger *slog.Logger, videos *handler.VideoHandler, health http.Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))

	r.Method(http.MethodGet, "/health", health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", videos.Routes)

	return r
}
