package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/hszk-dev/gocatalog/internal/config"
	"github.com/hszk-dev/gocatalog/internal/domain/repository"
	"github.com/hszk-dev/gocatalog/internal/infrastructure/cache"
	"github.com/hszk-dev/gocatalog/internal/infrastructure/postgres"
	"github.com/hszk-dev/gocatalog/internal/infrastructure/queue"
	"github.com/hszk-dev/gocatalog/internal/usecase"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

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

	qc := queue.DefaultClientConfig(cfg.RabbitMQ.URL())
	qc.RequestQueue = cfg.RabbitMQ.RequestQueue
	qc.ResultQueue = cfg.RabbitMQ.ResultQueue
	qc.Prefetch = cfg.RabbitMQ.Prefetch
	qc.MaxRetries = cfg.RabbitMQ.MaxRetries

	queueClient, err := queue.NewClient(ctx, qc)
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	defer queueClient.Close()
	logger.Info("connected to RabbitMQ")

	// Initialize Redis client for cache invalidation
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

	statusSvc := usecase.NewMediaStatusService(
		postgres.NewVideoRepository(pgClient.Pool()),
		cache.NewRedisVideoCache(redisClient),
	)
	listener := usecase.NewEncoderListener(statusSvc)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// WaitGroup to track in-flight results
	var wg sync.WaitGroup

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting worker, consuming encoder results", slog.String("queue", qc.ResultQueue))
		err := queueClient.ConsumeEncoderResults(ctx, func(result repository.EncoderResult) error {
			wg.Add(1)
			defer wg.Done()

			// Detached so an in-flight update finishes during shutdown.
			return listener.HandleEncoderResult(context.WithoutCancel(ctx), result)
		})
		if err != nil && ctx.Err() == nil {
			errCh <- fmt.Errorf("consumer error: %w", err)
		}
	}()

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutting down worker", slog.String("signal", sig.String()))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Worker.ShutdownTimeout)
	defer shutdownCancel()

	// Cancel the main context to stop consuming new messages
	cancel()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.Info("all in-flight results handled")
	case <-shutdownCtx.Done():
		logger.Warn("shutdown timeout exceeded, some results may not have been handled")
	}

	logger.Info("worker stopped")
	return nil
}
