package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/gdugdh24/sublease-matcher-backend/internal/config"
	"github.com/gdugdh24/sublease-matcher-backend/internal/infrastructure/container"
	"github.com/gdugdh24/sublease-matcher-backend/internal/infrastructure/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Logging.Level, cfg.Logging.Format, "sublease-matcher")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Error("application stopped with error", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize dependency injection container
	app, err := container.NewContainer(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Error("error closing application", zap.Error(err))
		}
	}()

	// Start server in a goroutine
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- app.Server.Start()
	}()

	log.Info("server started",
		zap.String("addr", app.Server.Addr()),
		zap.String("env", cfg.Server.Env),
		zap.String("storage", cfg.Storage.Type),
	)

	select {
	case err := <-serverErr:
		if err != nil {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	// Graceful shutdown, bounded by SERVER_SHUTDOWN_TIMEOUT
	if err := app.Server.Shutdown(context.Background()); err != nil {
		return err
	}

	log.Info("server exited properly")
	return nil
}
