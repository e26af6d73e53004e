// cmd/service/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github-sparks/internal/api"
	"github-sparks/internal/app"
	"github-sparks/internal/config"
	"github-sparks/internal/warmer"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("Application startup error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// 2. Initialize structured logger
	logger := app.NewLogger(os.Stdout, cfg.LogLevel)
	slog.SetDefault(logger)
	logger.Info("Configuration loaded successfully", "store", cfg.StoreDriver)

	// 3. Setup context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// 4. Initialize application components
	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer application.Close()

	appWarmer, err := warmer.NewWarmer(application.Service, application.Persistent, logger, application.Metrics, cfg.WarmTopics, cfg.WarmInterval)
	if err != nil {
		return fmt.Errorf("failed to create warmer: %w", err)
	}

	// 5. Start the warmer in a separate goroutine
	if cfg.WarmInterval > 0 {
		go appWarmer.Start(ctx)
	} else {
		logger.Info("Warmer disabled")
	}

	// 6. Serve the API until shutdown
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.NewRouter(application.Service, appWarmer.Topics(), application.Metrics.Handler(), logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}
	logger.Info("Shutdown signal received. Exiting.")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
	}

	return nil
}
