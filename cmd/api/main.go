package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"pokedex-backend/internal/config"
	"pokedex-backend/internal/di"
	"pokedex-backend/internal/infrastructure/observability"

	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loader := config.NewLoader(os.Getenv("CONFIG_DIR"), config.GetEnvironment())
	cfg, err := loader.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	container, err := di.InitializeContainer(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
	defer container.Close()
	logger := container.Logger

	watcher := config.NewWatcher(loader, cfg, logger)
	watcher.OnChange(func(next *config.Config) {
		level := observability.ParseLevel(next.Observability.LogLevel)
		if container.Level.Level() != level {
			container.Level.SetLevel(level)
			logger.Info("log level changed", zap.String("level", level.String()))
		}
	})
	if err := watcher.Start(); err != nil {
		logger.Warn("configuration watcher not started", zap.Error(err))
	}
	defer watcher.Stop()

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      container.Router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting server",
			zap.String("address", srv.Addr),
			zap.String("table", cfg.Database.TableName),
			zap.Strings("config_sources", cfg.LoadedFrom),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			logger.Error("server failed", zap.Error(err))
		}
	case <-ctx.Done():
		logger.Info("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}

	logger.Info("server stopped")
}
