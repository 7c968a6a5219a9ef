package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"fanout-api/internal/config"
	"fanout-api/internal/observability"
	"fanout-api/internal/server"
)

func main() {

	ctx := context.Background()

	// Logger
	err := observability.InitLogger()
	if err != nil {
		panic(err)
	}
	defer observability.SyncLogger()

	if err := loadDotEnv(); err != nil {
		observability.Logger.Fatal("loading .env", zap.Error(err))
	}

	cfg, err := config.Load()
	if err != nil {
		observability.Logger.Fatal("invalid configuration", zap.Error(err))
	}

	// Tracing, logs, metrics
	shutdownTelemetry, err := initTelemetry(ctx, cfg)
	if err != nil {
		observability.Logger.Fatal("initializing telemetry", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			observability.Logger.Warn("telemetry shutdown", zap.Error(err))
		}
	}()

	// Router
	router := server.NewRouter(cfg)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		observability.Logger.Info("server started",
			zap.String("addr", cfg.Addr),
			zap.String("appeals_dir", cfg.AppealsDir),
			zap.Int("max_units", cfg.MaxUnits),
			zap.Duration("max_delay", cfg.MaxDelay),
			zap.Bool("telemetry", cfg.Telemetry),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			observability.Logger.Fatal("server failed", zap.Error(err))
		}
	}()

	waitForShutdown(srv, cfg.ShutdownTimeout)
}

func waitForShutdown(srv *http.Server, timeout time.Duration) {

	stop := make(chan os.Signal, 1)

	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		observability.Logger.Warn("graceful shutdown incomplete", zap.Error(err))
	}
	observability.Logger.Info("server stopped")
}
