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

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"golang.org/x/sync/errgroup"

	"teletext/internal/di"
	"teletext/internal/infra/config"
	"teletext/internal/infra/logger"
	"teletext/internal/infra/otel"
	"teletext/internal/middleware"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. Load config; a local .env is optional
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("load .env: %w", err)
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Telemetry, then the logger so it can bridge into the OTel log provider
	shutdownOTel, err := otel.InitProvider(ctx, otel.Config{
		ServiceName:    cfg.OTel.ServiceName,
		ServiceVersion: cfg.OTel.ServiceVersion,
		Environment:    cfg.OTel.Environment,
		OTLPEndpoint:   cfg.OTel.Endpoint,
		Enabled:        cfg.OTel.Enabled,
		SampleRatio:    cfg.OTel.SampleRatio,
	})
	if err != nil {
		return fmt.Errorf("init otel: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := shutdownOTel(ctx); err != nil {
			slog.Error("otel shutdown failed", "error", err)
		}
	}()

	log := logger.New(logger.Options{Level: cfg.LogLevel, EnableOTel: cfg.OTel.Enabled})
	slog.SetDefault(log)

	// 3. Wire the pipeline
	app, err := di.NewApplicationComponents(cfg, log, nil)
	if err != nil {
		return fmt.Errorf("wire components: %w", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Error("failed to close components", "error", err)
		}
	}()

	// 4. Prefetch worker
	if app.Prefetcher != nil {
		app.Prefetcher.Start()
		defer app.Prefetcher.Stop()
	}

	// 5. Echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout
	e.HTTPErrorHandler = middleware.CustomHTTPErrorHandler(log)

	e.Use(echomw.Recover())
	e.Use(middleware.RequestID())
	if cfg.OTel.Enabled {
		e.Use(otelecho.Middleware(cfg.OTel.ServiceName))
		e.Use(middleware.OTelStatus())
	}
	e.Use(middleware.AccessLog(log))

	app.Handler.Register(e, cfg.Metrics.Enabled)

	// 6. Serve until a signal arrives, then shut down gracefully
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("Starting server", "addr", addr, "cache_backend", cfg.Cache.Backend)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		log.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("Server stopped")
	return nil
}
