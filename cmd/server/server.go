package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"family-archive/archive-api/internal/app"
	"family-archive/archive-api/internal/config"
	"family-archive/archive-api/internal/infrastructure/logger"
	"family-archive/archive-api/internal/infrastructure/observability"
	"family-archive/archive-api/internal/interfaces/httpserver"
)

// @title Archive API
// @version 1.0
// @description Period buckets, photo selection and ZIP export for the family photo archive
// @BasePath /
type Application struct {
	httpServer *httpserver.HttpServer
	janitor    *app.Janitor
	log        zerolog.Logger
}

func NewApplication(httpServer *httpserver.HttpServer, janitor *app.Janitor, log zerolog.Logger) *Application {
	return &Application{
		httpServer: httpServer,
		janitor:    janitor,
		log:        log,
	}
}

func (a *Application) Start(ctx context.Context) error {
	go a.janitor.Run(ctx)
	return a.httpServer.Run(ctx)
}

func main() {
	loadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observability.Setup(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize observability")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown telemetry")
		}
	}()

	source, err := app.ProvidePhotoSource(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize photo source")
	}

	grouper, err := app.ProvideGrouper(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize grouper")
	}

	backend, err := app.ProvideStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize storage")
	}

	registry := app.ProvideHandleRegistry(log)
	exporter := app.ProvideExporter(cfg, backend, registry, log)
	views := app.ProvideViewService(source, grouper, exporter, log)
	bundles := app.ProvideBundleService(cfg, source, backend, log)
	provider := app.ProvideHandlers(cfg, views, bundles, registry, backend, log)

	httpServer := httpserver.New(cfg, log, provider, backend)
	application := NewApplication(httpServer, app.NewJanitor(cfg, views, registry, log), log)

	if err := application.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("application stopped with error")
	}

	log.Info().Msg("application exited cleanly")
}

func loadEnvFiles() {
	paths := []string{".env", "../.env"}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}
