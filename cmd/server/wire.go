//go:build wireinject

package main

import (
	"context"

	"github.com/google/wire"

	"family-archive/archive-api/internal/app"
	"family-archive/archive-api/internal/config"
	"family-archive/archive-api/internal/infrastructure/logger"
	"family-archive/archive-api/internal/infrastructure/storage"
	"family-archive/archive-api/internal/interfaces/httpserver"
)

var archiveSet = wire.NewSet(
	app.ProvidePhotoSource,
	app.ProvideGrouper,
	app.ProvideStorage,
	app.ProvideHandleRegistry,
	app.ProvideExporter,
	app.ProvideViewService,
	app.ProvideBundleService,
	app.ProvideHandlers,
	app.NewJanitor,
	provideHealthChecker,
)

// BuildApplication assembles the archive API with Wire.
func BuildApplication(ctx context.Context) (*Application, error) {
	wire.Build(
		config.Load,
		logger.New,
		archiveSet,
		httpserver.New,
		NewApplication,
	)
	return nil, nil
}

func provideHealthChecker(backend storage.Backend) httpserver.HealthChecker {
	return backend
}
