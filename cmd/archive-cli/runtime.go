package main

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"family-archive/archive-api/internal/app"
	"family-archive/archive-api/internal/config"
	"family-archive/archive-api/internal/domain/archiveview"
	"family-archive/archive-api/internal/infrastructure/handles"
	"family-archive/archive-api/internal/infrastructure/logger"
)

type runtime struct {
	cfg      *config.Config
	log      zerolog.Logger
	views    *archiveview.Service
	registry *handles.Registry
}

func newRuntime(ctx context.Context, cmd *cobra.Command) (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if verbose, _ := cmd.Flags().GetBool("verbose"); !verbose {
		cfg.LogLevel = "warn"
	}
	log := logger.New(cfg)

	source, err := app.ProvidePhotoSource(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	grouper, err := app.ProvideGrouper(cfg)
	if err != nil {
		return nil, err
	}
	backend, err := app.ProvideStorage(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	registry := app.ProvideHandleRegistry(log)
	exporter := app.ProvideExporter(cfg, backend, registry, log)

	return &runtime{
		cfg:      cfg,
		log:      log,
		views:    app.ProvideViewService(source, grouper, exporter, log),
		registry: registry,
	}, nil
}
