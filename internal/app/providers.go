// Package app assembles the archive service from configuration. The server
// and the CLI share these providers.
package app

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	gormlogger "gorm.io/gorm/logger"

	"family-archive/archive-api/internal/config"
	"family-archive/archive-api/internal/domain/archive"
	"family-archive/archive-api/internal/domain/archiveview"
	"family-archive/archive-api/internal/domain/period"
	"family-archive/archive-api/internal/domain/photo"
	"family-archive/archive-api/internal/domain/selection"
	"family-archive/archive-api/internal/infrastructure/bundling"
	"family-archive/archive-api/internal/infrastructure/database"
	"family-archive/archive-api/internal/infrastructure/fetcher"
	"family-archive/archive-api/internal/infrastructure/handles"
	"family-archive/archive-api/internal/infrastructure/metrics"
	"family-archive/archive-api/internal/infrastructure/photosource"
	"family-archive/archive-api/internal/infrastructure/storage"
	"family-archive/archive-api/internal/interfaces/httpserver/handlers"
)

// ProvidePhotoSource returns the catalog reader selected by ARCHIVE_PHOTO_SOURCE.
func ProvidePhotoSource(ctx context.Context, cfg *config.Config, log zerolog.Logger) (photo.Source, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	if !cfg.UsesDatabaseSource() {
		return photosource.NewAPISource(cfg.PhotoAPIURL, cfg.PhotoAPITimeout, loc, log), nil
	}

	db, err := database.Connect(database.Config{
		DSN:             cfg.DBPostgresqlDSN,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
		LogLevel:        gormlogger.Warn,
	})
	if err != nil {
		return nil, err
	}
	if err := database.VerifyCatalog(ctx, db, cfg.PhotoAPITimeout); err != nil {
		return nil, err
	}
	return photosource.NewDBSource(db, loc, log), nil
}

// ProvideGrouper builds the bucket grouper for the catalog time zone and label locale.
func ProvideGrouper(cfg *config.Config) (*period.Grouper, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	return period.NewGrouper(loc, period.LabelsFor(cfg.LabelLocale)), nil
}

// ProvideStorage creates the storage backend named by ARCHIVE_STORAGE_BACKEND.
func ProvideStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (storage.Backend, error) {
	return storage.NewBackend(ctx, cfg, log)
}

// ProvideHandleRegistry creates the in-memory registry of local archives.
func ProvideHandleRegistry(log zerolog.Logger) *handles.Registry {
	return handles.NewRegistry(time.Now, log)
}

// ProvideExporter wires the two-path exporter.
func ProvideExporter(cfg *config.Config, backend storage.Backend, registry *handles.Registry, log zerolog.Logger) *archive.Exporter {
	return archive.NewExporter(
		archive.Options{
			Bucket:     cfg.S3Bucket,
			KeyPrefix:  cfg.OriginalKeyPrefix,
			NamePrefix: cfg.ArchiveNamePrefix,
			Recorder:   metrics.NewExportRecorder(),
		},
		bundling.NewClient(cfg.BundlerURL, cfg.BundlerTimeout),
		backend,
		fetcher.New(cfg.ObjectFetchTimeout, cfg.MaxObjectBytes, log),
		registry,
		log,
	)
}

// ProvideViewService wires bucket navigation and per-view selections.
func ProvideViewService(source photo.Source, grouper *period.Grouper, exporter *archive.Exporter, log zerolog.Logger) *archiveview.Service {
	return archiveview.NewService(
		source,
		grouper,
		selection.NewRegistry(period.KeyRecent, time.Now),
		exporter,
		time.Now,
		log,
	)
}

// ProvideBundleService wires the server-side bundler.
func ProvideBundleService(cfg *config.Config, source photo.Source, backend storage.Backend, log zerolog.Logger) *archive.BundleService {
	return archive.NewBundleService(source, backend, archive.BundleOptions{
		OriginalPrefix: cfg.OriginalKeyPrefix,
		BundlePrefix:   cfg.BundleKeyPrefix,
		TTL:            cfg.BundleTTL,
		MaxObjectBytes: cfg.MaxObjectBytes,
	}, log)
}

// ProvideHandlers wires HTTP handlers. Stored files are only served by the
// service itself when the local backend is active.
func ProvideHandlers(cfg *config.Config, views *archiveview.Service, bundles *archive.BundleService, registry *handles.Registry, backend storage.Backend, log zerolog.Logger) *handlers.Provider {
	var localFiles archive.ObjectStore
	if cfg.IsLocalStorage() {
		localFiles = backend
	}
	return handlers.NewProvider(views, bundles, registry, localFiles, log)
}
