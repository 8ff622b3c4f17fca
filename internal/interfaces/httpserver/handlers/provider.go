package handlers

import (
	"github.com/rs/zerolog"

	"family-archive/archive-api/internal/domain/archive"
	"family-archive/archive-api/internal/domain/archiveview"
	"family-archive/archive-api/internal/infrastructure/handles"
)

// Provider wires HTTP handlers. Files is nil unless local storage is active.
type Provider struct {
	Archive   *ArchiveHandler
	Downloads *DownloadHandler
	Bundles   *BundleHandler
	Files     *FilesHandler
}

func NewProvider(views *archiveview.Service, bundles *archive.BundleService, registry *handles.Registry, localFiles archive.ObjectStore, log zerolog.Logger) *Provider {
	provider := &Provider{
		Archive:   NewArchiveHandler(views, log),
		Downloads: NewDownloadHandler(registry, log),
		Bundles:   NewBundleHandler(bundles, log),
	}
	if localFiles != nil {
		provider.Files = NewFilesHandler(localFiles, log)
	}
	return provider
}
