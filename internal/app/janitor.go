package app

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"family-archive/archive-api/internal/config"
	"family-archive/archive-api/internal/domain/archiveview"
	"family-archive/archive-api/internal/infrastructure/handles"
	"family-archive/archive-api/internal/infrastructure/metrics"
)

// Janitor periodically drops idle views and abandoned download handles.
type Janitor struct {
	views        *archiveview.Service
	handles      *handles.Registry
	interval     time.Duration
	viewIdleTTL  time.Duration
	handleMaxAge time.Duration
	log          zerolog.Logger
}

func NewJanitor(cfg *config.Config, views *archiveview.Service, registry *handles.Registry, log zerolog.Logger) *Janitor {
	return &Janitor{
		views:        views,
		handles:      registry,
		interval:     cfg.JanitorInterval,
		viewIdleTTL:  cfg.ViewIdleTTL,
		handleMaxAge: cfg.HandleMaxAge,
		log:          log.With().Str("component", "janitor").Logger(),
	}
}

// Run sweeps until ctx is cancelled.
func (j *Janitor) Run(ctx context.Context) {
	if j.interval <= 0 {
		j.log.Warn().Msg("janitor disabled: ARCHIVE_JANITOR_INTERVAL is not positive")
		return
	}
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.Sweep()
		}
	}
}

// Sweep runs one cleanup pass.
func (j *Janitor) Sweep() {
	evicted := j.views.EvictIdle(j.viewIdleTTL)
	released := j.handles.Sweep(j.handleMaxAge)
	metrics.LiveViews.Set(float64(j.views.LiveViews()))
	if evicted > 0 || released > 0 {
		j.log.Info().Int("views_evicted", evicted).Int("handles_released", released).Msg("janitor sweep")
	}
}
