package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"family-archive/archive-api/internal/domain/archive"
)

// Archive-API Metrics
var (
	// Request counters
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "family",
			Subsystem: "archive_api",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "family",
			Subsystem: "archive_api",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"method", "endpoint"},
	)

	// Export outcomes by final state
	ExportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "family",
			Subsystem: "archive_api",
			Name:      "exports_total",
			Help:      "Total archive exports by final state",
		},
		[]string{"state"},
	)

	ExportTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "family",
			Subsystem: "archive_api",
			Name:      "export_transitions_total",
			Help:      "Export state machine transitions",
		},
		[]string{"from", "to"},
	)

	ExportDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "family",
			Subsystem: "archive_api",
			Name:      "export_duration_seconds",
			Help:      "Archive export duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"state"},
	)

	ExportPhotos = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "family",
			Subsystem: "archive_api",
			Name:      "export_photos",
			Help:      "Photos per archive export",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		},
	)

	// Locally assembled archive bytes
	FallbackBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "family",
			Subsystem: "archive_api",
			Name:      "fallback_bytes_total",
			Help:      "Total bytes of locally assembled archives",
		},
	)

	StorageOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "family",
			Subsystem: "archive_api",
			Name:      "storage_operations_total",
			Help:      "Total object storage operations",
		},
		[]string{"operation", "status"},
	)

	StorageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "family",
			Subsystem: "archive_api",
			Name:      "storage_duration_seconds",
			Help:      "Object storage operation duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"operation"},
	)

	OpenHandles = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "family",
			Subsystem: "archive_api",
			Name:      "open_handles",
			Help:      "Locally assembled archives waiting to be downloaded",
		},
	)

	LiveViews = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "family",
			Subsystem: "archive_api",
			Name:      "live_views",
			Help:      "Archive views held in memory",
		},
	)
)

// RecordRequest records an HTTP request
func RecordRequest(method, endpoint, status string, durationSec float64) {
	RequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	RequestDuration.WithLabelValues(method, endpoint).Observe(durationSec)
}

// RecordStorageOperation records one object storage call
func RecordStorageOperation(operation string, err error, started time.Time) {
	status := "success"
	if err != nil {
		status = "error"
	}
	StorageOperationsTotal.WithLabelValues(operation, status).Inc()
	StorageDuration.WithLabelValues(operation).Observe(time.Since(started).Seconds())
}

// ExportRecorder feeds exporter events into Prometheus.
type ExportRecorder struct{}

// NewExportRecorder returns the Prometheus-backed archive.Recorder.
func NewExportRecorder() *ExportRecorder {
	return &ExportRecorder{}
}

func (ExportRecorder) RecordTransition(from, to archive.State) {
	ExportTransitionsTotal.WithLabelValues(string(from), string(to)).Inc()
}

func (ExportRecorder) RecordExport(final archive.State, photos int, bytes int64, duration time.Duration) {
	ExportsTotal.WithLabelValues(string(final)).Inc()
	ExportDuration.WithLabelValues(string(final)).Observe(duration.Seconds())
	ExportPhotos.Observe(float64(photos))
	if final == archive.StateFallbackBundleReady {
		FallbackBytesTotal.Add(float64(bytes))
	}
}

var _ archive.Recorder = ExportRecorder{}
