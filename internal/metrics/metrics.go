package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docvault_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "docvault_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "docvault_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Database metrics
var (
	DBQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docvault_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "docvault_db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)
)

// Blob storage metrics
var (
	BlobOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "docvault_blob_operation_duration_seconds",
			Help:    "Blob storage operation duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"operation"},
	)

	BlobOperationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docvault_blob_operation_errors_total",
			Help: "Total number of blob storage operation errors",
		},
		[]string{"operation"},
	)
)

// Thumbnail pipeline metrics
var (
	RendersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docvault_renders_total",
			Help: "Total number of render attempts by strategy and outcome",
		},
		[]string{"strategy", "outcome"}, // outcome: "ok" or "failed"
	)

	RenderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "docvault_render_duration_seconds",
			Help:    "Thumbnail render duration in seconds by strategy",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"strategy"},
	)

	RenderFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docvault_render_fallbacks_total",
			Help: "Total number of renders that fell back to the synthetic icon",
		},
		[]string{"category"},
	)

	RendersInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "docvault_renders_in_flight",
			Help: "Number of background renders currently running",
		},
	)
)

// Temp scope metrics
var (
	TempScopesActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "docvault_temp_scopes_active",
			Help: "Number of render scopes currently held",
		},
	)

	TempScopeLeaks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "docvault_temp_scope_leaks_total",
			Help: "Total number of render scope directories that failed to delete",
		},
	)
)

// Document lifecycle metrics
var (
	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docvault_uploads_total",
			Help: "Total number of document uploads",
		},
		[]string{"category", "status"},
	)

	DeletesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "docvault_deletes_total",
			Help: "Total number of document deletions",
		},
	)

	ThumbnailUpgradesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docvault_thumbnail_upgrades_total",
			Help: "Total number of client-submitted thumbnail upgrades",
		},
		[]string{"status"},
	)

	StaleRenderDrops = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "docvault_stale_render_drops_total",
			Help: "Background renders discarded because the document was deleted",
		},
	)
)

// ObserveQuery returns a completion func that records duration and status
// for a database operation. Usage:
//
//	done := metrics.ObserveQuery("create_document")
//	...
//	done(err)
func ObserveQuery(operation string) func(error) {
	timer := prometheus.NewTimer(DBQueryDuration.WithLabelValues(operation))
	return func(err error) {
		timer.ObserveDuration()
		status := "success"
		if err != nil {
			status = "error"
		}
		DBQueryTotal.WithLabelValues(operation, status).Inc()
	}
}
