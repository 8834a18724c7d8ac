package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Upstream fetch metrics
	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zoom_reports_upstream_requests_total",
			Help: "Total number of upstream page fetches",
		},
		[]string{"dataset"},
	)

	UpstreamErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zoom_reports_upstream_errors_total",
			Help: "Total number of failed upstream page fetches",
		},
		[]string{"dataset"},
	)

	// Ingestion metrics
	RecordsIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zoom_reports_records_ingested_total",
			Help: "Total number of records upserted into local tables",
		},
		[]string{"dataset"},
	)

	IngestErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zoom_reports_ingest_errors_total",
			Help: "Total number of ingestion storage errors",
		},
		[]string{"dataset"},
	)

	DrainDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "zoom_reports_drain_duration_seconds",
			Help:    "Duration of full window drains in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"dataset"},
	)

	// Report metrics
	ReportDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "zoom_reports_report_duration_seconds",
			Help:    "Duration of report requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"report"},
	)

	CacheProbes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zoom_reports_cache_probes_total",
			Help: "Cache presence probes by outcome",
		},
		[]string{"dataset", "outcome"},
	)
)
