package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "openwater_etl"

// Metrics holds the Prometheus counters, histograms, and gauges for the ETL pipeline.
type Metrics struct {
	PipelineRunning prometheus.Gauge
	RunDuration     prometheus.Histogram

	// Feed metrics.
	FeedFetches       *prometheus.CounterVec // labels: outcome={success,not_modified,error}
	FeedFetchDuration prometheus.Histogram
	ReadingsExtracted prometheus.Counter
	RecordsSkipped    *prometheus.CounterVec // labels: reason={missing_landmark,truncated,short_field,empty_location,invalid_temperature,unknown}
	LastScanReadings  prometheus.Gauge

	// Report metrics.
	RecipientsLoaded      prometheus.Gauge
	NotificationsProduced prometheus.Counter
	RenderErrors          prometheus.Counter
	PublishErrors         prometheus.Counter

	// Query API.
	ReadingQueries *prometheus.CounterVec // labels: outcome={ok,bad_request,unavailable}
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete fetch-scan-report-publish cycle.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		FeedFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_fetches_total",
			Help:      "Feed download attempts by outcome.",
		}, []string{"outcome"}),
		FeedFetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "feed_fetch_duration_seconds",
			Help:      "Feed download duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		ReadingsExtracted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "readings_extracted_total",
			Help:      "Total readings built from feed records.",
		}),
		RecordsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_skipped_total",
			Help:      "Feed records skipped as malformed, by reason.",
		}, []string{"reason"}),
		LastScanReadings: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_scan_readings",
			Help:      "Number of readings in the most recent scan.",
		}),
		RecipientsLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "recipients_loaded",
			Help:      "Number of valid recipients in the most recent run.",
		}),
		NotificationsProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_produced_total",
			Help:      "Total notifications written to the sink.",
		}),
		RenderErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "render_errors_total",
			Help:      "Total report rendering failures.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      "Total failed sink publish attempts.",
		}),
		ReadingQueries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reading_queries_total",
			Help:      "Reading API queries by outcome.",
		}, []string{"outcome"}),
	}

	prometheus.MustRegister(
		m.PipelineRunning,
		m.RunDuration,
		m.FeedFetches,
		m.FeedFetchDuration,
		m.ReadingsExtracted,
		m.RecordsSkipped,
		m.LastScanReadings,
		m.RecipientsLoaded,
		m.NotificationsProduced,
		m.RenderErrors,
		m.PublishErrors,
		m.ReadingQueries,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return NewUnregisteredMetrics()
}

// NewUnregisteredMetrics creates Metrics that no registry exports. One-shot
// CLI runs use it since they have no /metrics endpoint.
func NewUnregisteredMetrics() *Metrics {
	return &Metrics{
		PipelineRunning:       prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "pipeline_running"}),
		RunDuration:           prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: namespace, Name: "run_duration_seconds"}),
		FeedFetches:           prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "feed_fetches_total"}, []string{"outcome"}),
		FeedFetchDuration:     prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: namespace, Name: "feed_fetch_duration_seconds"}),
		ReadingsExtracted:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "readings_extracted_total"}),
		RecordsSkipped:        prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "records_skipped_total"}, []string{"reason"}),
		LastScanReadings:      prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "last_scan_readings"}),
		RecipientsLoaded:      prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "recipients_loaded"}),
		NotificationsProduced: prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "notifications_produced_total"}),
		RenderErrors:          prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "render_errors_total"}),
		PublishErrors:         prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "publish_errors_total"}),
		ReadingQueries:        prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "reading_queries_total"}, []string{"outcome"}),
	}
}
