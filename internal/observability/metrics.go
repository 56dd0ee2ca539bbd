package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// ingestion pipeline.
type Metrics struct {
	UploadsProcessed *prometheus.CounterVec // labels: outcome={success,DecodeError,HeaderNotFoundError,TabularParseError,TypeCoercionError,InternalError}
	CacheLookups     *prometheus.CounterVec // labels: result={hit,miss}
	DecodedEncoding  *prometheus.CounterVec // labels: encoding={utf-16,utf-8,latin-1}

	RowsIngested prometheus.Counter
	RowsDropped  prometheus.Counter

	ProcessingDuration prometheus.Histogram
	UploadBytes        prometheus.Histogram

	SinkPublished prometheus.Counter
	SinkErrors    prometheus.Counter
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		UploadsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "buoy_ingest",
			Name:      "uploads_processed_total",
			Help:      "Uploads run through the full pipeline, by outcome.",
		}, []string{"outcome"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "buoy_ingest",
			Name:      "cache_lookups_total",
			Help:      "Content-addressed result store lookups, by result.",
		}, []string{"result"}),
		DecodedEncoding: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "buoy_ingest",
			Name:      "decoded_encoding_total",
			Help:      "Successful decodes, by accepted charset.",
		}, []string{"encoding"}),
		RowsIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "buoy_ingest",
			Name:      "rows_ingested_total",
			Help:      "Observations that survived timestamp coercion.",
		}),
		RowsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "buoy_ingest",
			Name:      "rows_dropped_total",
			Help:      "Data rows dropped for unparseable timestamps.",
		}),
		ProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "buoy_ingest",
			Name:      "processing_duration_seconds",
			Help:      "Duration of a full decode-to-series pipeline run (cache misses only).",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5},
		}),
		UploadBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "buoy_ingest",
			Name:      "upload_bytes",
			Help:      "Size of uploaded files in bytes.",
			Buckets:   prometheus.ExponentialBuckets(1024, 4, 8),
		}),
		SinkPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "buoy_ingest",
			Name:      "sink_published_total",
			Help:      "Datasets published to the Kafka sink topic.",
		}),
		SinkErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "buoy_ingest",
			Name:      "sink_errors_total",
			Help:      "Failed publishes to the Kafka sink topic.",
		}),
	}

	prometheus.MustRegister(
		m.UploadsProcessed,
		m.CacheLookups,
		m.DecodedEncoding,
		m.RowsIngested,
		m.RowsDropped,
		m.ProcessingDuration,
		m.UploadBytes,
		m.SinkPublished,
		m.SinkErrors,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		UploadsProcessed:   prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "buoy_ingest", Name: "uploads_processed_total"}, []string{"outcome"}),
		CacheLookups:       prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "buoy_ingest", Name: "cache_lookups_total"}, []string{"result"}),
		DecodedEncoding:    prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "buoy_ingest", Name: "decoded_encoding_total"}, []string{"encoding"}),
		RowsIngested:       prometheus.NewCounter(prometheus.CounterOpts{Namespace: "buoy_ingest", Name: "rows_ingested_total"}),
		RowsDropped:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: "buoy_ingest", Name: "rows_dropped_total"}),
		ProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "buoy_ingest", Name: "processing_duration_seconds"}),
		UploadBytes:        prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "buoy_ingest", Name: "upload_bytes"}),
		SinkPublished:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: "buoy_ingest", Name: "sink_published_total"}),
		SinkErrors:         prometheus.NewCounter(prometheus.CounterOpts{Namespace: "buoy_ingest", Name: "sink_errors_total"}),
	}
}
