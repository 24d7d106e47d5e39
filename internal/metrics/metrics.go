// Package metrics exposes the Prometheus collectors of the indexer processes.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "coupon_indexer"

// IndexerMetrics groups the collectors shared by the emitter, the indexer and the API
type IndexerMetrics struct {
	diagnostics    *prometheus.CounterVec
	events         *prometheus.CounterVec
	eventDuration  *prometheus.HistogramVec
	metadataFetch  *prometheus.CounterVec
	published      *prometheus.CounterVec
	cursor         *prometheus.GaugeVec
	apiRequests    *prometheus.CounterVec
	pendingFetches prometheus.Gauge
}

var (
	indexerOnce     sync.Once
	indexerRegistry *IndexerMetrics
)

// Indexer returns the process-wide collectors, registering them on first use
func Indexer() *IndexerMetrics {
	indexerOnce.Do(func() {
		indexerRegistry = &IndexerMetrics{
			diagnostics: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "diagnostics_total",
				Help:      "Diagnostics recorded while applying events, by level.",
			}, []string{"level"}),
			events: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_total",
				Help:      "Events dispatched to the engine, by kind and outcome.",
			}, []string{"kind", "outcome"}),
			eventDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "event_duration_seconds",
				Help:      "Time spent applying one event, including its transaction.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"kind"}),
			metadataFetch: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "metadata_fetch_total",
				Help:      "Metadata document fetches, by result.",
			}, []string{"result"}),
			published: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "emitter_published_total",
				Help:      "Events published to the stream, by kind.",
			}, []string{"kind"}),
			cursor: prometheus.NewGaugeVec(prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "emitter_block_cursor",
				Help:      "Last block fully published by the emitter.",
			}, []string{"chain"}),
			apiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "api_requests_total",
				Help:      "API requests, by route and status code.",
			}, []string{"route", "status"}),
			pendingFetches: prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "metadata_fetch_in_flight",
				Help:      "Metadata documents currently being fetched.",
			}),
		}
		prometheus.MustRegister(
			indexerRegistry.diagnostics,
			indexerRegistry.events,
			indexerRegistry.eventDuration,
			indexerRegistry.metadataFetch,
			indexerRegistry.published,
			indexerRegistry.cursor,
			indexerRegistry.apiRequests,
			indexerRegistry.pendingFetches,
		)
	})
	return indexerRegistry
}

func (m *IndexerMetrics) ObserveDiagnostic(level string) {
	if m == nil {
		return
	}
	m.diagnostics.WithLabelValues(level).Inc()
}

func (m *IndexerMetrics) ObserveEvent(kind, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	if kind == "" {
		kind = "unknown"
	}
	m.events.WithLabelValues(kind, outcome).Inc()
	m.eventDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
}

func (m *IndexerMetrics) ObserveMetadataFetch(result string) {
	if m == nil {
		return
	}
	m.metadataFetch.WithLabelValues(result).Inc()
}

func (m *IndexerMetrics) SetFetchesInFlight(n int) {
	if m == nil {
		return
	}
	m.pendingFetches.Set(float64(n))
}

func (m *IndexerMetrics) ObservePublished(kind string) {
	if m == nil {
		return
	}
	m.published.WithLabelValues(kind).Inc()
}

func (m *IndexerMetrics) SetCursor(chain string, block uint64) {
	if m == nil {
		return
	}
	m.cursor.WithLabelValues(chain).Set(float64(block))
}

func (m *IndexerMetrics) ObserveAPIRequest(route string, status string) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.apiRequests.WithLabelValues(route, status).Inc()
}

// DiagnosticsCounter returns the counter of one diagnostic level
func (m *IndexerMetrics) DiagnosticsCounter(level string) prometheus.Counter {
	return m.diagnostics.WithLabelValues(level)
}
