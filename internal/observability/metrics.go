package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// quake monitor.
type Metrics struct {
	EventsFetched   prometheus.Counter
	EventsEmitted   prometheus.Counter
	EventsFiltered  prometheus.Counter
	EventUpdates    prometheus.Counter
	EventDuplicates prometheus.Counter
	FetchErrors     prometheus.Counter
	MonitorRunning  prometheus.Gauge

	// Deduplication ring state.
	DedupRingSize prometheus.Gauge
	DedupRate     prometheus.Gauge

	// Poll cycle metrics.
	PollDuration prometheus.Histogram
}

// NewMetrics creates and registers all monitor metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		EventsFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quake_monitor",
			Name:      "events_fetched_total",
			Help:      "Total events received from the USGS feed.",
		}),
		EventsEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quake_monitor",
			Name:      "events_emitted_total",
			Help:      "Total events passed downstream (new plus updated).",
		}),
		EventsFiltered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quake_monitor",
			Name:      "events_filtered_total",
			Help:      "Total events rejected by the configured filter.",
		}),
		EventUpdates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quake_monitor",
			Name:      "event_updates_total",
			Help:      "Total emitted events that were revisions of earlier events.",
		}),
		EventDuplicates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quake_monitor",
			Name:      "event_duplicates_total",
			Help:      "Total events suppressed as exact duplicates.",
		}),
		FetchErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quake_monitor",
			Name:      "fetch_errors_total",
			Help:      "Total failed feed fetch attempts.",
		}),
		MonitorRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "quake_monitor",
			Name:      "running",
			Help:      "1 when the poll loop is active, 0 when shut down.",
		}),
		DedupRingSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "quake_monitor",
			Name:      "dedup_ring_size",
			Help:      "Number of event ids currently tracked by the dedup ring.",
		}),
		DedupRate: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "quake_monitor",
			Name:      "dedup_rate",
			Help:      "Fraction of observed events classified as duplicates.",
		}),
		PollDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "quake_monitor",
			Name:      "poll_duration_seconds",
			Help:      "Duration of a complete fetch-filter-dedup-publish cycle.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
	}

	prometheus.MustRegister(
		m.EventsFetched,
		m.EventsEmitted,
		m.EventsFiltered,
		m.EventUpdates,
		m.EventDuplicates,
		m.FetchErrors,
		m.MonitorRunning,
		m.DedupRingSize,
		m.DedupRate,
		m.PollDuration,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		EventsFetched:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "quake_monitor", Name: "events_fetched_total"}),
		EventsEmitted:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "quake_monitor", Name: "events_emitted_total"}),
		EventsFiltered:  prometheus.NewCounter(prometheus.CounterOpts{Namespace: "quake_monitor", Name: "events_filtered_total"}),
		EventUpdates:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: "quake_monitor", Name: "event_updates_total"}),
		EventDuplicates: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "quake_monitor", Name: "event_duplicates_total"}),
		FetchErrors:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: "quake_monitor", Name: "fetch_errors_total"}),
		MonitorRunning:  prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "quake_monitor", Name: "running"}),
		DedupRingSize:   prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "quake_monitor", Name: "dedup_ring_size"}),
		DedupRate:       prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "quake_monitor", Name: "dedup_rate"}),
		PollDuration:    prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "quake_monitor", Name: "poll_duration_seconds"}),
	}
}
