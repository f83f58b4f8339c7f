package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "county_strain"

// Metrics holds the Prometheus counters, histograms, and gauges for one ETL run.
type Metrics struct {
	RowsFetched   *prometheus.CounterVec   // labels: source={cases,census,hospitals,reference}
	FetchDuration *prometheus.HistogramVec // labels: source
	FetchErrors   *prometheus.CounterVec   // labels: source

	CountiesDerived prometheus.Gauge
	JoinMisses      prometheus.Counter
	UnmappedNames   *prometheus.CounterVec // labels: source
	HistoryGaps     prometheus.Counter
	SnapshotRows    prometheus.Gauge
	SinkMessages    prometheus.Counter

	RunDuration     prometheus.Histogram
	LastSuccess     prometheus.Gauge
	PipelineRunning prometheus.Gauge

	// Gatherer is the registry the collectors are registered with. The
	// Pushgateway client reads from it.
	Gatherer prometheus.Gatherer
}

func newMetrics() *Metrics {
	return &Metrics{
		RowsFetched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_fetched_total",
			Help:      "Rows parsed from each input source.",
		}, []string{"source"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Time to download and parse one input source.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"source"}),
		FetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_errors_total",
			Help:      "Fetches that failed after all retries, per source.",
		}, []string{"source"}),
		CountiesDerived: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "counties_derived",
			Help:      "County series produced by the deriver.",
		}),
		JoinMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "join_misses_total",
			Help:      "County series dropped for lack of a population match.",
		}),
		UnmappedNames: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unmapped_names_total",
			Help:      "Distinct raw county names that matched no normalization rule.",
		}, []string{"source"}),
		HistoryGaps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "history_gaps_total",
			Help:      "Counties left out of the snapshot for insufficient history.",
		}),
		SnapshotRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_rows",
			Help:      "Rows in the most recent capacity snapshot.",
		}),
		SinkMessages: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sink_messages_total",
			Help:      "Snapshot rows published to the Kafka sink.",
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete ETL run.",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
		}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 while a run is in progress, 0 otherwise.",
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.RowsFetched,
		m.FetchDuration,
		m.FetchErrors,
		m.CountiesDerived,
		m.JoinMisses,
		m.UnmappedNames,
		m.HistoryGaps,
		m.SnapshotRows,
		m.SinkMessages,
		m.RunDuration,
		m.LastSuccess,
		m.PipelineRunning,
	}
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	m.Gatherer = prometheus.DefaultGatherer
	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	m := newMetrics()
	reg := prometheus.NewRegistry()
	reg.MustRegister(m.collectors()...)
	m.Gatherer = reg
	return m
}
