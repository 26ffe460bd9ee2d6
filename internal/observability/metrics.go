package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters and histograms for the bulletin service.
type Metrics struct {
	// Upstream NOMADS metrics.
	ProbeRequests *prometheus.CounterVec // labels: outcome={found,absent,error}
	FetchRequests *prometheus.CounterVec // labels: outcome={success,not_found,error}
	FetchDuration prometheus.Histogram
	FetchRetries  prometheus.Counter
	CacheLookups  *prometheus.CounterVec // labels: result={hit,miss}

	// Run resolution metrics.
	ResolveProbes   prometheus.Histogram
	ResolveFailures prometheus.Counter

	// Parsing and rendering metrics.
	ParseErrors    prometheus.Counter
	TablesRendered prometheus.Counter
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		ProbeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wave_bull",
			Name:      "probe_requests_total",
			Help:      "Bulletin existence probes against NOMADS by outcome.",
		}, []string{"outcome"}),
		FetchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wave_bull",
			Name:      "fetch_requests_total",
			Help:      "Bulletin downloads from NOMADS by outcome.",
		}, []string{"outcome"}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "wave_bull",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of a bulletin download including retries.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		}),
		FetchRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wave_bull",
			Name:      "fetch_retries_total",
			Help:      "Total download attempts beyond the first.",
		}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wave_bull",
			Name:      "cache_lookups_total",
			Help:      "Bulletin cache lookups by result.",
		}, []string{"result"}),
		ResolveProbes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "wave_bull",
			Name:      "resolve_probes",
			Help:      "Number of candidate cycles probed before one was found.",
			Buckets:   []float64{1, 2, 3, 4, 5, 6, 7, 8},
		}),
		ResolveFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wave_bull",
			Name:      "resolve_failures_total",
			Help:      "Resolutions that exhausted the candidate window without a hit.",
		}),
		ParseErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wave_bull",
			Name:      "parse_errors_total",
			Help:      "Bulletins rejected as malformed by the parser.",
		}),
		TablesRendered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wave_bull",
			Name:      "tables_rendered_total",
			Help:      "Forecast tables successfully built end to end.",
		}),
	}

	prometheus.MustRegister(
		m.ProbeRequests,
		m.FetchRequests,
		m.FetchDuration,
		m.FetchRetries,
		m.CacheLookups,
		m.ResolveProbes,
		m.ResolveFailures,
		m.ParseErrors,
		m.TablesRendered,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		ProbeRequests:   prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "wave_bull", Name: "probe_requests_total"}, []string{"outcome"}),
		FetchRequests:   prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "wave_bull", Name: "fetch_requests_total"}, []string{"outcome"}),
		FetchDuration:   prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "wave_bull", Name: "fetch_duration_seconds"}),
		FetchRetries:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: "wave_bull", Name: "fetch_retries_total"}),
		CacheLookups:    prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "wave_bull", Name: "cache_lookups_total"}, []string{"result"}),
		ResolveProbes:   prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "wave_bull", Name: "resolve_probes"}),
		ResolveFailures: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "wave_bull", Name: "resolve_failures_total"}),
		ParseErrors:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: "wave_bull", Name: "parse_errors_total"}),
		TablesRendered:  prometheus.NewCounter(prometheus.CounterOpts{Namespace: "wave_bull", Name: "tables_rendered_total"}),
	}
}
