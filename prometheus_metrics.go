package colex

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusMetrics implements the Metrics interface using Prometheus
type PrometheusMetrics struct {
	counters   map[string]*prometheus.CounterVec
	histograms map[string]*prometheus.HistogramVec
	registry   *prometheus.Registry
}

// NewPrometheusMetrics creates a new Prometheus metrics instance
// If registry is nil, uses the default Prometheus registry
func NewPrometheusMetrics(registry *prometheus.Registry) *PrometheusMetrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer.(*prometheus.Registry)
	}

	pm := &PrometheusMetrics{
		counters:   make(map[string]*prometheus.CounterVec),
		histograms: make(map[string]*prometheus.HistogramVec),
		registry:   registry,
	}

	pm.registerDefaultMetrics()
	return pm
}

// registerDefaultMetrics registers all standard colex metrics
func (p *PrometheusMetrics) registerDefaultMetrics() {
	p.counters[MetricLoadSuccess] = promauto.With(p.registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "colex",
			Subsystem: "load",
			Name:      "success_total",
			Help:      "Total number of successful collection loads",
		},
		[]string{"collection"},
	)

	p.counters[MetricLoadError] = promauto.With(p.registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "colex",
			Subsystem: "load",
			Name:      "errors_total",
			Help:      "Total number of failed collection loads",
		},
		[]string{"collection"},
	)

	p.counters[MetricAdaptSuccess] = promauto.With(p.registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "colex",
			Subsystem: "adapt",
			Name:      "success_total",
			Help:      "Total number of completed adapter chains",
		},
		[]string{"from", "to"},
	)

	p.counters[MetricAdaptError] = promauto.With(p.registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "colex",
			Subsystem: "adapt",
			Name:      "errors_total",
			Help:      "Total number of failed adapter chains",
		},
		[]string{"from", "to"},
	)

	p.histograms[MetricRecordsLoaded] = promauto.With(p.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "colex",
			Subsystem: "load",
			Name:      "batch_records",
			Help:      "Records per loaded batch",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
		},
		[]string{"collection"},
	)

	p.histograms[MetricLoadDuration] = promauto.With(p.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "colex",
			Subsystem: "load",
			Name:      "duration_seconds",
			Help:      "Collection load duration",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"collection"},
	)

	p.histograms[MetricAdaptHops] = promauto.With(p.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "colex",
			Subsystem: "adapt",
			Name:      "chain_hops",
			Help:      "Adapter hops per completed chain",
			Buckets:   prometheus.LinearBuckets(1, 1, 10),
		},
		[]string{"from", "to"},
	)

	p.histograms[MetricAdaptDuration] = promauto.With(p.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "colex",
			Subsystem: "adapt",
			Name:      "duration_seconds",
			Help:      "Adapter chain duration",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"from", "to"},
	)
}

// Increment increases a counter by 1
func (p *PrometheusMetrics) Increment(name string, tags ...string) {
	if counter, ok := p.counters[name]; ok {
		counter.WithLabelValues(tagValues(name, tags)...).Inc()
	}
}

// Gauge is a no-op: colex exposes no gauge-shaped metrics
func (p *PrometheusMetrics) Gauge(name string, value float64, tags ...string) {}

// Histogram records a value distribution
func (p *PrometheusMetrics) Histogram(name string, value float64, tags ...string) {
	if histogram, ok := p.histograms[name]; ok {
		histogram.WithLabelValues(tagValues(name, tags)...).Observe(value)
	}
}

// Timing records a duration as seconds on the matching histogram
func (p *PrometheusMetrics) Timing(name string, duration time.Duration, tags ...string) {
	if histogram, ok := p.histograms[name]; ok {
		histogram.WithLabelValues(tagValues(name, tags)...).Observe(duration.Seconds())
	}
}

// tagValues extracts label values from alternating key/value tags. The
// registered metric vectors declare either {"collection"} or {"from","to"}.
func tagValues(name string, tags []string) []string {
	values := make([]string, 0, len(tags)/2)
	for i := 1; i < len(tags); i += 2 {
		values = append(values, tags[i])
	}
	return values
}
