// Package metrics defines the Prometheus metrics exported by the dashboard server.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "taskstats"

// Aggregation kinds used as label values.
const (
	KindBurndown     = "burndown"
	KindHours        = "hours"
	KindDistribution = "distribution"
)

// Metrics holds all Prometheus metrics for taskstats.
type Metrics struct {
	Aggregations        *prometheus.CounterVec
	AggregationDuration *prometheus.HistogramVec
	TasksLoaded         prometheus.Gauge
	CacheHits           prometheus.Counter
	CacheMisses         prometheus.Counter
}

// NewMetrics registers the metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Aggregations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "aggregations_total",
			Help:      "Number of series computations by kind",
		}, []string{"kind"}),
		AggregationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "aggregation_duration_seconds",
			Help:      "Time spent computing series by kind",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"kind"}),
		TasksLoaded: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tasks_loaded",
			Help:      "Number of tasks in the most recent load from the store",
		}),
		CacheHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "series_cache_hits_total",
			Help:      "Series served from the content-hash cache",
		}),
		CacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "series_cache_misses_total",
			Help:      "Series recomputed because the task list changed",
		}),
	}
}

// NewRegistry creates a new Prometheus registry with metrics.
func NewRegistry() (*prometheus.Registry, *Metrics) {
	reg := prometheus.NewRegistry()
	return reg, NewMetrics(reg)
}

// ObserveAggregation records one computation of the given kind.
func (m *Metrics) ObserveAggregation(kind string, elapsed time.Duration) {
	m.Aggregations.WithLabelValues(kind).Inc()
	m.AggregationDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
}

// HandlerFor returns an HTTP handler for a specific registry.
func HandlerFor(reg prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
