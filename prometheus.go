package salescube

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/salescube/model"
)

// PrometheusMetricsCollector exports engine metrics as Prometheus collectors.
type PrometheusMetricsCollector struct {
	loads         *prometheus.CounterVec
	loadTables    prometheus.Counter
	loadDuration  prometheus.Histogram
	builds        *prometheus.CounterVec
	buildRows     *prometheus.GaugeVec
	buildDuration *prometheus.HistogramVec
	queries       prometheus.Counter
	queryRows     prometheus.Histogram
	queryDuration prometheus.Histogram
	shortCircuits prometheus.Counter
}

var _ MetricsCollector = (*PrometheusMetricsCollector)(nil)

// NewPrometheusMetricsCollector creates the collectors under namespace and
// registers them with reg. A nil reg skips registration.
func NewPrometheusMetricsCollector(reg prometheus.Registerer, namespace string) (*PrometheusMetricsCollector, error) {
	if namespace == "" {
		namespace = "salescube"
	}
	c := &PrometheusMetricsCollector{
		loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "loads_total",
			Help:      "Payload loads by outcome.",
		}, []string{"status"}),
		loadTables: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "loaded_tables_total",
			Help:      "Tables read by successful loads.",
		}),
		loadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "load_duration_seconds",
			Help:      "Payload load latency.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		builds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "builds_total",
			Help:      "Index builds by table and outcome.",
		}, []string{"table", "status"}),
		buildRows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "indexed_rows",
			Help:      "Rows covered by the latest successful build of a table.",
		}, []string{"table"}),
		buildDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Index build latency.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
		}, []string{"table"}),
		queries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Evaluated filters.",
		}),
		queryRows: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_rows",
			Help:      "Rows matched per filter.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
		}),
		queryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_duration_seconds",
			Help:      "Filter evaluation latency.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}),
		shortCircuits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "query_short_circuits_total",
			Help:      "Filters answered empty before any intersection.",
		}),
	}
	if reg != nil {
		for _, col := range c.collectors() {
			if err := reg.Register(col); err != nil {
				return nil, err
			}
		}
	}
	return c, nil
}

func (c *PrometheusMetricsCollector) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		c.loads, c.loadTables, c.loadDuration,
		c.builds, c.buildRows, c.buildDuration,
		c.queries, c.queryRows, c.queryDuration, c.shortCircuits,
	}
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// RecordLoad implements MetricsCollector.
func (c *PrometheusMetricsCollector) RecordLoad(tables int, duration time.Duration, err error) {
	c.loads.WithLabelValues(status(err)).Inc()
	c.loadDuration.Observe(duration.Seconds())
	if err == nil {
		c.loadTables.Add(float64(tables))
	}
}

// RecordBuild implements MetricsCollector.
func (c *PrometheusMetricsCollector) RecordBuild(name model.TableName, rows int, duration time.Duration, err error) {
	c.builds.WithLabelValues(string(name), status(err)).Inc()
	c.buildDuration.WithLabelValues(string(name)).Observe(duration.Seconds())
	if err == nil {
		c.buildRows.WithLabelValues(string(name)).Set(float64(rows))
	}
}

// RecordQuery implements MetricsCollector.
func (c *PrometheusMetricsCollector) RecordQuery(duration time.Duration, rows int) {
	c.queries.Inc()
	c.queryRows.Observe(float64(rows))
	c.queryDuration.Observe(duration.Seconds())
}

// RecordShortCircuit implements MetricsCollector.
func (c *PrometheusMetricsCollector) RecordShortCircuit() {
	c.shortCircuits.Inc()
}
