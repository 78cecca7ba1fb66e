package salescube

import (
	"sync/atomic"
	"time"

	"github.com/hupe1980/salescube/model"
	"github.com/hupe1980/salescube/query"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// A MetricsCollector also satisfies query.Metrics, so the same collector
// observes every table's query engine.
type MetricsCollector interface {
	// RecordLoad is called after each payload load.
	// tables is the number of tables loaded, err is nil if successful.
	RecordLoad(tables int, duration time.Duration, err error)

	// RecordBuild is called after each table index build.
	RecordBuild(name model.TableName, rows int, duration time.Duration, err error)

	// RecordQuery is called after each evaluated filter with the number of
	// matching rows.
	RecordQuery(duration time.Duration, rows int)

	// RecordShortCircuit is called when a filter resolves to empty before
	// any intersection work.
	RecordShortCircuit()
}

var _ query.Metrics = MetricsCollector(nil)

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordLoad(int, time.Duration, error)                   {}
func (NoopMetricsCollector) RecordBuild(model.TableName, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordQuery(time.Duration, int)                         {}
func (NoopMetricsCollector) RecordShortCircuit()                                    {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	LoadCount       atomic.Int64
	LoadErrors      atomic.Int64
	LoadTables      atomic.Int64
	BuildCount      atomic.Int64
	BuildErrors     atomic.Int64
	BuildRows       atomic.Int64
	BuildTotalNanos atomic.Int64
	QueryCount      atomic.Int64
	QueryRows       atomic.Int64
	QueryTotalNanos atomic.Int64
	ShortCircuits   atomic.Int64
}

// RecordLoad implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLoad(tables int, duration time.Duration, err error) {
	b.LoadCount.Add(1)
	if err != nil {
		b.LoadErrors.Add(1)
		return
	}
	b.LoadTables.Add(int64(tables))
}

// RecordBuild implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBuild(_ model.TableName, rows int, duration time.Duration, err error) {
	b.BuildCount.Add(1)
	b.BuildTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.BuildErrors.Add(1)
		return
	}
	b.BuildRows.Add(int64(rows))
}

// RecordQuery implements MetricsCollector.
func (b *BasicMetricsCollector) RecordQuery(duration time.Duration, rows int) {
	b.QueryCount.Add(1)
	b.QueryRows.Add(int64(rows))
	b.QueryTotalNanos.Add(duration.Nanoseconds())
}

// RecordShortCircuit implements MetricsCollector.
func (b *BasicMetricsCollector) RecordShortCircuit() {
	b.ShortCircuits.Add(1)
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		LoadCount:     b.LoadCount.Load(),
		LoadErrors:    b.LoadErrors.Load(),
		LoadTables:    b.LoadTables.Load(),
		BuildCount:    b.BuildCount.Load(),
		BuildErrors:   b.BuildErrors.Load(),
		BuildRows:     b.BuildRows.Load(),
		BuildAvgNanos: avg(b.BuildTotalNanos.Load(), b.BuildCount.Load()),
		QueryCount:    b.QueryCount.Load(),
		QueryRows:     b.QueryRows.Load(),
		QueryAvgNanos: avg(b.QueryTotalNanos.Load(), b.QueryCount.Load()),
		ShortCircuits: b.ShortCircuits.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	LoadCount     int64
	LoadErrors    int64
	LoadTables    int64
	BuildCount    int64
	BuildErrors   int64
	BuildRows     int64
	BuildAvgNanos int64
	QueryCount    int64
	QueryRows     int64
	QueryAvgNanos int64
	ShortCircuits int64
}
