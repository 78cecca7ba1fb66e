package salescube

import (
	"log/slog"

	"github.com/hupe1980/salescube/blobstore"
	"github.com/hupe1980/salescube/codec"
	"github.com/hupe1980/salescube/index"
	"github.com/hupe1980/salescube/internal/resource"
	"github.com/hupe1980/salescube/model"
	"github.com/hupe1980/salescube/scheduler"
)

// DefaultIndexedTables are the tables Build indexes when no other set is
// configured.
var DefaultIndexedTables = []model.TableName{model.TableDetailed, model.TableHistory}

// DefaultNegativeCacheSize is the per-table capacity of the empty-result
// cache.
const DefaultNegativeCacheSize = 1024

// DefaultDateCacheSize is the capacity of the shared date parse cache.
const DefaultDateCacheSize = 1 << 16

type options struct {
	codec             codec.Codec
	store             blobstore.BlobStore
	prefix            string
	indexConfig       index.Config
	indexed           []model.TableName
	resourceConfig    resource.Config
	metricsCollector  MetricsCollector
	logger            *Logger
	negativeCacheSize int
	dateCacheSize     int
	host              scheduler.Host
	schedulerOpts     []scheduler.Option
}

// Option configures the Engine.
type Option func(*options)

// WithCodec configures the codec used for decoding payload blobs.
//
// If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithBlobStore configures where Load reads payload tables from.
func WithBlobStore(store blobstore.BlobStore) Option {
	return func(o *options) {
		o.store = store
	}
}

// WithPrefix places every payload blob under prefix in the blob store.
func WithPrefix(prefix string) Option {
	return func(o *options) {
		o.prefix = prefix
	}
}

// WithIndexConfig replaces index.DefaultConfig for every indexed table.
func WithIndexConfig(cfg index.Config) Option {
	return func(o *options) {
		o.indexConfig = cfg
	}
}

// WithIndexedTables sets which tables are indexed after a load.
func WithIndexedTables(names ...model.TableName) Option {
	return func(o *options) {
		o.indexed = names
	}
}

// WithResourceConfig bounds payload loading.
//
// Example:
//
//	eng := salescube.New(
//	    salescube.WithBlobStore(store),
//	    salescube.WithResourceConfig(resource.Config{
//	        MaxConcurrentLoads: 2,
//	        IOLimitBytesPerSec: 32 << 20,
//	    }),
//	)
func WithResourceConfig(cfg resource.Config) Option {
	return func(o *options) {
		o.resourceConfig = cfg
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &salescube.BasicMetricsCollector{}
//	eng := salescube.New(salescube.WithMetricsCollector(metrics))
//	// ... use eng ...
//	stats := metrics.GetStats()
//	fmt.Printf("Queries: %d, Avg latency: %dns\n", stats.QueryCount, stats.QueryAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := salescube.NewJSONLogger(slog.LevelInfo)
//	eng := salescube.New(salescube.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithNegativeCache sets the per-table capacity of the empty-result cache.
// Zero disables it.
func WithNegativeCache(capacity int) Option {
	return func(o *options) {
		o.negativeCacheSize = capacity
	}
}

// WithDateCacheSize sets the capacity of the shared date parse cache.
func WithDateCacheSize(capacity int) Option {
	return func(o *options) {
		o.dateCacheSize = capacity
	}
}

// WithHost sets the host that runs chunked scans. The default is a
// LoopHost that must be driven by the caller via Engine.RunHost.
func WithHost(host scheduler.Host, schedulerOpts ...scheduler.Option) Option {
	return func(o *options) {
		o.host = host
		o.schedulerOpts = schedulerOpts
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		codec:             codec.Default,
		indexConfig:       index.DefaultConfig(),
		indexed:           DefaultIndexedTables,
		resourceConfig:    resource.DefaultConfig(),
		metricsCollector:  NoopMetricsCollector{},
		logger:            NoopLogger(),
		negativeCacheSize: DefaultNegativeCacheSize,
		dateCacheSize:     DefaultDateCacheSize,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
