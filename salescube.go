package salescube

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/salescube/dataset"
	"github.com/hupe1980/salescube/dates"
	"github.com/hupe1980/salescube/index"
	"github.com/hupe1980/salescube/internal/resource"
	"github.com/hupe1980/salescube/keys"
	"github.com/hupe1980/salescube/model"
	"github.com/hupe1980/salescube/payload"
	"github.com/hupe1980/salescube/query"
	"github.com/hupe1980/salescube/scheduler"
)

// Engine holds the loaded tables, their indices and query engines.
//
// Reads are safe for concurrent use. Load, LoadBundle, Add and Build
// replace tables atomically; queries running against a replaced table keep
// using the old one.
type Engine struct {
	opts    options
	logger  *Logger
	metrics MetricsCollector

	dates *dates.Cache
	pasta *index.PastaResolver
	rc    *resource.Controller

	sched *scheduler.Scheduler
	scans scheduler.JobCounter

	mu     sync.RWMutex
	tables map[model.TableName]*table
}

type table struct {
	seq   dataset.Sequence
	ix    *index.Indices
	query *query.Engine
}

// New creates an empty engine.
func New(optFns ...Option) *Engine {
	opts := applyOptions(optFns)

	host := opts.host
	if host == nil {
		host = scheduler.NewLoopHost(0)
	}
	schedOpts := append([]scheduler.Option{scheduler.WithLogger(opts.logger.Logger)}, opts.schedulerOpts...)

	return &Engine{
		opts:    opts,
		logger:  opts.logger,
		metrics: opts.metricsCollector,
		dates:   dates.NewCache(opts.dateCacheSize),
		pasta:   index.NewPastaResolver(opts.indexConfig.Pasta),
		rc:      resource.NewController(opts.resourceConfig),
		sched:   scheduler.New(host, schedOpts...),
		tables:  make(map[model.TableName]*table),
	}
}

// Load reads the named tables from the configured blob store and indexes
// them. With no names every well-known table is attempted; tables absent
// from the store are skipped.
func (e *Engine) Load(ctx context.Context, names ...model.TableName) error {
	if e.opts.store == nil {
		return ErrNoBlobStore
	}
	if len(names) == 0 {
		names = model.AllTables
	}

	start := time.Now()
	loader := payload.NewLoader(e.opts.store,
		payload.WithCodec(e.opts.codec),
		payload.WithController(e.rc),
		payload.WithLoaderLogger(e.logger.Logger),
		payload.WithPrefix(e.opts.prefix),
	)
	bundle, err := loader.Load(ctx, names...)
	if err != nil {
		e.metrics.RecordLoad(0, time.Since(start), err)
		e.logger.LogLoad(ctx, 0, time.Since(start), err)
		return err
	}
	e.metrics.RecordLoad(len(bundle.Tables), time.Since(start), nil)
	e.logger.LogLoad(ctx, len(bundle.Tables), time.Since(start), nil)

	return e.LoadBundle(ctx, bundle)
}

// LoadBundle registers every table of b and indexes the configured indexed
// tables among them. When a products catalog is present, its unsold
// products are backfilled with a pasta from the indexed tables.
func (e *Engine) LoadBundle(ctx context.Context, b *payload.Bundle) error {
	for _, name := range b.Names() {
		seq, _ := b.Table(name)
		e.Add(name, seq)
	}

	var toBuild []model.TableName
	for _, name := range e.opts.indexed {
		if _, ok := b.Table(name); ok {
			toBuild = append(toBuild, name)
		}
	}
	if err := e.Build(ctx, toBuild...); err != nil {
		return err
	}

	if catalog, ok := b.Table(model.TableProducts); ok {
		e.backfill(ctx, catalog)
	}
	return nil
}

// Add registers seq under name without indexing it. An existing table of
// the same name is replaced together with its indices.
func (e *Engine) Add(name model.TableName, seq dataset.Sequence) {
	e.mu.Lock()
	e.tables[name] = &table{seq: seq}
	e.mu.Unlock()
}

// Build indexes the named registered tables concurrently. All builds share
// one date cache and one pasta resolver.
func (e *Engine) Build(ctx context.Context, names ...model.TableName) error {
	cfg := e.indexConfig()

	g, gctx := errgroup.WithContext(ctx)
	for _, name := range names {
		g.Go(func() error {
			return e.build(gctx, name, cfg)
		})
	}
	return g.Wait()
}

func (e *Engine) build(ctx context.Context, name model.TableName, cfg index.Config) error {
	e.mu.RLock()
	t, ok := e.tables[name]
	e.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTable, name)
	}

	start := time.Now()
	b := index.NewBuilder(cfg,
		index.WithDateCache(e.dates),
		index.WithPastaResolver(e.pasta),
		index.WithLogger(e.logger.With("table", string(name))),
	)
	ix, err := b.Build(ctx, t.seq)
	duration := time.Since(start)
	e.metrics.RecordBuild(name, t.seq.Len(), duration, err)
	if err != nil {
		e.logger.LogBuild(ctx, name, 0, 0, duration, err)
		return fmt.Errorf("build %s: %w", name, err)
	}
	e.logger.LogBuild(ctx, name, t.seq.Len(), len(ix.Dimensions()), duration, nil)

	qe := query.New(t.seq, ix,
		query.WithMetrics(e.metrics),
		query.WithLogger(e.logger.With("table", string(name))),
		query.WithClientField(cfg.ClientField),
		query.WithNegativeCache(e.opts.negativeCacheSize),
	)

	e.mu.Lock()
	// Keep the build only if the table was not replaced meanwhile.
	if cur, ok := e.tables[name]; ok && cur.seq == t.seq {
		e.tables[name] = &table{seq: t.seq, ix: ix, query: qe}
	}
	e.mu.Unlock()
	return nil
}

// indexConfig returns the configured index config, filling the client city
// fallback from a registered clients table when none is configured.
func (e *Engine) indexConfig() index.Config {
	cfg := e.opts.indexConfig
	if cfg.ClientCities != nil {
		return cfg
	}
	clients, ok := e.Table(model.TableClients)
	if !ok {
		return cfg
	}
	cities := make(map[string]string)
	for _, row := range dataset.All(clients) {
		code := keys.NormalizeKeyAny(rowValue(row, cfg.ClientField))
		city := strings.TrimSpace(row.String(model.FieldCity))
		if code != "" && city != "" {
			cities[code] = city
		}
	}
	cfg.ClientCities = cities
	return cfg
}

func rowValue(row dataset.Row, field string) any {
	v, _ := row.Get(field)
	return v
}

func (e *Engine) backfill(ctx context.Context, catalog dataset.Sequence) {
	cfg := e.opts.indexConfig
	filled := 0
	for _, name := range e.opts.indexed {
		ix, ok := e.Indices(name)
		if !ok {
			continue
		}
		// Rows patched by an earlier table already carry a pasta and are skipped.
		filled += ix.Backfill(catalog, e.pasta, cfg.ProductField, cfg.SupplierCodeField, cfg.PastaField)
	}
	e.logger.DebugContext(ctx, "catalog backfilled", "products", filled)
}

// Table returns the named table.
func (e *Engine) Table(name model.TableName) (dataset.Sequence, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	t, ok := e.tables[name]
	if !ok {
		return nil, false
	}
	return t.seq, true
}

// Indices returns the indices of a built table.
func (e *Engine) Indices(name model.TableName) (*index.Indices, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	t, ok := e.tables[name]
	if !ok || t.ix == nil {
		return nil, false
	}
	return t.ix, true
}

// Names returns the registered table names in sorted order.
func (e *Engine) Names() []model.TableName {
	e.mu.RLock()
	defer e.mu.RUnlock()
	names := make([]model.TableName, 0, len(e.tables))
	for n := range e.tables {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

func (e *Engine) queryEngine(name model.TableName) (*query.Engine, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	t, ok := e.tables[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTable, name)
	}
	if t.query == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotBuilt, name)
	}
	return t.query, nil
}

// Query returns the rows of a built table matching f.
func (e *Engine) Query(name model.TableName, f query.Filter) ([]dataset.Row, error) {
	qe, err := e.queryEngine(name)
	if err != nil {
		e.logger.LogQuery(context.Background(), name, 0, err)
		return nil, err
	}
	rows := qe.Rows(f)
	e.logger.LogQuery(context.Background(), name, len(rows), nil)
	return rows, nil
}

// RowIDs returns the ids of the rows matching f. The bitmap is owned by
// the caller.
func (e *Engine) RowIDs(name model.TableName, f query.Filter) (*roaring.Bitmap, error) {
	qe, err := e.queryEngine(name)
	if err != nil {
		return nil, err
	}
	return qe.RowIDs(f), nil
}

// Count returns the number of rows matching f.
func (e *Engine) Count(name model.TableName, f query.Filter) (int, error) {
	qe, err := e.queryEngine(name)
	if err != nil {
		return 0, err
	}
	return qe.Count(f), nil
}

// PositiveClients returns the clients whose matching transactions sum to at
// least query.PositiveThreshold.
func (e *Engine) PositiveClients(name model.TableName, f query.Filter) ([]string, error) {
	qe, err := e.queryEngine(name)
	if err != nil {
		return nil, err
	}
	return qe.PositiveClients(f), nil
}

// TableStats summarizes one registered table.
type TableStats struct {
	Name        model.TableName
	Rows        int
	Built       bool
	Dimensions  int
	IndexBytes  uint64
	Overrides   int
	WorkingDays int
	MaxDate     time.Time
}

// Stats returns a summary of every registered table in name order.
func (e *Engine) Stats() []TableStats {
	names := e.Names()
	out := make([]TableStats, 0, len(names))

	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, name := range names {
		t, ok := e.tables[name]
		if !ok {
			continue
		}
		s := TableStats{Name: name, Rows: t.seq.Len()}
		if tbl, ok := t.seq.(*dataset.Table); ok {
			s.Overrides = tbl.OverrideCount()
		}
		if t.ix != nil {
			s.Built = true
			s.Dimensions = len(t.ix.Dimensions())
			s.IndexBytes = t.ix.SizeInBytes()
			s.WorkingDays = t.ix.WorkingDayCount()
			s.MaxDate = t.ix.MaxDate
		}
		out = append(out, s)
	}
	return out
}

// Scheduler returns the scheduler that runs chunked scans.
func (e *Engine) Scheduler() *scheduler.Scheduler { return e.sched }

// RunHost drives the engine's host until ctx is done. Scans only make
// progress while the host runs; with the default LoopHost, call RunHost in
// its own goroutine before scanning. A host without a run loop, such as
// scheduler.ManualHost, returns ErrHostNotRunnable.
func (e *Engine) RunHost(ctx context.Context) error {
	runner, ok := e.sched.Host().(interface {
		Run(ctx context.Context) error
	})
	if !ok {
		return ErrHostNotRunnable
	}
	return runner.Run(ctx)
}

// Scan runs fn over the rows of name matching f in budgeted batches on the
// engine's host. Each call supersedes the previous scan: an older scan
// stops at its next batch and never calls its onComplete. Batches run only
// while the host is driven, see RunHost.
func (e *Engine) Scan(name model.TableName, f query.Filter, fn func(r dataset.Row, i int), onComplete func()) (*scheduler.Job, uint64, error) {
	qe, err := e.queryEngine(name)
	if err != nil {
		return nil, 0, err
	}

	var src scheduler.Source[dataset.Row]
	if f.IsZero() {
		src = scheduler.Rows(qe.Sequence())
	} else {
		src = scheduler.Slice(qe.Rows(f))
	}
	job, id := scheduler.Render(e.sched, &e.scans, src, fn, onComplete)
	return job, id, nil
}

// CancelScans makes the running scan stale.
func (e *Engine) CancelScans() { e.scans.Next() }
